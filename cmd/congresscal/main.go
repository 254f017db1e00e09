// congresscal serves upcoming congress and deadline agendas and calendar invites.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/helenopaiva/congresscal/internal/api"
	"github.com/helenopaiva/congresscal/internal/config"
	"github.com/helenopaiva/congresscal/internal/i18n"
	"github.com/helenopaiva/congresscal/internal/invite"
	"github.com/helenopaiva/congresscal/internal/source"
	"github.com/helenopaiva/congresscal/internal/sync"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: ~/.config/congresscal/config.yaml)")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	// Setup logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting congresscal",
		"listen", cfg.Listen,
		"refresh_cron", cfg.Snapshot.RefreshCron,
		"default_lang", cfg.Languages.Default,
	)

	if err := run(cfg); err != nil {
		slog.Error("congresscal failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	languages, err := i18n.NewLanguages(cfg.Languages.Default, cfg.Languages.Supported)
	if err != nil {
		return err
	}

	client := source.NewClient(cfg.Snapshot, cfg.Languages.Default)
	refresher := sync.NewRefresher(client, cfg.Snapshot.RefreshCron)

	server := api.New(api.Options{
		Snapshots: refresher,
		Languages: languages,
		Invites:   invite.NewBuilder(cfg.Invites.ReminderDays),
		Location:  loc,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(ctx)
	})
	g.Go(func() error {
		return server.ServeTCP(ctx, cfg.Listen)
	})

	return g.Wait()
}
