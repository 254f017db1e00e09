// Package source retrieves the raw event snapshot and the localization table
// from their external sources.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helenopaiva/congresscal/internal/config"
	"github.com/helenopaiva/congresscal/internal/event"
	"github.com/helenopaiva/congresscal/internal/i18n"
)

// ErrUnavailable indicates the event collection or the localization table
// could not be retrieved. Rendering must surface this visibly; an empty list
// would be indistinguishable from "there happen to be no events".
var ErrUnavailable = errors.New("source unavailable")

// Snapshot bundles one consistent load of both external documents.
type Snapshot struct {
	Events    *event.Snapshot
	Strings   *i18n.Table
	FetchedAt time.Time
}

// Client fetches snapshot documents from http(s) URLs or local file paths.
type Client struct {
	eventsURL   string
	stringsURL  string
	defaultLang string
	httpClient  *http.Client
}

// NewClient creates a Client for the configured snapshot sources.
func NewClient(cfg config.SnapshotConfig, defaultLang string) *Client {
	return &Client{
		eventsURL:   cfg.EventsURL,
		stringsURL:  cfg.StringsURL,
		defaultLang: defaultLang,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch retrieves both documents concurrently. Both must succeed; a snapshot
// with a missing localization table or missing events is never produced.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	var (
		events *event.Snapshot
		labels *i18n.Table
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := c.fetch(ctx, c.eventsURL)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		var snap event.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("events: decode: %w", err)
		}
		events = &snap
		return nil
	})

	g.Go(func() error {
		data, err := c.fetch(ctx, c.stringsURL)
		if err != nil {
			return fmt.Errorf("strings: %w", err)
		}
		table, err := i18n.Parse(data, c.defaultLang)
		if err != nil {
			return fmt.Errorf("strings: %w", err)
		}
		labels = table
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, problem := range event.Lint(events.Events) {
		slog.Warn("snapshot lint", "problem", problem)
	}

	return &Snapshot{
		Events:    events,
		Strings:   labels,
		FetchedAt: time.Now(),
	}, nil
}

// fetch loads one document from an http(s) URL or a local file path.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		data, err := os.ReadFile(url)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", url, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
