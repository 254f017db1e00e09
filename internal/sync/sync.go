// Package sync keeps the current snapshot fresh on a cron schedule.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"

	"github.com/robfig/cron/v3"

	"github.com/helenopaiva/congresscal/internal/monitoring"
	"github.com/helenopaiva/congresscal/internal/source"
)

// Refresher fetches the snapshot on a schedule and holds the most recent
// successful one. A failed refresh keeps the previous snapshot; consumers
// that have never seen a successful load get nothing and must surface a
// visible failure state.
type Refresher struct {
	client   *source.Client
	schedule string

	mu      gosync.RWMutex
	current *source.Snapshot
}

// NewRefresher creates a Refresher with a standard 5-field cron schedule.
func NewRefresher(client *source.Client, schedule string) *Refresher {
	return &Refresher{client: client, schedule: schedule}
}

// Current returns the most recent successful snapshot, or ok=false when no
// load has ever succeeded.
func (r *Refresher) Current() (*source.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != nil
}

// Refresh performs one fetch and, on success, swaps in the new snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	snap, err := r.client.Fetch(ctx)
	if err != nil {
		monitoring.ObserveRefresh(err, 0, "")
		return err
	}

	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()

	monitoring.ObserveRefresh(nil, len(snap.Events.Events), snap.Events.GeneratedAt)
	slog.Info("snapshot refreshed",
		"events", len(snap.Events.Events),
		"generated_at", snap.Events.GeneratedAt,
	)
	return nil
}

// Run performs an initial refresh and then refreshes on the cron schedule
// until ctx is cancelled. An initial failure is not fatal: the service keeps
// retrying on schedule while consumers report the missing snapshot.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		slog.Error("initial snapshot load failed", "error", err)
	}

	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		if err := r.Refresh(ctx); err != nil {
			slog.Warn("snapshot refresh failed, keeping previous", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}

	c.Start()
	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	return nil
}
