// Package monitoring exposes Prometheus metrics for the snapshot and
// pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "congresscal_snapshot_refreshes_total",
			Help: "Snapshot refresh attempts by outcome",
		},
		[]string{"status"},
	)

	snapshotEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "congresscal_snapshot_events",
			Help: "Raw events in the current snapshot",
		},
	)

	snapshotGeneratedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "congresscal_snapshot_generated_timestamp_seconds",
			Help: "Unix time the current snapshot was produced upstream",
		},
	)

	pipelineBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "congresscal_pipeline_builds_total",
			Help: "Full pipeline passes served",
		},
	)

	upcomingEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "congresscal_upcoming_events",
			Help: "Events in the most recently built list per category",
		},
		[]string{"category"},
	)

	inviteDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "congresscal_invite_downloads_total",
			Help: "Calendar-invite downloads by outcome",
		},
		[]string{"status"},
	)
)

// ObserveRefresh records a snapshot refresh attempt.
func ObserveRefresh(err error, eventCount int, generatedAt string) {
	if err != nil {
		snapshotRefreshes.WithLabelValues("error").Inc()
		return
	}
	snapshotRefreshes.WithLabelValues("ok").Inc()
	snapshotEvents.Set(float64(eventCount))

	if t, perr := time.Parse(time.RFC3339, generatedAt); perr == nil {
		snapshotGeneratedAt.Set(float64(t.Unix()))
	}
}

// ObserveBuild records one pipeline pass and its output sizes.
func ObserveBuild(deadlines, congresses int) {
	pipelineBuilds.Inc()
	upcomingEvents.WithLabelValues("deadline").Set(float64(deadlines))
	upcomingEvents.WithLabelValues("congress").Set(float64(congresses))
}

// ObserveInvite records an invite download attempt.
func ObserveInvite(status string) {
	inviteDownloads.WithLabelValues(status).Inc()
}
