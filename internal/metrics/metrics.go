// Package metrics defines the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session lifecycle metrics
var (
	// SessionsCreatedTotal counts sessions created since startup
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_sessions_created_total",
			Help: "Total planning sessions created",
		},
	)

	// SessionsDeletedTotal counts session deletions by reason
	SessionsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poker_sessions_deleted_total",
			Help: "Total sessions deleted by reason (expired/empty/manual)",
		},
		[]string{"reason"},
	)

	// VotesSubmittedTotal counts accepted vote submissions (revotes included)
	VotesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_votes_submitted_total",
			Help: "Total votes accepted, including replacements",
		},
	)

	// ParticipantsJoinedTotal counts joins by kind (new/rejoin)
	ParticipantsJoinedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poker_participants_joined_total",
			Help: "Total participant joins by kind (new/rejoin)",
		},
		[]string{"kind"},
	)
)

// Sweeper metrics
var (
	// SweepRunsTotal counts sweeper passes over the store
	SweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_sweep_runs_total",
			Help: "Total cleanup sweeps executed",
		},
	)

	// SweepDurationSeconds tracks sweep latency
	SweepDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poker_sweep_duration_seconds",
			Help:    "Cleanup sweep duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// SweepErrorsTotal counts per-session failures isolated during a sweep
	SweepErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_sweep_errors_total",
			Help: "Per-session cleanup failures (sweep continues past them)",
		},
	)
)

// Store metrics
var (
	// StoreFlushesTotal counts snapshot flushes by the file-backed store
	StoreFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_store_flushes_total",
			Help: "Total snapshot flushes written by the file store",
		},
	)

	// StoreFlushErrorsTotal counts failed snapshot flushes
	StoreFlushErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_store_flush_errors_total",
			Help: "Total snapshot flushes that failed",
		},
	)

	// StoreSessionsCurrent gauges the number of sessions currently stored
	StoreSessionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poker_store_sessions_current",
			Help: "Sessions currently held by the store",
		},
	)
)
