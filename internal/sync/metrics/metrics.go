package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the sync subsystem.
type Metrics struct {
	SyncAttempts *prometheus.CounterVec

	ConfirmationsApplied    prometheus.Counter
	ConfirmationsDuplicate  prometheus.Counter
	ConfirmationsFailed     prometheus.Counter
	ConfirmationsDropped    prometheus.Counter
	ConfirmationsMismatched prometheus.Counter

	PendingUsers     prometheus.Gauge
	PendingDocuments prometheus.Gauge
	SweepDuration    prometheus.Histogram
}

// New creates and registers the sync metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registerer; tests pass a fresh
// registry so parallel suites do not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SyncAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hcen_sync_attempts_total",
			Help: "Sync attempts by adapter and outcome",
		}, []string{"adapter", "outcome"}),
		ConfirmationsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "hcen_sync_confirmations_applied_total",
			Help: "Confirmations that cleared a pending sentinel",
		}),
		ConfirmationsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "hcen_sync_confirmations_duplicate_total",
			Help: "Redelivered confirmations ignored by dedup",
		}),
		ConfirmationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "hcen_sync_confirmations_failed_total",
			Help: "Confirmations reporting a central-side failure",
		}),
		ConfirmationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "hcen_sync_confirmations_dropped_total",
			Help: "Confirmations discarded (malformed, contract violation, or unknown record)",
		}),
		ConfirmationsMismatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "hcen_sync_confirmations_mismatched_total",
			Help: "Confirmations carrying a central reference different from the stored one",
		}),
		PendingUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hcen_sync_pending_users",
			Help: "Local users awaiting central registration",
		}),
		PendingDocuments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hcen_sync_pending_documents",
			Help: "Local documents awaiting centralization",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hcen_sync_sweep_duration_seconds",
			Help:    "Duration of one reconciliation sweep",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveAttempt records one adapter attempt outcome.
func (m *Metrics) ObserveAttempt(adapter, outcome string) {
	m.SyncAttempts.WithLabelValues(adapter, outcome).Inc()
}
