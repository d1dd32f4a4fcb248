// Package scheduler drives the periodic reconciliation sweep that retries
// every pending record. The sweep and the inline sync path share MarkSynced's
// at-most-once sentinel write, so overlapping attempts converge.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"hcen/internal/sync/service"
)

// DefaultInterval balances central load against time-to-convergence after an
// outage.
const DefaultInterval = 5 * time.Minute

// SweepObserver receives sweep timings; satisfied by the prometheus
// histogram.
type SweepObserver interface {
	Observe(float64)
}

// Sweeper periodically retries all pending users and documents.
type Sweeper struct {
	svc      *service.Service
	interval time.Duration
	duration SweepObserver
	logger   *slog.Logger
}

// New creates a sweeper. A non-positive interval falls back to
// DefaultInterval.
func New(svc *service.Service, interval time.Duration, duration SweepObserver, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		duration: duration,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
// Errors are logged and the loop continues; a broken store on one tick must
// not stop future reconciliation.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "reconciliation sweeper started", "interval", s.interval)

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reconciliation sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one full reconciliation pass: users first, then documents, so a
// user registered during this pass can have its documents picked up on the
// next one at the latest.
func (s *Sweeper) Sweep(ctx context.Context) {
	start := time.Now()

	userAttempts, userOK, err := s.svc.SyncPendingUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "pending user sweep failed", "error", err)
	}

	docBatches, docOK, err := s.svc.SyncPendingDocuments(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "pending document sweep failed", "error", err)
	}

	elapsed := time.Since(start)
	if s.duration != nil {
		s.duration.Observe(elapsed.Seconds())
	}

	// Refreshes the pending gauges as a side effect.
	pendingUsers, pendingDocs, err := s.svc.PendingCounts(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "pending count refresh failed", "error", err)
	}

	s.logger.InfoContext(ctx, "reconciliation sweep finished",
		"duration", elapsed,
		"user_attempts", userAttempts,
		"user_successes", userOK,
		"document_batches", docBatches,
		"document_batch_successes", docOK,
		"pending_users", pendingUsers,
		"pending_documents", pendingDocs,
	)
}
