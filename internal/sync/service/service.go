// Package service orchestrates local registration and synchronization.
// Adapters are side-effect free on local records; this layer owns the
// pending-sync sentinel, clearing it only on an authoritative success.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hcen/internal/sync/adapter"
	"hcen/internal/sync/metrics"
	"hcen/internal/sync/models"
	"hcen/internal/sync/store/document"
	"hcen/internal/sync/store/user"
	id "hcen/pkg/domain"
	dErrors "hcen/pkg/domain-errors"
	"hcen/pkg/platform/sentinel"
)

// Service wires the configured adapters to the local stores.
type Service struct {
	users       user.Store
	documents   document.Store
	userAdapter adapter.UserAdapter
	docAdapter  adapter.DocumentAdapter
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger overrides the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates the sync service. Which user adapter arrives here (REST or
// queue) is a deployment decision; the service is transport-agnostic.
func New(users user.Store, documents document.Store, userAdapter adapter.UserAdapter, docAdapter adapter.DocumentAdapter, m *metrics.Metrics, opts ...Option) (*Service, error) {
	if users == nil || documents == nil {
		return nil, fmt.Errorf("user and document stores are required")
	}
	if userAdapter == nil || docAdapter == nil {
		return nil, fmt.Errorf("user and document adapters are required")
	}
	svc := &Service{
		users:       users,
		documents:   documents,
		userAdapter: userAdapter,
		docAdapter:  docAdapter,
		metrics:     m,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RegisterPatient persists a new local user as pending and attempts an
// inline sync. The local write succeeds even when the central node is down;
// the sweep finishes the job later.
func (s *Service) RegisterPatient(ctx context.Context, req models.UserSyncRequest) (models.SyncResult, error) {
	if err := req.Validate(); err != nil {
		return models.SyncResult{}, err
	}

	if err := s.users.CreatePending(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.SyncResult{}, dErrors.New(dErrors.CodeConflict, "patient already registered locally")
		}
		return models.SyncResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist patient")
	}

	return s.SyncUser(ctx, req), nil
}

// RegisterDocument persists a new local document as pending and attempts an
// inline batch sync for its (cedula, tenant) scope.
func (s *Service) RegisterDocument(ctx context.Context, doc models.DocumentSyncRequest) (models.SyncResult, error) {
	if doc.Cedula.IsZero() || doc.TenantID.IsNil() || doc.DocumentID.IsNil() {
		return models.SyncResult{}, dErrors.New(dErrors.CodeInvalidInput, "cedula, tenantId and documentoId are required")
	}

	if err := s.documents.CreatePending(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.SyncResult{}, dErrors.New(dErrors.CodeConflict, "document already registered locally")
		}
		return models.SyncResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist document")
	}

	return s.SyncDocumentBatch(ctx, doc.Cedula, doc.TenantID), nil
}

// SyncUser runs one sync attempt for a user and applies the outcome to the
// local sentinel. With a confirming adapter, an Ok result clears the
// sentinel; with the queue adapter, the correlator clears it when the
// confirmation arrives.
func (s *Service) SyncUser(ctx context.Context, req models.UserSyncRequest) models.SyncResult {
	result := s.userAdapter.SendUser(ctx, req)
	s.metrics.ObserveAttempt(s.userAdapter.Name(), string(result.Status))

	if result.Ok() && s.userAdapter.Confirms() {
		// The registry keys users by cedula; the cedula is the central
		// reference we persist.
		if err := s.users.MarkSynced(ctx, req.Cedula, id.HistoryID(req.Cedula.String())); err != nil && !errors.Is(err, sentinel.ErrAlreadySynced) {
			// Registered centrally but not marked locally. The next sweep
			// retries and gets already-existed, converging.
			s.logger.ErrorContext(ctx, "user synced centrally but local sentinel update failed",
				"cedula", req.Cedula,
				"error", err,
			)
		}
	}
	return result
}

// SyncDocumentBatch delegates to the batch adapter, which owns per-document
// sentinel writes.
func (s *Service) SyncDocumentBatch(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) models.SyncResult {
	result := s.docAdapter.SyncDocuments(ctx, cedula, tenantID)
	s.metrics.ObserveAttempt(s.docAdapter.Name(), string(result.Status))
	return result
}

// PatientExistsCentrally is the best-effort pre-registration check.
func (s *Service) PatientExistsCentrally(ctx context.Context, cedula id.Cedula) bool {
	return s.userAdapter.UserExists(ctx, cedula)
}

// SyncPendingUsers retries every pending user once. Returns how many were
// attempted and how many reached a success-class outcome.
func (s *Service) SyncPendingUsers(ctx context.Context) (attempted, succeeded int, err error) {
	pending, err := s.users.ListPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list pending users: %w", err)
	}
	for _, u := range pending {
		result := s.SyncUser(ctx, u)
		attempted++
		if result.Ok() {
			succeeded++
		}
	}
	return attempted, succeeded, nil
}

// SyncPendingDocuments retries every pending document, batched per
// (cedula, tenant) scope. Returns how many batches ran and how many came
// back fully successful.
func (s *Service) SyncPendingDocuments(ctx context.Context) (batches, succeeded int, err error) {
	pending, err := s.documents.ListAllPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list pending documents: %w", err)
	}

	type scope struct {
		cedula   id.Cedula
		tenantID id.TenantID
	}
	seen := make(map[scope]bool)
	for _, doc := range pending {
		key := scope{cedula: doc.Cedula, tenantID: doc.TenantID}
		if seen[key] {
			continue
		}
		seen[key] = true

		result := s.SyncDocumentBatch(ctx, key.cedula, key.tenantID)
		batches++
		if result.Ok() {
			succeeded++
		}
	}
	return batches, succeeded, nil
}

// PendingCounts reports the current sentinel backlog and refreshes the
// gauges.
func (s *Service) PendingCounts(ctx context.Context) (users, documents int, err error) {
	users, err = s.users.CountPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count pending users: %w", err)
	}
	documents, err = s.documents.CountPending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count pending documents: %w", err)
	}
	s.metrics.PendingUsers.Set(float64(users))
	s.metrics.PendingDocuments.Set(float64(documents))
	return users, documents, nil
}
