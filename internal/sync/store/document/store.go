// Package document persists local clinical documents and their pending-sync
// sentinel. The nullable central_history_id column is the single source of
// truth for "has this document reached the central node".
package document

import (
	"context"
	"time"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// Record is a locally stored clinical document plus its sync state.
type Record struct {
	Document  models.DocumentSyncRequest
	State     models.SyncState
	CreatedAt time.Time
}

// Store is the pending-document tracker.
//
// MarkSynced is the atomic completion marker: it sets the central reference
// only when none is present. It never replaces an existing reference, so the
// Synced state cannot revert and a stale duplicate confirmation cannot
// corrupt it.
type Store interface {
	// CreatePending stores a new document in the pending state.
	// Returns sentinel.ErrConflict when (tenantID, documentID) already exists.
	CreatePending(ctx context.Context, doc models.DocumentSyncRequest) error
	// Get returns the record, or sentinel.ErrNotFound.
	Get(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) (*Record, error)
	// ListPending returns the sync-eligible documents for one patient at one
	// clinic, oldest first.
	ListPending(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) ([]models.DocumentSyncRequest, error)
	// ListAllPending returns every sync-eligible document, oldest first.
	// The sweep derives its (cedula, tenant) batches from this.
	ListAllPending(ctx context.Context) ([]models.DocumentSyncRequest, error)
	// MarkSynced sets the sentinel. Returns nil when the reference was set or
	// was already set to the same value, sentinel.ErrAlreadySynced when a
	// different reference is present, sentinel.ErrNotFound when the document
	// does not exist.
	MarkSynced(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID, historyID id.HistoryID) error
	// CountPending reports how many documents still need synchronization.
	CountPending(ctx context.Context) (int, error)
}
