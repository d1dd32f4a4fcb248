// Package user persists locally registered health users and their
// pending-sync sentinel. The central registry keys users by cedula, so the
// cedula doubles as the central reference once registration is confirmed.
package user

import (
	"context"
	"time"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// Record is a locally stored health user plus its sync state.
type Record struct {
	User      models.UserSyncRequest
	State     models.SyncState
	CreatedAt time.Time
}

// Store is the pending-user tracker. Same sentinel discipline as the
// document store: MarkSynced sets the central reference at most once and
// never replaces it.
type Store interface {
	// CreatePending stores a new user in the pending state.
	// Returns sentinel.ErrConflict when the cedula already exists locally.
	CreatePending(ctx context.Context, user models.UserSyncRequest) error
	// Get returns the record, or sentinel.ErrNotFound.
	Get(ctx context.Context, cedula id.Cedula) (*Record, error)
	// ListPending returns users awaiting central registration, oldest first.
	ListPending(ctx context.Context) ([]models.UserSyncRequest, error)
	// MarkSynced sets the sentinel. Same contract as the document store:
	// nil on first set or same-reference repeat, sentinel.ErrAlreadySynced on
	// a different reference, sentinel.ErrNotFound for unknown cedulas.
	MarkSynced(ctx context.Context, cedula id.Cedula, ref id.HistoryID) error
	// CountPending reports how many users still need synchronization.
	CountPending(ctx context.Context) (int, error)
}
