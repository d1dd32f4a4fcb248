// Package adapter contains the pluggable central-sync strategies. One
// contract, interchangeable transports: a synchronous REST adapter, an
// asynchronous queue adapter, and a batch document adapter. The sweep picks
// an adapter by the kind of entity it handles without knowing the transport.
package adapter

import (
	"context"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// EntityKind is the category of local record an adapter synchronizes.
type EntityKind string

const (
	KindUser     EntityKind = "USER"
	KindDocument EntityKind = "DOCUMENT"
)

// Adapter is the common identity shared by all sync strategies.
type Adapter interface {
	// Name identifies the adapter in logs and metrics.
	Name() string
	// Kind tells the reconciliation sweep which pending records this
	// adapter handles.
	Kind() EntityKind
}

// UserAdapter registers health users centrally.
//
// SendUser never returns a Go error for expected failure modes: network
// errors, validation rejections and duplicates all fold into the SyncResult.
// Adapters do not touch the local record; clearing the pending sentinel is
// the caller's responsibility, driven by the returned result.
type UserAdapter interface {
	Adapter
	SendUser(ctx context.Context, user models.UserSyncRequest) models.SyncResult
	// UserExists is a best-effort existence check. On communication failure
	// it returns false, biasing toward allowing a local registration attempt
	// rather than blocking it.
	UserExists(ctx context.Context, cedula id.Cedula) bool
	// Confirms reports whether a successful SendUser result is authoritative
	// central registration. The REST adapter confirms; the queue adapter
	// only confirms local enqueue, and the sentinel is cleared later by the
	// confirmation correlator.
	Confirms() bool
}

// DocumentAdapter centralizes one user's pending clinical documents as a
// batch, isolating per-document failures.
type DocumentAdapter interface {
	Adapter
	SyncDocuments(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) models.SyncResult
}
