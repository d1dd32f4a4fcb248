package models

import (
	id "hcen/pkg/domain"
)

// SyncState is the explicit two-state form of the pending-sync sentinel.
// Postgres persists it as a nullable central_history_id column; domain code
// never handles the bare nullable directly. The invariant "never un-set once
// synced" is enforced by the stores (MarkSynced is a no-op when a reference
// is already present) and by this type having no transition back to pending.
type SyncState struct {
	historyID id.HistoryID
}

// Pending is the zero state: the record has not reached the central node.
var Pending = SyncState{}

// Synced returns the terminal state carrying the central reference.
func Synced(historyID id.HistoryID) SyncState {
	return SyncState{historyID: historyID}
}

// IsPending reports whether the record still needs synchronization.
// This is the only predicate the sweep inspects.
func (s SyncState) IsPending() bool { return s.historyID.IsZero() }

// HistoryID returns the central reference and whether it is set.
func (s SyncState) HistoryID() (id.HistoryID, bool) {
	return s.historyID, !s.historyID.IsZero()
}
