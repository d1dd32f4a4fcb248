package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services and adapters can translate them into domain errors or
// sync outcomes without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the local store
// - ErrAlreadySynced: record already carries a central reference id
// - ErrConflict: uniqueness violation, e.g. duplicate (tenant, document) pair
// - ErrUnavailable: backing service (broker, database) temporarily unreachable
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadySynced = errors.New("already synced")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("unavailable")
)
