// Package dedup tracks which confirmation messages have been processed.
// Queue delivery is at-least-once; the correlator records each message id
// here before acting so a redelivered confirmation becomes a no-op.
//
// Losing an entry is harmless: the sentinel stores are themselves idempotent,
// so dedup is an optimization that keeps duplicate deliveries out of the
// logs and metrics, not a correctness requirement.
package dedup

import (
	"context"

	id "hcen/pkg/domain"
)

// Store remembers processed message ids for a bounded retention window.
type Store interface {
	// MarkProcessed records the message id. It returns true when this is the
	// first time the id is seen, false for a duplicate.
	MarkProcessed(ctx context.Context, messageID id.MessageID) (bool, error)
}
