package dedup

import (
	"context"
	"sync"
	"time"

	id "hcen/pkg/domain"
)

// InMemoryStore remembers message ids with a TTL. Entries are pruned lazily
// on write; at peripheral-node volumes this stays small.
type InMemoryStore struct {
	mu   sync.Mutex
	seen map[id.MessageID]time.Time
	ttl  time.Duration
}

// NewMemory creates an in-memory dedup store with the given retention.
func NewMemory(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryStore{
		seen: make(map[id.MessageID]time.Time),
		ttl:  ttl,
	}
}

func (s *InMemoryStore) MarkProcessed(_ context.Context, messageID id.MessageID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for mid, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, mid)
		}
	}

	if _, exists := s.seen[messageID]; exists {
		return false, nil
	}
	s.seen[messageID] = now.Add(s.ttl)
	return true, nil
}
