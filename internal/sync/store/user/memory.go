package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
	"hcen/pkg/platform/sentinel"
)

// InMemoryStore keeps user records in a map, for unit tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.Cedula]*Record
}

// NewMemory creates an empty in-memory user store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.Cedula]*Record)}
}

func (s *InMemoryStore) CreatePending(_ context.Context, user models.UserSyncRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[user.Cedula]; exists {
		return sentinel.ErrConflict
	}
	s.records[user.Cedula] = &Record{
		User:      user,
		State:     models.Pending,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, cedula id.Cedula) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[cedula]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) ListPending(_ context.Context) ([]models.UserSyncRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pendingEntry struct {
		user      models.UserSyncRequest
		createdAt time.Time
	}
	var entries []pendingEntry
	for _, record := range s.records {
		if record.State.IsPending() {
			entries = append(entries, pendingEntry{user: record.User, createdAt: record.CreatedAt})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].createdAt.Before(entries[j].createdAt)
	})

	pending := make([]models.UserSyncRequest, 0, len(entries))
	for _, e := range entries {
		pending = append(pending, e.user)
	}
	return pending, nil
}

func (s *InMemoryStore) MarkSynced(_ context.Context, cedula id.Cedula, ref id.HistoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[cedula]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing, set := record.State.HistoryID(); set {
		if existing == ref {
			return nil
		}
		return sentinel.ErrAlreadySynced
	}
	record.State = models.Synced(ref)
	return nil
}

func (s *InMemoryStore) CountPending(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.State.IsPending() {
			count++
		}
	}
	return count, nil
}
