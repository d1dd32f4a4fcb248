package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
	"hcen/pkg/platform/sentinel"
)

type memoryKey struct {
	tenantID   id.TenantID
	documentID id.DocumentID
}

// InMemoryStore keeps document records in a map. Used by unit tests and by
// deployments that have not provisioned PostgreSQL yet.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]*Record
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[memoryKey]*Record)}
}

func (s *InMemoryStore) CreatePending(_ context.Context, doc models.DocumentSyncRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{tenantID: doc.TenantID, documentID: doc.DocumentID}
	if _, exists := s.records[key]; exists {
		return sentinel.ErrConflict
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	s.records[key] = &Record{
		Document:  doc,
		State:     models.Pending,
		CreatedAt: createdAt,
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tenantID id.TenantID, documentID id.DocumentID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[memoryKey{tenantID: tenantID, documentID: documentID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) ListPending(_ context.Context, cedula id.Cedula, tenantID id.TenantID) ([]models.DocumentSyncRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []models.DocumentSyncRequest
	for _, record := range s.records {
		if !record.State.IsPending() {
			continue
		}
		if record.Document.Cedula != cedula || record.Document.TenantID != tenantID {
			continue
		}
		pending = append(pending, record.Document)
	}
	sortByCreation(pending)
	return pending, nil
}

func (s *InMemoryStore) ListAllPending(_ context.Context) ([]models.DocumentSyncRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []models.DocumentSyncRequest
	for _, record := range s.records {
		if record.State.IsPending() {
			pending = append(pending, record.Document)
		}
	}
	sortByCreation(pending)
	return pending, nil
}

func (s *InMemoryStore) MarkSynced(_ context.Context, tenantID id.TenantID, documentID id.DocumentID, historyID id.HistoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[memoryKey{tenantID: tenantID, documentID: documentID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing, set := record.State.HistoryID(); set {
		if existing == historyID {
			return nil
		}
		return sentinel.ErrAlreadySynced
	}
	record.State = models.Synced(historyID)
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

func sortByCreation(docs []models.DocumentSyncRequest) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
}
