package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
	"hcen/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) newDoc(cedula id.Cedula, tenantID id.TenantID, createdAt time.Time) models.DocumentSyncRequest {
	return models.DocumentSyncRequest{
		DocumentID: id.DocumentID(uuid.New()),
		TenantID:   tenantID,
		Cedula:     cedula,
		CreatedAt:  createdAt,
	}
}

func (s *DocumentStoreSuite) TestCreateAndGet() {
	tenantID := id.TenantID(uuid.New())

	s.Run("created documents start pending", func() {
		doc := s.newDoc("19998888", tenantID, time.Now())
		s.Require().NoError(s.store.CreatePending(s.ctx, doc))

		record, err := s.store.Get(s.ctx, doc.TenantID, doc.DocumentID)
		s.Require().NoError(err)
		s.True(record.State.IsPending())
	})

	s.Run("duplicate (tenant, document) is a conflict", func() {
		doc := s.newDoc("19998888", tenantID, time.Now())
		s.Require().NoError(s.store.CreatePending(s.ctx, doc))
		s.Require().ErrorIs(s.store.CreatePending(s.ctx, doc), sentinel.ErrConflict)
	})

	s.Run("unknown document is not found", func() {
		_, err := s.store.Get(s.ctx, tenantID, id.DocumentID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DocumentStoreSuite) TestListPending() {
	tenantA := id.TenantID(uuid.New())
	tenantB := id.TenantID(uuid.New())
	base := time.Now()

	older := s.newDoc("19998888", tenantA, base.Add(-time.Hour))
	newer := s.newDoc("19998888", tenantA, base)
	otherTenant := s.newDoc("19998888", tenantB, base)
	otherUser := s.newDoc("55554444", tenantA, base)

	for _, doc := range []models.DocumentSyncRequest{newer, older, otherTenant, otherUser} {
		s.Require().NoError(s.store.CreatePending(s.ctx, doc))
	}

	s.Run("scopes by cedula and tenant, oldest first", func() {
		pending, err := s.store.ListPending(s.ctx, "19998888", tenantA)
		s.Require().NoError(err)
		s.Require().Len(pending, 2)
		s.Equal(older.DocumentID, pending[0].DocumentID)
		s.Equal(newer.DocumentID, pending[1].DocumentID)
	})

	s.Run("synced documents drop out", func() {
		s.Require().NoError(s.store.MarkSynced(s.ctx, older.TenantID, older.DocumentID, "HIST-1"))

		pending, err := s.store.ListPending(s.ctx, "19998888", tenantA)
		s.Require().NoError(err)
		s.Require().Len(pending, 1)
		s.Equal(newer.DocumentID, pending[0].DocumentID)
	})

	s.Run("ListAllPending spans tenants and users", func() {
		pending, err := s.store.ListAllPending(s.ctx)
		s.Require().NoError(err)
		s.Len(pending, 3)
	})

	s.Run("CountPending agrees with the listing", func() {
		count, err := s.store.CountPending(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, count)
	})
}

func (s *DocumentStoreSuite) TestMarkSynced() {
	tenantID := id.TenantID(uuid.New())
	doc := s.newDoc("19998888", tenantID, time.Now())
	s.Require().NoError(s.store.CreatePending(s.ctx, doc))

	s.Run("first set wins", func() {
		s.Require().NoError(s.store.MarkSynced(s.ctx, doc.TenantID, doc.DocumentID, "HIST-1"))

		record, err := s.store.Get(s.ctx, doc.TenantID, doc.DocumentID)
		s.Require().NoError(err)
		ref, set := record.State.HistoryID()
		s.True(set)
		s.Equal(id.HistoryID("HIST-1"), ref)
	})

	s.Run("same reference repeat is a no-op", func() {
		s.Require().NoError(s.store.MarkSynced(s.ctx, doc.TenantID, doc.DocumentID, "HIST-1"))
	})

	s.Run("different reference never overwrites", func() {
		err := s.store.MarkSynced(s.ctx, doc.TenantID, doc.DocumentID, "HIST-2")
		s.Require().ErrorIs(err, sentinel.ErrAlreadySynced)

		record, getErr := s.store.Get(s.ctx, doc.TenantID, doc.DocumentID)
		s.Require().NoError(getErr)
		ref, _ := record.State.HistoryID()
		s.Equal(id.HistoryID("HIST-1"), ref)
	})

	s.Run("unknown document is not found", func() {
		err := s.store.MarkSynced(s.ctx, tenantID, id.DocumentID(uuid.New()), "HIST-3")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
