//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hcen/internal/sync/models"
	"hcen/internal/sync/store/user"
	id "hcen/pkg/domain"
	"hcen/pkg/platform/sentinel"
	txcontext "hcen/pkg/platform/tx"
	"hcen/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	store    *user.PostgresStore
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) newUser(cedula id.Cedula) models.UserSyncRequest {
	tenantID := id.TenantID(uuid.New())
	birthDate := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	return models.UserSyncRequest{
		Cedula:        cedula,
		DocumentType:  id.DocumentTypeCI,
		FirstName:     "Ana",
		SecondName:    "María",
		FirstSurname:  "Pérez",
		SecondSurname: "García",
		Email:         "ana@example.com",
		BirthDate:     &birthDate,
		TenantID:      &tenantID,
	}
}

func (s *PostgresUserStoreSuite) TestCreateAndGet() {
	s.Run("round-trips every field", func() {
		created := s.newUser("19998888")
		s.Require().NoError(s.store.CreatePending(s.ctx, created))

		record, err := s.store.Get(s.ctx, "19998888")
		s.Require().NoError(err)
		s.Equal(created.Cedula, record.User.Cedula)
		s.Equal(created.DocumentType, record.User.DocumentType)
		s.Equal(created.FirstName, record.User.FirstName)
		s.Equal(created.SecondName, record.User.SecondName)
		s.Equal(created.FirstSurname, record.User.FirstSurname)
		s.Equal(created.SecondSurname, record.User.SecondSurname)
		s.Equal(created.Email, record.User.Email)
		s.Require().NotNil(record.User.BirthDate)
		s.True(created.BirthDate.Equal(*record.User.BirthDate))
		s.Require().NotNil(record.User.TenantID)
		s.Equal(*created.TenantID, *record.User.TenantID)
		s.True(record.State.IsPending())
	})

	s.Run("optional fields stay empty", func() {
		created := models.UserSyncRequest{
			Cedula:       "55554444",
			DocumentType: id.DocumentTypeCI,
			FirstName:    "Juan",
			FirstSurname: "Rodríguez",
		}
		s.Require().NoError(s.store.CreatePending(s.ctx, created))

		record, err := s.store.Get(s.ctx, "55554444")
		s.Require().NoError(err)
		s.Empty(record.User.SecondName)
		s.Empty(record.User.Email)
		s.Nil(record.User.BirthDate)
		s.Nil(record.User.TenantID)
	})

	s.Run("duplicate cedula is a conflict", func() {
		s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("11112222")))

		err := s.store.CreatePending(s.ctx, s.newUser("11112222"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown cedula is not found", func() {
		_, err := s.store.Get(s.ctx, "99990000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresUserStoreSuite) TestMarkSynced() {
	s.Run("first write sets the central reference", func() {
		s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("19998888")))

		s.Require().NoError(s.store.MarkSynced(s.ctx, "19998888", "19998888"))

		record, err := s.store.Get(s.ctx, "19998888")
		s.Require().NoError(err)
		ref, set := record.State.HistoryID()
		s.True(set)
		s.Equal(id.HistoryID("19998888"), ref)
	})

	s.Run("repeating the same reference is a no-op", func() {
		s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("55554444")))
		s.Require().NoError(s.store.MarkSynced(s.ctx, "55554444", "55554444"))

		s.Require().NoError(s.store.MarkSynced(s.ctx, "55554444", "55554444"))
	})

	s.Run("a different reference never overwrites", func() {
		s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("11112222")))
		s.Require().NoError(s.store.MarkSynced(s.ctx, "11112222", "REF-A"))

		err := s.store.MarkSynced(s.ctx, "11112222", "REF-B")
		s.Require().ErrorIs(err, sentinel.ErrAlreadySynced)

		record, err := s.store.Get(s.ctx, "11112222")
		s.Require().NoError(err)
		ref, _ := record.State.HistoryID()
		s.Equal(id.HistoryID("REF-A"), ref)
	})

	s.Run("unknown cedula is not found", func() {
		err := s.store.MarkSynced(s.ctx, "99990000", "REF")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresUserStoreSuite) TestTransactionScope() {
	tx, err := s.postgres.DB.BeginTx(s.ctx, nil)
	s.Require().NoError(err)

	ctx := txcontext.WithTx(s.ctx, tx)
	s.Require().NoError(s.store.CreatePending(ctx, s.newUser("19998888")))

	// Visible inside the transaction, gone after rollback.
	_, err = s.store.Get(ctx, "19998888")
	s.Require().NoError(err)

	s.Require().NoError(tx.Rollback())

	_, err = s.store.Get(s.ctx, "19998888")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestListAndCountPending() {
	s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("19998888")))
	s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("55554444")))
	s.Require().NoError(s.store.CreatePending(s.ctx, s.newUser("11112222")))
	s.Require().NoError(s.store.MarkSynced(s.ctx, "55554444", "55554444"))

	pending, err := s.store.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	cedulas := []id.Cedula{pending[0].Cedula, pending[1].Cedula}
	s.Contains(cedulas, id.Cedula("19998888"))
	s.Contains(cedulas, id.Cedula("11112222"))

	count, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
