package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"hcen/internal/sync/central"
	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// fakeRegistrar scripts the central client's answers.
type fakeRegistrar struct {
	registerUser   *central.CentralUser
	registerErr    error
	exists         bool
	existsErr      error
	registerCalls  int
	lastRegistered models.UserSyncRequest
}

func (f *fakeRegistrar) RegisterUser(_ context.Context, user models.UserSyncRequest) (*central.CentralUser, error) {
	f.registerCalls++
	f.lastRegistered = user
	return f.registerUser, f.registerErr
}

func (f *fakeRegistrar) VerifyUserExists(_ context.Context, _ id.Cedula) (bool, error) {
	return f.exists, f.existsErr
}

type RESTAdapterSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RESTAdapterSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestRESTAdapterSuite(t *testing.T) {
	suite.Run(t, new(RESTAdapterSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() models.UserSyncRequest {
	return models.UserSyncRequest{
		Cedula:       id.Cedula("19998888"),
		DocumentType: id.DocumentTypeCI,
		FirstName:    "Juan",
		FirstSurname: "Rodríguez",
	}
}

func (s *RESTAdapterSuite) TestSendUser() {
	s.Run("central acceptance is success", func() {
		registrar := &fakeRegistrar{registerUser: &central.CentralUser{Cedula: "19998888"}}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, testUser())

		s.Equal(models.StatusSuccess, result.Status)
		s.True(result.Ok())
		s.Equal(1, registrar.registerCalls)
	})

	s.Run("duplicate response is already existed, not a failure", func() {
		registrar := &fakeRegistrar{registerErr: &central.StatusError{
			StatusCode: http.StatusConflict,
			Body:       `{"mensaje":"El usuario ya está registrado en el sistema"}`,
		}}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, testUser())

		s.Equal(models.StatusAlreadyExisted, result.Status)
		s.True(result.Ok())
		s.Equal("Usuario ya existía en componente central", result.Message)
	})

	s.Run("duplicate text on a 200 is still already existed", func() {
		registrar := &fakeRegistrar{registerErr: &central.StatusError{
			StatusCode: http.StatusOK,
			Body:       `{"mensaje":"ya existe"}`,
		}}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, testUser())

		s.Equal(models.StatusAlreadyExisted, result.Status)
	})

	s.Run("non duplicate rejection fails with status detail", func() {
		registrar := &fakeRegistrar{registerErr: &central.StatusError{
			StatusCode: http.StatusBadRequest,
			Body:       `{"mensaje":"cedula inválida"}`,
		}}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, testUser())

		s.Equal(models.StatusFailed, result.Status)
		s.Contains(result.ErrorDetail, "status 400")
	})

	s.Run("transport error fails and leaves the record pending", func() {
		registrar := &fakeRegistrar{registerErr: errors.New("dial tcp: connection refused")}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, testUser())

		s.Equal(models.StatusFailed, result.Status)
		s.Contains(result.ErrorDetail, "connection refused")
	})

	s.Run("invalid request never reaches the wire", func() {
		registrar := &fakeRegistrar{}
		adapter := NewREST(registrar, discardLogger())

		result := adapter.SendUser(s.ctx, models.UserSyncRequest{Cedula: "19998888"})

		s.Equal(models.StatusFailed, result.Status)
		s.Zero(registrar.registerCalls)
	})
}

func (s *RESTAdapterSuite) TestUserExists() {
	s.Run("reports central answer", func() {
		adapter := NewREST(&fakeRegistrar{exists: true}, discardLogger())
		s.True(adapter.UserExists(s.ctx, "19998888"))
	})

	s.Run("check failure reads as not registered", func() {
		adapter := NewREST(&fakeRegistrar{existsErr: errors.New("timeout")}, discardLogger())
		s.False(adapter.UserExists(s.ctx, "19998888"))
	})
}

func (s *RESTAdapterSuite) TestIdentity() {
	adapter := NewREST(&fakeRegistrar{}, discardLogger())
	s.Equal("rest-user-sync", adapter.Name())
	s.Equal(KindUser, adapter.Kind())
	s.True(adapter.Confirms())
}
