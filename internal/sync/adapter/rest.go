package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hcen/internal/sync/central"
	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// UserRegistrar is the slice of the central client the REST adapter needs.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, user models.UserSyncRequest) (*central.CentralUser, error)
	VerifyUserExists(ctx context.Context, cedula id.Cedula) (bool, error)
}

// RESTAdapter registers users against the central registry with a blocking
// HTTP call. It performs no retries: a failed attempt leaves the record
// pending and the periodic sweep tries again.
type RESTAdapter struct {
	client UserRegistrar
	logger *slog.Logger
}

// NewREST creates the synchronous user sync adapter.
func NewREST(client UserRegistrar, logger *slog.Logger) *RESTAdapter {
	return &RESTAdapter{client: client, logger: logger}
}

func (a *RESTAdapter) Name() string     { return "rest-user-sync" }
func (a *RESTAdapter) Kind() EntityKind { return KindUser }

// Confirms is true: a successful REST response is authoritative registration.
func (a *RESTAdapter) Confirms() bool { return true }

// SendUser pushes one user registration and folds every outcome into a
// SyncResult. A response reporting the user as already registered is a
// successful idempotent no-op, regardless of status code.
func (a *RESTAdapter) SendUser(ctx context.Context, user models.UserSyncRequest) models.SyncResult {
	if err := user.Validate(); err != nil {
		// Not retryable by the sweep: the local record needs fixing first.
		a.logger.ErrorContext(ctx, "user sync request failed validation",
			"cedula", user.Cedula,
			"error", err,
		)
		return models.Failedf("Solicitud de usuario inválida", "validation: %v", err)
	}

	registered, err := a.client.RegisterUser(ctx, user)
	if err != nil {
		var statusErr *central.StatusError
		if errors.As(err, &statusErr) {
			if isAlreadyRegistered(statusErr.Body) {
				a.logger.InfoContext(ctx, "user already registered centrally",
					"cedula", user.Cedula,
					"status", statusErr.StatusCode,
				)
				return models.AlreadyExisted("Usuario ya existía en componente central")
			}
			a.logger.WarnContext(ctx, "central user registration rejected",
				"cedula", user.Cedula,
				"status", statusErr.StatusCode,
			)
			return models.Failedf("Registro central falló",
				"status %d: %s", statusErr.StatusCode, statusErr.Body)
		}
		// Transport error: timeout, refused connection. Transient.
		a.logger.WarnContext(ctx, "central user registration unreachable",
			"cedula", user.Cedula,
			"error", err,
		)
		return models.Failedf("Componente central inalcanzable", "%v", err)
	}

	return models.Success(fmt.Sprintf("Usuario %s registrado en componente central", registered.Cedula))
}

// UserExists asks the central registry whether the cedula is known. Failures
// report false so local registration is never blocked by an outage.
func (a *RESTAdapter) UserExists(ctx context.Context, cedula id.Cedula) bool {
	exists, err := a.client.VerifyUserExists(ctx, cedula)
	if err != nil {
		a.logger.WarnContext(ctx, "existence check failed, assuming user not registered",
			"cedula", cedula,
			"error", err,
		)
		return false
	}
	return exists
}
