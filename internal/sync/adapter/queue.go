package adapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// Publisher abstracts the durable queue. Delivery is at-least-once: after a
// broker failover the same message may reach the central consumer more than
// once. The receiving side is contractually required to upsert by cedula and
// to answer every delivery with exactly one confirmation message, answering
// duplicates as already-existed. The idempotency-key header carries the
// message id so receivers can also deduplicate outright.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// ExistenceChecker lets the queue adapter answer existence checks over the
// synchronous channel; the queue itself cannot answer a question.
type ExistenceChecker interface {
	VerifyUserExists(ctx context.Context, cedula id.Cedula) (bool, error)
}

// QueueAdapter publishes user registrations to the queue and returns
// immediately. Success means "enqueued locally", not "registered centrally";
// the authoritative outcome arrives later as a confirmation message consumed
// by the correlator.
type QueueAdapter struct {
	publisher Publisher
	checker   ExistenceChecker
	topic     string
	logger    *slog.Logger
}

// NewQueue creates the asynchronous user sync adapter.
func NewQueue(publisher Publisher, checker ExistenceChecker, topic string, logger *slog.Logger) *QueueAdapter {
	return &QueueAdapter{
		publisher: publisher,
		checker:   checker,
		topic:     topic,
		logger:    logger,
	}
}

func (a *QueueAdapter) Name() string     { return "queue-user-sync" }
func (a *QueueAdapter) Kind() EntityKind { return KindUser }

// Confirms is false: a successful publish only proves local enqueue.
func (a *QueueAdapter) Confirms() bool { return false }

// envelope tags the payload so the central consumer can route on event type
// and owning tenant without parsing the body.
const (
	headerEventType      = "evento"
	headerTenantID       = "tenantId"
	headerIdempotencyKey = "idempotency-key"

	eventTypeUserRegistration = "registro-usuario"
)

// SendUser serializes the request and publishes it. A publish failure is a
// local, synchronous failure: the caller must not consider the user synced.
func (a *QueueAdapter) SendUser(ctx context.Context, user models.UserSyncRequest) models.SyncResult {
	if err := user.Validate(); err != nil {
		a.logger.ErrorContext(ctx, "user sync request failed validation",
			"cedula", user.Cedula,
			"error", err,
		)
		return models.Failedf("Solicitud de usuario inválida", "validation: %v", err)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		a.logger.ErrorContext(ctx, "user sync request failed serialization",
			"cedula", user.Cedula,
			"error", err,
		)
		return models.Failedf("Solicitud de usuario no serializable", "%v", err)
	}

	messageID := id.NewMessageID()
	headers := map[string]string{
		headerEventType:      eventTypeUserRegistration,
		headerIdempotencyKey: messageID.String(),
	}
	if user.TenantID != nil {
		headers[headerTenantID] = user.TenantID.String()
	}

	// Key by cedula so redeliveries and retries for the same person land on
	// the same partition, in order.
	if err := a.publisher.Publish(ctx, a.topic, []byte(user.Cedula), payload, headers); err != nil {
		a.logger.WarnContext(ctx, "user registration publish failed",
			"cedula", user.Cedula,
			"topic", a.topic,
			"error", err,
		)
		return models.Failedf("No se pudo encolar el registro de usuario", "%v", err)
	}

	a.logger.InfoContext(ctx, "user registration enqueued",
		"cedula", user.Cedula,
		"topic", a.topic,
		"message_id", messageID,
	)
	return models.Success("Registro de usuario encolado")
}

// UserExists delegates to the synchronous channel.
func (a *QueueAdapter) UserExists(ctx context.Context, cedula id.Cedula) bool {
	exists, err := a.checker.VerifyUserExists(ctx, cedula)
	if err != nil {
		a.logger.WarnContext(ctx, "existence check failed, assuming user not registered",
			"cedula", cedula,
			"error", err,
		)
		return false
	}
	return exists
}
