// Package correlator consumes the confirmation channel of the asynchronous
// sync path and matches confirmations back to local pending records by their
// business keys. It is the only writer of the sync sentinel on the queue
// path.
package correlator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"hcen/internal/platform/kafka/consumer"
	"hcen/internal/sync/metrics"
	"hcen/internal/sync/models"
	"hcen/internal/sync/store/dedup"
	"hcen/internal/sync/store/document"
	"hcen/internal/sync/store/user"
	"hcen/pkg/platform/sentinel"
)

// Correlator processes ConfirmationMessages from the central node.
//
// Contract with the broker: returning nil commits the offset. Malformed or
// unmatchable confirmations are committed after logging, because redelivering
// them can never succeed; only store outages return an error, so the message
// is retried once the store is back.
type Correlator struct {
	users     user.Store
	documents document.Store
	processed dedup.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a confirmation correlator.
func New(users user.Store, documents document.Store, processed dedup.Store, m *metrics.Metrics, logger *slog.Logger) *Correlator {
	return &Correlator{
		users:     users,
		documents: documents,
		processed: processed,
		metrics:   m,
		logger:    logger,
	}
}

// Handle implements consumer.Handler for the confirmation topic.
func (c *Correlator) Handle(ctx context.Context, msg *consumer.Message) error {
	var confirmation models.ConfirmationMessage
	if err := json.Unmarshal(msg.Value, &confirmation); err != nil {
		c.logger.ErrorContext(ctx, "unparseable confirmation message, dropping",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		c.metrics.ConfirmationsDropped.Inc()
		return nil
	}
	if err := confirmation.Validate(); err != nil {
		c.logger.ErrorContext(ctx, "confirmation message violates contract, dropping",
			"message_id", confirmation.MessageID,
			"error", err,
		)
		c.metrics.ConfirmationsDropped.Inc()
		return nil
	}

	first, err := c.processed.MarkProcessed(ctx, confirmation.MessageID)
	if err != nil {
		// Dedup outage: proceed as first delivery, the sentinel stores are
		// idempotent anyway.
		c.logger.WarnContext(ctx, "confirmation dedup unavailable, processing anyway",
			"message_id", confirmation.MessageID,
			"error", err,
		)
	} else if !first {
		c.logger.DebugContext(ctx, "duplicate confirmation, ignoring",
			"message_id", confirmation.MessageID,
		)
		c.metrics.ConfirmationsDuplicate.Inc()
		return nil
	}

	if !confirmation.Success {
		// The record stays pending; the periodic sweep retries it.
		c.logger.WarnContext(ctx, "central node rejected registration, record stays pending",
			"message_id", confirmation.MessageID,
			"cedula", confirmation.Cedula,
			"document_id", confirmation.DocumentID,
			"central_error", confirmation.ErrorMessage,
		)
		c.metrics.ConfirmationsFailed.Inc()
		return nil
	}

	if !confirmation.DocumentID.IsNil() {
		return c.confirmDocument(ctx, confirmation)
	}
	return c.confirmUser(ctx, confirmation)
}

func (c *Correlator) confirmDocument(ctx context.Context, confirmation models.ConfirmationMessage) error {
	err := c.documents.MarkSynced(ctx, confirmation.TenantID, confirmation.DocumentID, confirmation.HistoryID)
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "document confirmed synced",
			"document_id", confirmation.DocumentID,
			"tenant_id", confirmation.TenantID,
			"history_id", confirmation.HistoryID,
		)
		c.metrics.ConfirmationsApplied.Inc()
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		// The local record was deleted after the request went out. The
		// confirmation is stale, not an error.
		c.logger.InfoContext(ctx, "confirmation for unknown document, discarding",
			"document_id", confirmation.DocumentID,
			"tenant_id", confirmation.TenantID,
		)
		c.metrics.ConfirmationsDropped.Inc()
		return nil
	case errors.Is(err, sentinel.ErrAlreadySynced):
		// Same document, different central reference. Keep the one we have
		// and flag the inconsistency for operators.
		c.logger.WarnContext(ctx, "confirmation carries a different history id than the stored one, keeping existing",
			"document_id", confirmation.DocumentID,
			"tenant_id", confirmation.TenantID,
			"incoming_history_id", confirmation.HistoryID,
		)
		c.metrics.ConfirmationsMismatched.Inc()
		return nil
	default:
		return fmt.Errorf("apply document confirmation: %w", err)
	}
}

func (c *Correlator) confirmUser(ctx context.Context, confirmation models.ConfirmationMessage) error {
	err := c.users.MarkSynced(ctx, confirmation.Cedula, confirmation.HistoryID)
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "user confirmed synced",
			"cedula", confirmation.Cedula,
			"history_id", confirmation.HistoryID,
		)
		c.metrics.ConfirmationsApplied.Inc()
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		c.logger.InfoContext(ctx, "confirmation for unknown user, discarding",
			"cedula", confirmation.Cedula,
		)
		c.metrics.ConfirmationsDropped.Inc()
		return nil
	case errors.Is(err, sentinel.ErrAlreadySynced):
		c.logger.WarnContext(ctx, "confirmation carries a different central reference than the stored one, keeping existing",
			"cedula", confirmation.Cedula,
			"incoming_ref", confirmation.HistoryID,
		)
		c.metrics.ConfirmationsMismatched.Inc()
		return nil
	default:
		return fmt.Errorf("apply user confirmation: %w", err)
	}
}
