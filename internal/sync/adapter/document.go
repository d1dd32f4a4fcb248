package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// PendingDocumentStore is the slice of the document store the batch adapter
// needs. MarkSynced must be idempotent and must never replace an existing
// central reference.
type PendingDocumentStore interface {
	ListPending(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) ([]models.DocumentSyncRequest, error)
	MarkSynced(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID, historyID id.HistoryID) error
}

// DocumentRegistrar registers one document centrally and returns its
// history id.
type DocumentRegistrar interface {
	RegisterDocument(ctx context.Context, cedula id.Cedula, tenantID id.TenantID, documentID id.DocumentID) (id.HistoryID, error)
}

// DocumentSyncAdapter centralizes one user's pending documents as a batch.
// Documents are independent sync units: a failure on one is recorded and the
// batch moves on, so partial success is preserved and retried incrementally
// by the next sweep.
type DocumentSyncAdapter struct {
	store  PendingDocumentStore
	client DocumentRegistrar
	logger *slog.Logger
}

// NewDocumentSync creates the batch document adapter.
func NewDocumentSync(store PendingDocumentStore, client DocumentRegistrar, logger *slog.Logger) *DocumentSyncAdapter {
	return &DocumentSyncAdapter{store: store, client: client, logger: logger}
}

func (a *DocumentSyncAdapter) Name() string     { return "rest-document-sync" }
func (a *DocumentSyncAdapter) Kind() EntityKind { return KindDocument }

// SyncDocuments pushes every pending document for (cedula, tenantID).
// Persisting the returned history id is the atomic completion marker for each
// document; the adapter writes it here because per-document completion cannot
// be deferred to the caller without losing partial-batch progress.
//
// Aggregate policy: no pending documents or all succeed is Success; anything
// less is Failed with a count and per-document detail, leaving the failed
// remainder pending for the next sweep.
func (a *DocumentSyncAdapter) SyncDocuments(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) models.SyncResult {
	pending, err := a.store.ListPending(ctx, cedula, tenantID)
	if err != nil {
		a.logger.WarnContext(ctx, "listing pending documents failed",
			"cedula", cedula,
			"tenant_id", tenantID,
			"error", err,
		)
		return models.Failedf("No se pudieron listar documentos pendientes", "%v", err)
	}
	if len(pending) == 0 {
		return models.Success("Sin documentos pendientes")
	}

	var (
		synced  int
		details []string
	)
	for _, doc := range pending {
		historyID, err := a.client.RegisterDocument(ctx, doc.Cedula, doc.TenantID, doc.DocumentID)
		if err != nil {
			a.logger.WarnContext(ctx, "document registration failed, will retry on next sweep",
				"document_id", doc.DocumentID,
				"tenant_id", doc.TenantID,
				"error", err,
			)
			details = append(details, fmt.Sprintf("documento %s: %v", doc.DocumentID, err))
			continue
		}

		if err := a.store.MarkSynced(ctx, doc.TenantID, doc.DocumentID, historyID); err != nil {
			// Registered centrally but not marked locally: the next sweep
			// re-registers and the central side answers already-existed.
			a.logger.ErrorContext(ctx, "document synced centrally but local sentinel update failed",
				"document_id", doc.DocumentID,
				"history_id", historyID,
				"error", err,
			)
			details = append(details, fmt.Sprintf("documento %s: persistencia local: %v", doc.DocumentID, err))
			continue
		}

		a.logger.InfoContext(ctx, "document synced",
			"document_id", doc.DocumentID,
			"tenant_id", doc.TenantID,
			"history_id", historyID,
		)
		synced++
	}

	failed := len(pending) - synced
	if failed == 0 {
		return models.Success(fmt.Sprintf("%d documentos sincronizados", synced))
	}

	message := fmt.Sprintf("%d documento falló", failed)
	if failed > 1 {
		message = fmt.Sprintf("%d documentos fallaron", failed)
	}
	return models.Failed(message, strings.Join(details, "; "))
}
