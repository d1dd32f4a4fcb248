package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
	"hcen/pkg/platform/sentinel"
	txcontext "hcen/pkg/platform/tx"
)

// PostgresStore persists documents in the documentos table. Pure I/O; the
// aggregate batch policy lives in the document adapter.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed document store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreatePending(ctx context.Context, doc models.DocumentSyncRequest) error {
	query := `
		INSERT INTO documentos (tenant_id, documento_id, cedula, mensaje_id, central_history_id, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5)
	`
	var messageID any
	if !doc.MessageID.IsNil() {
		messageID = uuid.UUID(doc.MessageID)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.TenantID),
		uuid.UUID(doc.DocumentID),
		doc.Cedula.String(),
		messageID,
		doc.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert pending document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) (*Record, error) {
	query := `
		SELECT tenant_id, documento_id, cedula, mensaje_id, central_history_id, created_at
		FROM documentos
		WHERE tenant_id = $1 AND documento_id = $2
	`
	record, err := scanDocument(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(documentID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListPending(ctx context.Context, cedula id.Cedula, tenantID id.TenantID) ([]models.DocumentSyncRequest, error) {
	query := `
		SELECT tenant_id, documento_id, cedula, mensaje_id, central_history_id, created_at
		FROM documentos
		WHERE cedula = $1 AND tenant_id = $2 AND central_history_id IS NULL
		ORDER BY created_at
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, cedula.String(), uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query pending documents: %w", err)
	}
	defer rows.Close()

	return collectPending(rows)
}

func (s *PostgresStore) ListAllPending(ctx context.Context) ([]models.DocumentSyncRequest, error) {
	query := `
		SELECT tenant_id, documento_id, cedula, mensaje_id, central_history_id, created_at
		FROM documentos
		WHERE central_history_id IS NULL
		ORDER BY created_at
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all pending documents: %w", err)
	}
	defer rows.Close()

	return collectPending(rows)
}

// MarkSynced sets the sentinel only when it is absent. The conditional UPDATE
// makes concurrent sweeps commutative: whichever attempt lands first wins and
// the second observes the same terminal state.
func (s *PostgresStore) MarkSynced(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID, historyID id.HistoryID) error {
	query := `
		UPDATE documentos
		SET central_history_id = $3, synced_at = NOW()
		WHERE tenant_id = $1 AND documento_id = $2 AND central_history_id IS NULL
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(tenantID),
		uuid.UUID(documentID),
		historyID.String(),
	)
	if err != nil {
		return fmt.Errorf("mark document synced: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark document synced rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Nothing updated: either the document is gone or already synced.
	existing, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if ref, set := existing.State.HistoryID(); set && ref == historyID {
		return nil
	}
	return sentinel.ErrAlreadySynced
}

func (s *PostgresStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documentos WHERE central_history_id IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending documents: %w", err)
	}
	return count, nil
}

type documentRow interface {
	Scan(dest ...any) error
}

func scanDocument(row documentRow) (*Record, error) {
	var (
		record    Record
		tenantID  uuid.UUID
		docID     uuid.UUID
		cedula    string
		messageID uuid.NullUUID
		historyID sql.NullString
	)
	if err := row.Scan(&tenantID, &docID, &cedula, &messageID, &historyID, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.Document = models.DocumentSyncRequest{
		TenantID:   id.TenantID(tenantID),
		DocumentID: id.DocumentID(docID),
		Cedula:     id.Cedula(cedula),
		CreatedAt:  record.CreatedAt,
	}
	if messageID.Valid {
		record.Document.MessageID = id.MessageID(messageID.UUID)
	}
	if historyID.Valid {
		record.State = models.Synced(id.HistoryID(historyID.String))
	} else {
		record.State = models.Pending
	}
	return &record, nil
}

func collectPending(rows *sql.Rows) ([]models.DocumentSyncRequest, error) {
	var pending []models.DocumentSyncRequest
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		pending = append(pending, record.Document)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return pending, nil
}
