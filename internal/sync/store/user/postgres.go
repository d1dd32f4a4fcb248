package user

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

// PostgresStore persists users in the usuarios table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
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

const userColumns = `cedula, tipo_documento, primer_nombre, segundo_nombre,
	primer_apellido, segundo_apellido, email, fecha_nacimiento, tenant_id,
	central_ref, created_at`

func (s *PostgresStore) CreatePending(ctx context.Context, user models.UserSyncRequest) error {
	query := `
		INSERT INTO usuarios (cedula, tipo_documento, primer_nombre, segundo_nombre,
			primer_apellido, segundo_apellido, email, fecha_nacimiento, tenant_id,
			central_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NOW())
	`
	var tenantID any
	if user.TenantID != nil {
		tenantID = uuid.UUID(*user.TenantID)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		user.Cedula.String(),
		user.DocumentType.String(),
		user.FirstName,
		nullString(user.SecondName),
		user.FirstSurname,
		nullString(user.SecondSurname),
		nullString(user.Email),
		user.BirthDate,
		tenantID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert pending user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, cedula id.Cedula) (*Record, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE cedula = $1`
	record, err := scanUser(s.execer(ctx).QueryRowContext(ctx, query, cedula.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]models.UserSyncRequest, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE central_ref IS NULL ORDER BY created_at`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pending users: %w", err)
	}
	defer rows.Close()

	var pending []models.UserSyncRequest
	for rows.Next() {
		record, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		pending = append(pending, record.User)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return pending, nil
}

func (s *PostgresStore) MarkSynced(ctx context.Context, cedula id.Cedula, ref id.HistoryID) error {
	query := `
		UPDATE usuarios
		SET central_ref = $2, synced_at = NOW()
		WHERE cedula = $1 AND central_ref IS NULL
	`
	result, err := s.execer(ctx).ExecContext(ctx, query, cedula.String(), ref.String())
	if err != nil {
		return fmt.Errorf("mark user synced: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark user synced rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	existing, err := s.Get(ctx, cedula)
	if err != nil {
		return err
	}
	if current, set := existing.State.HistoryID(); set && current == ref {
		return nil
	}
	return sentinel.ErrAlreadySynced
}

func (s *PostgresStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE central_ref IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending users: %w", err)
	}
	return count, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*Record, error) {
	var (
		record        Record
		cedula        string
		docType       string
		secondName    sql.NullString
		secondSurname sql.NullString
		email         sql.NullString
		birthDate     sql.NullTime
		tenantID      uuid.NullUUID
		centralRef    sql.NullString
	)
	err := row.Scan(
		&cedula,
		&docType,
		&record.User.FirstName,
		&secondName,
		&record.User.FirstSurname,
		&secondSurname,
		&email,
		&birthDate,
		&tenantID,
		&centralRef,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.User.Cedula = id.Cedula(cedula)
	record.User.DocumentType = id.DocumentType(docType)
	record.User.SecondName = secondName.String
	record.User.SecondSurname = secondSurname.String
	record.User.Email = email.String
	if birthDate.Valid {
		bd := birthDate.Time
		record.User.BirthDate = &bd
	}
	if tenantID.Valid {
		tid := id.TenantID(tenantID.UUID)
		record.User.TenantID = &tid
	}
	if centralRef.Valid {
		record.State = models.Synced(id.HistoryID(centralRef.String))
	} else {
		record.State = models.Pending
	}
	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
