// Package schema carries the DDL for the sync tables so deployments and
// integration tests apply the same definitions.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var ddl string

// DDL returns the SQL statements creating the sync tables. All statements are
// idempotent (IF NOT EXISTS), safe to run on every startup.
func DDL() string { return ddl }

// Apply runs the DDL against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply sync schema: %w", err)
	}
	return nil
}
