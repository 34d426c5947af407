package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects the SQL flavour of the schema.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// MigrateUp creates the key-value table on PostgreSQL. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	return Migrate(ctx, db, Postgres)
}

// Migrate creates the key-value table for the given dialect. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	updatedAt := "updated_at TIMESTAMPTZ NOT NULL DEFAULT now()"
	if d == SQLite {
		updatedAt = "updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv_entries (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    `+updatedAt+`
)`); err != nil {
		return fmt.Errorf("create kv_entries (%s): %w", d, err)
	}

	// 最終更新順で確認するための運用インデックス
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_kv_entries_updated_at ON kv_entries(updated_at DESC)`); err != nil {
		return fmt.Errorf("create kv_entries index: %w", err)
	}
	return nil
}
