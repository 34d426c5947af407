// Package postgres implements the repository ports on PostgreSQL through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"citypulse/internal/repository"
)

type KVStore struct{ db *sql.DB }

func NewKVStore(db *sql.DB) repository.KVStore {
	return &KVStore{db: db}
}

func (repo *KVStore) Get(ctx context.Context, key string) (string, error) {
	const query = `
SELECT value
FROM kv_entries
WHERE key = $1
LIMIT 1`
	var value string
	err := repo.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return value, nil
}

func (repo *KVStore) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
    value      = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Set: ExecContext: %w", err)
	}
	return nil
}

func (repo *KVStore) Ping(ctx context.Context) error {
	if err := repo.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}
