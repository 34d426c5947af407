package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"citypulse/internal/resilience/retry"
)

// ErrMissingPath is returned by OpenSQLite when no database file is configured.
var ErrMissingPath = errors.New("SQLITE_PATH not set")

// sqlitePool keeps one connection: SQLite allows a single writer, and the
// stores issue one short statement per call.
var sqlitePool = ConnectionConfig{MaxOpenConns: 1, MaxIdleConns: 1}

// OpenSQLite opens (creating if needed) the database file at path and its
// parent directory. WAL journaling and a busy timeout let the API server and
// the CLI share one file.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	rc := retry.ConnectConfig()
	rc.Op = "ping sqlite"
	rc.MaxAttempts = 1
	return open(ctx, "sqlite", sqliteDSN(path), sqlitePool, rc)
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}
