// Package persistence selects and opens the configured key-value backend.
package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"citypulse/internal/config"
	"citypulse/internal/infra/adapter/persistence/memory"
	mongostore "citypulse/internal/infra/adapter/persistence/mongo"
	"citypulse/internal/infra/adapter/persistence/postgres"
	redisstore "citypulse/internal/infra/adapter/persistence/redis"
	"citypulse/internal/infra/adapter/persistence/sqlite"
	"citypulse/internal/infra/db"
	"citypulse/internal/resilience/circuitbreaker"
	"citypulse/internal/resilience/retry"
)

// Handle is an opened backend wrapped in the store circuit breaker.
type Handle struct {
	Store   *circuitbreaker.Store
	Backend string

	closeFn func(context.Context) error
}

// Close releases the backend's connections.
func (h *Handle) Close(ctx context.Context) error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn(ctx)
}

// Open connects to the backend named by cfg.Backend and waits until it answers.
// The sqlite and postgres backends also run their schema migration.
func Open(ctx context.Context, cfg config.StoreConfig) (*Handle, error) {
	h := &Handle{Backend: cfg.Backend}

	switch cfg.Backend {
	case config.BackendSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, sqlDB, db.SQLite); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		h.Store = circuitbreaker.NewStore(sqlite.NewKVStore(sqlDB))
		h.closeFn = func(context.Context) error { return sqlDB.Close() }

	case config.BackendMemory:
		h.Store = circuitbreaker.NewStore(memory.NewKVStore())

	case config.BackendPostgres:
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL, cfg.Pool)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		h.Store = circuitbreaker.NewStore(postgres.NewKVStore(sqlDB))
		h.closeFn = func(context.Context) error { return sqlDB.Close() }

	case config.BackendRedis:
		s, err := redisstore.NewKVStoreWithURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := waitReady(ctx, cfg.Backend, s.Ping); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		h.Store = circuitbreaker.NewStore(s)
		h.closeFn = func(context.Context) error { return s.Close() }

	case config.BackendMongo:
		s, client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := waitReady(ctx, cfg.Backend, s.Ping); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		h.Store = circuitbreaker.NewStore(s)
		h.closeFn = client.Disconnect

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	slog.Info("key-value store ready", slog.String("backend", cfg.Backend))
	return h, nil
}

func waitReady(ctx context.Context, backend string, ping func(context.Context) error) error {
	rc := retry.ConnectConfig()
	rc.Op = "ping " + backend
	return retry.WithBackoff(ctx, rc, func() error {
		return ping(ctx)
	})
}
