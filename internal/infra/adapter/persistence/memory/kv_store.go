// Package memory implements the repository ports in process memory.
// It backs the CLI and API when no external store is configured, and the use case tests.
package memory

import (
	"context"
	"sync"

	"citypulse/internal/repository"
)

// KVStore is a map guarded by a RWMutex. Values do not survive a restart.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
