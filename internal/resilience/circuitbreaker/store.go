package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"citypulse/internal/repository"
)

// Store wraps a repository.KVStore with circuit breaker protection.
// A missing key is a normal answer and does not count as a failure.
type Store struct {
	cb    *CircuitBreaker
	inner repository.KVStore
}

// NewStore wraps inner using StoreConfig.
func NewStore(inner repository.KVStore) *Store {
	return NewStoreWithConfig(inner, StoreConfig())
}

// NewStoreWithConfig wraps inner using cfg. cfg.IsSuccessful is replaced.
func NewStoreWithConfig(inner repository.KVStore, cfg Config) *Store {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, repository.ErrKeyNotFound)
	}
	return &Store{cb: New(cfg), inner: inner}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Get(ctx, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.inner.Set(ctx, key, value)
	})
	return err
}

// Ping bypasses the breaker so health checks always see the real store.
func (s *Store) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// State returns the current state of the circuit breaker.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

// Name returns the name of the circuit breaker.
func (s *Store) Name() string {
	return s.cb.Name()
}
