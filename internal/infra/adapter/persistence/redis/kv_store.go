// Package redis implements the repository ports on Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"citypulse/internal/repository"
)

// KVStore stores each entry as a plain Redis string without expiry.
type KVStore struct {
	client *redis.Client
}

// NewKVStore wraps an existing client.
func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client}
}

// NewKVStoreWithURL creates a client from a redis:// URL.
func NewKVStoreWithURL(url string) (*KVStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &KVStore{client: redis.NewClient(opts)}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("Get: %w", err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *KVStore) Close() error {
	return s.client.Close()
}
