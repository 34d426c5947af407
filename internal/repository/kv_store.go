// Package repository declares the persistence ports used by the use case layer.
package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a process-wide string key-value store.
// Implementations provide no transactions; callers that need
// read-modify-write consistency serialize on their own.
type KVStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
