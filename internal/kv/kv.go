// Package kv provides the key-value storage port backing the persisted
// collections. Each collection is stored as one JSON document under one fixed
// key; backends are interchangeable and selected by configuration.
package kv

import "context"

// Store defines the storage port. Implementations must treat values as opaque
// bytes and must overwrite the full value on Set (document-granularity writes,
// last writer wins).
type Store interface {
	// Get returns the value at key and whether a value exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the full value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
