// Package repository provides persisted collections over the key-value
// storage port. Each entity kind is one JSON array stored under one fixed
// key; every operation reads the full document, mutates a copy, and writes
// the full document back.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/observability"
)

// Storage keys for the persisted collections
const (
	RecipesKey = "chameleon_recipes"
	GroupsKey  = "chameleon_groups"
	UsersKey   = "chameleon_users"
)

// CorruptStoreError reports that a stored document could not be parsed. The
// operation fails rather than silently resetting the collection.
type CorruptStoreError struct {
	Key string
	Err error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt document at key %q: %v", e.Key, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// Collection is a persisted JSON array of records under a fixed key, with
// lazy initialization from a seed value.
type Collection[T any] struct {
	store kv.Store
	key   string
	seed  []T
}

// NewCollection creates a collection handle. Nothing is written until the
// collection is first read or initialized.
func NewCollection[T any](store kv.Store, key string, seed []T) *Collection[T] {
	if seed == nil {
		seed = []T{}
	}
	return &Collection[T]{store: store, key: key, seed: seed}
}

// Key returns the fixed storage key
func (c *Collection[T]) Key() string {
	return c.key
}

// EnsureInitialized writes the seed value if no document exists yet.
// Idempotent: an existing document is never touched.
func (c *Collection[T]) EnsureInitialized(ctx context.Context) error {
	_, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.WriteAll(ctx, c.seed)
}

// ReadAll ensures initialization and returns the full stored sequence in
// storage order.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	if err := c.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	ctx, span := observability.StartStoreSpan(ctx, "read", c.key)
	defer span.End()

	start := time.Now()
	data, ok, err := c.store.Get(ctx, c.key)
	observability.GetStoreMetrics().RecordOp(ctx, "read", c.key, time.Since(start), len(data), err)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if !ok {
		// Initialized above; a concurrent delete is the only way here
		return append([]T{}, c.seed...), nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		corrupt := &CorruptStoreError{Key: c.key, Err: err}
		observability.RecordError(span, corrupt)
		return nil, corrupt
	}
	return records, nil
}

// WriteAll serializes and overwrites the full stored document. Last writer
// wins at document granularity.
func (c *Collection[T]) WriteAll(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	ctx, span := observability.StartStoreSpan(ctx, "write", c.key)
	defer span.End()

	start := time.Now()
	err = c.store.Set(ctx, c.key, data)
	observability.GetStoreMetrics().RecordOp(ctx, "write", c.key, time.Since(start), len(data), err)
	if err != nil {
		observability.RecordError(span, err)
	}
	return err
}
