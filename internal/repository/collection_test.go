package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chameleon/server/internal/kv"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCollection_EnsureInitialized(t *testing.T) {
	ctx := context.Background()

	t.Run("writes seed when key is absent", func(t *testing.T) {
		store := kv.NewMemoryStore()
		seed := []testRecord{{ID: "1", Name: "seeded"}}
		c := NewCollection(store, "test_docs", seed)

		require.NoError(t, c.EnsureInitialized(ctx))

		records, err := c.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed, records)
	})

	t.Run("does not touch an existing document", func(t *testing.T) {
		store := kv.NewMemoryStore()
		c := NewCollection(store, "test_docs", []testRecord{{ID: "seed"}})

		require.NoError(t, c.WriteAll(ctx, []testRecord{{ID: "existing"}}))
		require.NoError(t, c.EnsureInitialized(ctx))

		records, err := c.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "existing", records[0].ID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := kv.NewMemoryStore()
		c := NewCollection(store, "test_docs", []testRecord{{ID: "seed"}})

		require.NoError(t, c.EnsureInitialized(ctx))
		require.NoError(t, c.EnsureInitialized(ctx))

		records, err := c.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestCollection_ReadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves storage order", func(t *testing.T) {
		store := kv.NewMemoryStore()
		c := NewCollection[testRecord](store, "test_docs", nil)

		written := []testRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		require.NoError(t, c.WriteAll(ctx, written))

		records, err := c.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, written, records)
	})

	t.Run("fails with CorruptStoreError on malformed document", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "test_docs", []byte(`{not json`)))

		c := NewCollection[testRecord](store, "test_docs", nil)

		_, err := c.ReadAll(ctx)
		require.Error(t, err)

		var corrupt *CorruptStoreError
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, "test_docs", corrupt.Key)
	})

	t.Run("corrupt document is not reset by a failed read", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "test_docs", []byte(`{not json`)))

		c := NewCollection[testRecord](store, "test_docs", nil)
		_, err := c.ReadAll(ctx)
		require.Error(t, err)

		raw, ok, err := store.Get(ctx, "test_docs")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `{not json`, string(raw))
	})
}

func TestCollection_WriteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the whole document", func(t *testing.T) {
		store := kv.NewMemoryStore()
		c := NewCollection[testRecord](store, "test_docs", nil)

		require.NoError(t, c.WriteAll(ctx, []testRecord{{ID: "a"}, {ID: "b"}}))
		require.NoError(t, c.WriteAll(ctx, []testRecord{{ID: "c"}}))

		records, err := c.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "c", records[0].ID)
	})

	t.Run("nil records writes an empty array", func(t *testing.T) {
		store := kv.NewMemoryStore()
		c := NewCollection[testRecord](store, "test_docs", nil)

		require.NoError(t, c.WriteAll(ctx, nil))

		raw, ok, err := store.Get(ctx, "test_docs")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `[]`, string(raw))
	})
}

func TestRecipeRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRecipeRepository(kv.NewMemoryStore())

	t.Run("finds a seeded recipe", func(t *testing.T) {
		recipe, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, recipe)
		assert.Equal(t, "Classic Chocolate Chip Cookies", recipe.Title)
	})

	t.Run("returns nil for an unknown id", func(t *testing.T) {
		recipe, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, recipe)
	})
}

func TestUserRepository_Directory(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemoryStore())

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	user, err := repo.GetByID(ctx, "user_2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Mom", user.Name)

	unknown, err := repo.GetByID(ctx, "user_999")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
