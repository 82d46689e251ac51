package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesUnderTest(t *testing.T) map[string]Store {
	tempDir, err := os.MkdirTemp("", "chameleon-kv-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	fsStore, err := NewFilesystemStore(tempDir)
	require.NoError(t, err)

	return map[string]Store{
		"memory":     NewMemoryStore(),
		"filesystem": fsStore,
	}
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("get on absent key reports no value", func(t *testing.T) {
				value, ok, err := store.Get(ctx, "missing")
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Nil(t, value)
			})

			t.Run("set then get round-trips", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "doc", []byte(`[{"id":"1"}]`)))

				value, ok, err := store.Get(ctx, "doc")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, `[{"id":"1"}]`, string(value))
			})

			t.Run("set overwrites the full value", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "doc", []byte(`[]`)))

				value, ok, err := store.Get(ctx, "doc")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, `[]`, string(value))
			})
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("delete removes the value", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "doc", []byte(`x`)))
				require.NoError(t, store.Delete(ctx, "doc"))

				_, ok, err := store.Get(ctx, "doc")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("delete on absent key is not an error", func(t *testing.T) {
				assert.NoError(t, store.Delete(ctx, "never-written"))
			})
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := []byte(`[1,2,3]`)
	require.NoError(t, store.Set(ctx, "doc", original))

	// Mutating the caller's slice must not affect the stored value
	original[1] = 'x'

	value, ok, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[1,2,3]`, string(value))

	// Mutating a returned slice must not affect subsequent reads
	value[1] = 'x'
	again, _, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(again))
}

func TestFilesystemStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "chameleon-kv-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewFilesystemStore(tempDir)
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		_, _, err := store.Get(ctx, key)
		assert.Error(t, err, "key %q should be rejected", key)
	}
}

func TestFilesystemStore_WritesUnderBasePath(t *testing.T) {
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "chameleon-kv-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewFilesystemStore(tempDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "chameleon_recipes", []byte(`[]`)))

	_, statErr := os.Stat(filepath.Join(tempDir, "chameleon_recipes.json"))
	assert.NoError(t, statErr)
}
