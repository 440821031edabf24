package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelcheck/backend/internal/domain"
)

func newTestStore(t *testing.T, ttls map[string]time.Duration) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), ttls, time.Hour)
}

func TestFileStore_SetAndGet(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	err := store.Set(ctx, "product", "737628064502", payload{Name: "Kettle Chips", Value: 2.0})
	require.NoError(t, err)

	var got payload
	err = store.Get(ctx, "product", "737628064502", &got)
	require.NoError(t, err)
	assert.Equal(t, "Kettle Chips", got.Name)
	assert.Equal(t, 2.0, got.Value)
}

func TestFileStore_MissingKey(t *testing.T) {
	store := newTestStore(t, nil)

	var got map[string]any
	err := store.Get(context.Background(), "product", "does-not-exist", &got)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestFileStore_NamespaceIsolation(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product", "key", "product-value"))

	var got string
	err := store.Get(ctx, "search", "key", &got)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestFileStore_TTLExpiry(t *testing.T) {
	ttls := map[string]time.Duration{"product": 50 * time.Millisecond}
	store := newTestStore(t, ttls)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product", "expiring", "value"))

	var got string
	require.NoError(t, store.Get(ctx, "product", "expiring", &got))

	time.Sleep(80 * time.Millisecond)

	err := store.Get(ctx, "product", "expiring", &got)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestFileStore_NamespaceTTLOverridesDefault(t *testing.T) {
	// analysis gets a long TTL while the default is tiny
	dir := t.TempDir()
	ttls := map[string]time.Duration{"analysis": time.Hour}
	store := NewFileStore(dir, ttls, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "analysis", "key", "long-lived"))
	require.NoError(t, store.Set(ctx, "other", "key", "short-lived"))

	time.Sleep(80 * time.Millisecond)

	var got string
	assert.NoError(t, store.Get(ctx, "analysis", "key", &got))
	assert.ErrorIs(t, store.Get(ctx, "other", "key", &got), domain.ErrCacheMiss)
}

func TestFileStore_CorruptEntryIsAMiss(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product", "corrupt", "value"))

	// Truncate the underlying file to invalid JSON
	err := os.WriteFile(store.path("product", "corrupt"), []byte("{not json"), 0o644)
	require.NoError(t, err)

	var got string
	assert.ErrorIs(t, store.Get(ctx, "product", "corrupt", &got), domain.ErrCacheMiss)
}

func TestFileStore_Overwrite(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product", "key", "first"))
	require.NoError(t, store.Set(ctx, "product", "key", "second"))

	var got string
	require.NoError(t, store.Get(ctx, "product", "key", &got))
	assert.Equal(t, "second", got)
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "product", "key", "value"))
	require.NoError(t, store.Delete(ctx, "product", "key"))

	var got string
	assert.ErrorIs(t, store.Get(ctx, "product", "key", &got), domain.ErrCacheMiss)

	// Deleting an absent key is not an error
	assert.NoError(t, store.Delete(ctx, "product", "never-existed"))
}

func TestFileStore_DegradedMode(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail
	base := t.TempDir()
	blocked := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	store := NewFileStore(blocked, nil, time.Hour)
	ctx := context.Background()

	assert.True(t, store.Degraded())

	// Set is a silent no-op, Get always misses
	assert.NoError(t, store.Set(ctx, "product", "key", "value"))

	var got string
	assert.ErrorIs(t, store.Get(ctx, "product", "key", &got), domain.ErrCacheMiss)
	assert.NoError(t, store.Delete(ctx, "product", "key"))
}

func TestFileStore_PathIsStableAndSafe(t *testing.T) {
	store := newTestStore(t, nil)

	a := store.path("search", "organic peanut butter / crunchy?")
	b := store.path("search", "organic peanut butter / crunchy?")
	c := store.path("search", "organic peanut butter")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// Arbitrary key text never leaks into the filename
	assert.NotContains(t, filepath.Base(a), "?")
	assert.NotContains(t, filepath.Base(a), " ")
}
