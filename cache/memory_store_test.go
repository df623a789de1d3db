package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/attendly/go-workforce-server/cache"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	store := cache.NewMemoryStore(cache.WithNowFunc(func() time.Time { return clock }))

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	clock = now.Add(30 * time.Second)
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	clock = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestMemoryStoreIncrementWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	store := cache.NewMemoryStore(cache.WithNowFunc(func() time.Time { return clock }))

	for i := int64(1); i <= 3; i++ {
		count, err := store.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		require.Equal(t, i, count)
	}

	// A fresh window restarts the count.
	clock = now.Add(2 * time.Minute)
	count, err := store.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestKeyNamespacing(t *testing.T) {
	require.Equal(t, "user:42", cache.Key(cache.NamespaceUser, "42"))
	require.Equal(t, "session:42", cache.Key(cache.NamespaceSession, "42"))
}
