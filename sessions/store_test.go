package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/attendly/go-workforce-server/cache"
	"github.com/attendly/go-workforce-server/sessions"
	"github.com/stretchr/testify/require"
)

func TestSingleActiveRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewStore(cache.NewMemoryStore(), time.Hour)

	require.NoError(t, store.Start(ctx, "user-1", "token-a"))

	valid, err := store.IsValid(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.True(t, valid)

	// Rotation: starting a new session retires the previous token even
	// though its signature would still verify.
	require.NoError(t, store.Start(ctx, "user-1", "token-b"))

	valid, err = store.IsValid(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, valid)

	valid, err = store.IsValid(ctx, "user-1", "token-b")
	require.NoError(t, err)
	require.True(t, valid)
}

func TestMissingSessionIsInvalidNotError(t *testing.T) {
	store := sessions.NewStore(cache.NewMemoryStore(), time.Hour)

	valid, err := store.IsValid(context.Background(), "nobody", "token")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestEndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewStore(cache.NewMemoryStore(), time.Hour)

	require.NoError(t, store.Start(ctx, "user-1", "token-a"))
	require.NoError(t, store.End(ctx, "user-1"))
	require.NoError(t, store.End(ctx, "user-1"))

	valid, err := store.IsValid(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	memory := cache.NewMemoryStore(cache.WithNowFunc(func() time.Time { return clock }))
	store := sessions.NewStore(memory, time.Hour)

	require.NoError(t, store.Start(ctx, "user-1", "token-a"))

	clock = now.Add(2 * time.Hour)
	valid, err := store.IsValid(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewStore(cache.NewMemoryStore(), time.Hour)

	require.NoError(t, store.Start(ctx, "user-1", "token-a"))
	require.NoError(t, store.Start(ctx, "user-2", "token-b"))
	require.NoError(t, store.End(ctx, "user-1"))

	valid, err := store.IsValid(ctx, "user-2", "token-b")
	require.NoError(t, err)
	require.True(t, valid)
}
