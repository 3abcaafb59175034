package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Hour), mr
}

func TestTokenStore_CreateExistsDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	ok, err := store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Create(ctx, "tok-1", 42))

	ok, err = store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "tok-1"))

	ok, err = store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_MultiplePerUser(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	// one subject may hold several concurrent refresh tokens
	require.NoError(t, store.Create(ctx, "device-a", 7))
	require.NoError(t, store.Create(ctx, "device-b", 7))

	ok, err := store.Exists(ctx, "device-a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Exists(ctx, "device-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenStore_RecordExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Create(ctx, "tok-ttl", 1))
	mr.FastForward(2 * time.Hour)

	ok, err := store.Exists(ctx, "tok-ttl")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Delete(ctx, "never-created"))
}
