package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/models"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConnection{AddressRedis: mr.Addr()}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupTestCache(t)

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set(ctx, "admin:stats", models.AdminStats{TotalUsers: 3}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	var out models.AdminStats
	found, err := cache.Get(ctx, "admin:stats", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupTestCache(t)

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupTestCache(t)

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out testStruct
	found, err := cache.Get(ctx, "bad", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestRevokeSession(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupTestCache(t)

	revoked, err := cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.RevokeSession(ctx, "jti-1", time.Hour))
	revoked, err = cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.RevokeSession(ctx, "jti-2", 0))
	revoked, err = cache.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "expired tokens need no revocation record")
}

func TestSessionEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache, _ := setupTestCache(t)

	events, err := cache.SubscribeSessionEvents(ctx, "u1", newNoopLogger())
	require.NoError(t, err)

	require.NoError(t, cache.PublishSessionEvent(ctx, models.SessionEvent{Kind: models.SessionSignedIn, UserID: "u2"}))
	require.NoError(t, cache.PublishSessionEvent(ctx, models.SessionEvent{Kind: models.SessionSignedOut, UserID: "u1", SessionID: "jti-1"}))

	select {
	case ev := <-events:
		assert.Equal(t, models.SessionEvent{Kind: models.SessionSignedOut, UserID: "u1", SessionID: "jti-1"}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for session event")
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed")
	}
}
