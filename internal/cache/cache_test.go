package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	_, ok := c.Get(ctx, "client")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "client", "token-1", time.Minute))

	token, ok := c.Get(ctx, "client")
	assert.True(t, ok)
	assert.Equal(t, "token-1", token)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "client")
	assert.False(t, ok, "token must expire at its ttl")
}

func TestMemoryCache_IgnoresNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "client", "token", 0))
	require.NoError(t, c.Set(ctx, "client", "token", -time.Second))

	_, ok := c.Get(ctx, "client")
	assert.False(t, ok)
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Host = mr.Host()
	cfg.Port = mr.Port()

	c, err := NewRedisCache(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	_, ok := c.Get(ctx, "client-id")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "client-id", "token-1", 30*time.Minute))

	token, ok := c.Get(ctx, "client-id")
	assert.True(t, ok)
	assert.Equal(t, "token-1", token)

	assert.False(t, mr.Exists("client-id"), "raw client id must not be used as key")
	assert.True(t, mr.Exists(redisKey("client-id")))

	mr.FastForward(30 * time.Minute)
	_, ok = c.Get(ctx, "client-id")
	assert.False(t, ok)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := DefaultRedisConfig()
	cfg.Host = mr.Host()
	cfg.Port = mr.Port()
	mr.Close()

	_, err = NewRedisCache(cfg)
	assert.Error(t, err)
}
