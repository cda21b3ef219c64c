package tokencache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCachePutAndGet(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx, "accounting")
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "accounting", "tok-1", time.Hour))

	got, ok := cache.Get(ctx, "accounting")
	assert.True(t, ok)
	assert.Equal(t, "tok-1", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(ctx, "accounting", "tok-1", time.Hour))

	// Still valid just before the deadline.
	cache.now = func() time.Time { return now.Add(59 * time.Minute) }
	got, ok := cache.Get(ctx, "accounting")
	assert.True(t, ok)
	assert.Equal(t, "tok-1", got)

	// Gone after it.
	cache.now = func() time.Time { return now.Add(61 * time.Minute) }
	_, ok = cache.Get(ctx, "accounting")
	assert.False(t, ok)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "accounting", "tok-1", time.Hour))
	require.NoError(t, cache.Invalidate(ctx, "accounting"))

	_, ok := cache.Get(ctx, "accounting")
	assert.False(t, ok)
}

func TestNewFromEnvSelectsBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	t.Setenv("TOKEN_CACHE_BACKEND", "")
	assert.IsType(t, &MemoryCache{}, NewFromEnv(client), "memory is the default backend")

	t.Setenv("TOKEN_CACHE_BACKEND", "redis")
	assert.IsType(t, &RedisCache{}, NewFromEnv(client))
}

func TestRedisCacheNamespacesKeys(t *testing.T) {
	t.Parallel()

	cache := NewRedisCache(nil, "accounting")
	assert.Equal(t, "accounting:bearer", cache.key("bearer"))

	// Empty prefix falls back so tokens never land on bare keys.
	cache = NewRedisCache(nil, "")
	assert.Equal(t, "tokencache:bearer", cache.key("bearer"))
}

func TestMemoryCacheKeysAreIndependent(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "tenant-a", "tok-a", time.Hour))
	require.NoError(t, cache.Put(ctx, "tenant-b", "tok-b", time.Hour))
	require.NoError(t, cache.Invalidate(ctx, "tenant-a"))

	_, ok := cache.Get(ctx, "tenant-a")
	assert.False(t, ok)

	got, ok := cache.Get(ctx, "tenant-b")
	assert.True(t, ok)
	assert.Equal(t, "tok-b", got)
}
