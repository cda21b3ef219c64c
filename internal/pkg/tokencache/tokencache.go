// Package tokencache holds short-lived bearer tokens for external APIs. The
// cache is injected into clients so tests and multi-tenant setups can scope
// tokens explicitly instead of sharing process-wide state.
package tokencache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karage/integrations/internal/pkg/env"
)

// Cache stores one token per key with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, token string, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NewFromEnv selects the cache backend from TOKEN_CACHE_BACKEND. "redis"
// shares tokens between instances through the given client; anything else
// keeps them in process memory.
func NewFromEnv(client *redis.Client) Cache {
	if env.GetEnv("TOKEN_CACHE_BACKEND", "memory") == "redis" {
		return NewRedisCache(client, "tokencache")
	}
	return NewMemoryCache()
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	now func() time.Time
}

// NewMemoryCache creates an empty in-process token cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.token, true
}

func (c *MemoryCache) Put(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{token: token, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// RedisCache is a Cache backed by Redis, for deployments where several
// instances should share one provider token.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed token cache. Keys are namespaced with
// the given prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "tokencache"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Put(ctx context.Context, key, token string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), token, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
