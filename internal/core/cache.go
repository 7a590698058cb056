package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// Cache stores readings keyed by the DD.MM.YYYY date. A reading depends only
// on its date, so entries never go stale; TTLs only bound memory.
type Cache interface {
	Get(ctx context.Context, key string) (numerology.Reading, bool, error)
	Set(ctx context.Context, key string, r numerology.Reading) error
}

const readingKeyPrefix = "birthmatrix:reading:"

// RedisCache is a Cache shared between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. A zero ttl stores keys without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (numerology.Reading, bool, error) {
	data, err := c.client.Get(ctx, readingKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return numerology.Reading{}, false, nil
	}
	if err != nil {
		return numerology.Reading{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var r numerology.Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return numerology.Reading{}, false, fmt.Errorf("decode cached reading %s: %w", key, err)
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r numerology.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reading %s: %w", key, err)
	}
	if err := c.client.Set(ctx, readingKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Health checks the Redis connection.
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is a bounded in-process Cache. When full it is cleared rather
// than evicting individual keys.
type MemoryCache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]numerology.Reading
}

// NewMemoryCache returns a MemoryCache holding at most max readings.
func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = 10000
	}
	return &MemoryCache{max: max, entries: make(map[string]numerology.Reading)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (numerology.Reading, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, r numerology.Reading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.entries = make(map[string]numerology.Reading)
	}
	c.entries[key] = r
	return nil
}

// Len returns the number of cached readings.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
