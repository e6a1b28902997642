// Package cache wraps Redis as a best-effort TTL key-value store. Every
// failure mode (bad URL, unreachable server, command error) degrades to a
// cache miss so callers never depend on Redis being up.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New connects to Redis at url (redis://host:port/db). An invalid URL yields
// a permanently-degraded cache rather than an error.
func New(url string, logger *slog.Logger) *Cache {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid redis url, cache disabled", "error", err)
		return &Cache{logger: logger}
	}
	return &Cache{client: redis.NewClient(opts), logger: logger}
}

// Ping reports whether the cache backend is reachable. Callers use this for
// startup logging only; a failed ping does not disable the cache.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return redis.ErrClosed
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the cached value and whether it was present. Connection and
// command failures read as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with the given TTL and reports success. Failures
// are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return false
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}
