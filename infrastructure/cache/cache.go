package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values in redis. A nil *Cache or one without a client
// misses on every Load and ignores writes.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect returns nil when addr is empty or the server does not answer.
func Connect(ctx context.Context, addr string, ttl time.Duration) *Cache {
	if addr == "" {
		slog.Warn("redis address not set, profile caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("redis unreachable, profile caching disabled", "addr", addr, "error", err)
		rdb.Close()
		return nil
	}

	slog.Info("connected to redis", "addr", addr)
	return New(rdb, ttl)
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Load(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.ErrorContext(ctx, "redis GET failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.WarnContext(ctx, "cached value is not valid JSON", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Store(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "cannot encode value for cache", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.ErrorContext(ctx, "redis SET failed", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		slog.ErrorContext(ctx, "redis DEL failed", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
