package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicmed/outbreak-engine/internal/domain"
)

const redisKeyPrefix = "outbreak:scan:"

// Redis is the distributed implementation of domain.ResultCache, for
// deployments running more than one engine instance. Expiry is delegated to
// redis TTLs, so there is no capacity bound to enforce here. Any redis
// failure degrades to a cache miss: the scan recomputes instead of failing.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a redis-backed result cache.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "redis_cache"),
	}
}

func (c *Redis) Get(ctx context.Context, key string) (*domain.CacheEntry, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed, treating as miss", "error", err, "key", key)
		}
		return nil, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss", "error", err, "key", key)
		return nil, false
	}
	return &entry, true
}

func (c *Redis) Put(ctx context.Context, key string, entry *domain.CacheEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("failed to marshal cache entry", "error", err, "key", key)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "error", err, "key", key)
	}
}
