package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache is a thin JSON cache over Redis with structured keys.
// Keys are "{tag}:{rest}" and invalidation is by exact tag prefix, never by
// arbitrary substring match.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get unmarshals the cached value into dest; returns false on miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt entry — drop it rather than serve garbage.
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// Set stores the value best-effort; cache write failures are logged, never
// propagated.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache set failed")
	}
}

// InvalidateTag deletes every key under "{tag}:*".
func (c *Cache) InvalidateTag(ctx context.Context, tag string) {
	iter := c.rdb.Scan(ctx, 0, tag+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		log.Warn().Str("tag", tag).Err(err).Msg("cache invalidation scan failed")
	}
}
