package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client shared by the report cache, the job queues and
// the rate limiter. It pings once so a bad REDIS_URL fails at boot instead
// of on the first sale.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
