package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache backed by a shared Redis instance, for fleets of
// clients that should share one view of slow-moving exchange data.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedis wraps an existing Redis client. The prefix namespaces keys
// so several services can share one database.
func NewRedis(rdb redis.Cmdable, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	// Best effort: a write failure just means the next read misses.
	r.rdb.Set(ctx, r.key(key), value, ttl)
}
