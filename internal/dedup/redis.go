package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces dedup keys in a shared Redis.
const keyPrefix = "riposte:seen:"

// RedisFilter dedupes across replicas with a single SETNX per event. The
// TTL is the dedup window; Redis expiry does the cleanup.
type RedisFilter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisFilter wraps an existing Redis client. The caller keeps ownership
// of the client.
func NewRedisFilter(rdb *redis.Client, ttl time.Duration) *RedisFilter {
	if ttl <= 0 {
		ttl = DefaultWindow
	}
	return &RedisFilter{rdb: rdb, ttl: ttl}
}

// Seen atomically marks the key and reports whether it already existed.
func (f *RedisFilter) Seen(ctx context.Context, key string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, keyPrefix+key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return !set, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (f *RedisFilter) Close() error {
	return nil
}
