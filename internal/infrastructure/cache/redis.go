package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is the shared second cache layer. Every backend failure is logged
// and swallowed: reads degrade to misses, writes and invalidations are
// dropped.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("redis get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed, entry dropped", "key", key, "error", err)
	}
}

// DeletePattern removes every key matching the glob pattern using a SCAN
// walk, so it never blocks the server the way KEYS would.
func (r *Redis) DeletePattern(ctx context.Context, pattern string) {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			r.deleteKeys(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("redis scan failed during invalidation", "pattern", pattern, "error", err)
	}
	if len(keys) > 0 {
		r.deleteKeys(ctx, keys)
	}
}

func (r *Redis) deleteKeys(ctx context.Context, keys []string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("redis del failed during invalidation", "keys", len(keys), "error", err)
	}
}
