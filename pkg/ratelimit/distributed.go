package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedLimiter keeps the fixed window counters in Redis so every
// replica of the service draws from the same budget. Each Allow sends
// INCR and EXPIRE as one transactional pipeline, which Redis applies
// atomically per key.
type DistributedLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewDistributedLimiter creates a Redis-backed fixed window limiter.
func NewDistributedLimiter(client *redis.Client, config *Config, prefix string) *DistributedLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if prefix == "" {
		prefix = "spotlight:ratelimit"
	}

	return &DistributedLimiter{
		client: client,
		limit:  int64(config.RequestsPerWindow),
		window: config.WindowDuration,
		prefix: prefix,
	}
}

func (l *DistributedLimiter) counterKey(identity string) string {
	return l.prefix + ":" + identity
}

// Allow consumes one call from the shared counter for the identity. When
// Redis is unreachable it fails open, allowing the call and returning the
// error for the caller to log.
func (l *DistributedLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := l.counterKey(identity)

	var count *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}

	return count.Val() <= l.limit, nil
}

// Remaining reports how many calls the identity has left in the window.
func (l *DistributedLimiter) Remaining(ctx context.Context, identity string) (int, error) {
	used, err := l.client.Get(ctx, l.counterKey(identity)).Int64()
	if errors.Is(err, redis.Nil) {
		return int(l.limit), nil
	}
	if err != nil {
		return 0, err
	}

	if used >= l.limit {
		return 0, nil
	}
	return int(l.limit - used), nil
}

// TTL returns the time until the window for the identity resets.
func (l *DistributedLimiter) TTL(ctx context.Context, identity string) (time.Duration, error) {
	return l.client.TTL(ctx, l.counterKey(identity)).Result()
}

// Reset clears the counter for an identity.
func (l *DistributedLimiter) Reset(ctx context.Context, identity string) error {
	return l.client.Del(ctx, l.counterKey(identity)).Err()
}
