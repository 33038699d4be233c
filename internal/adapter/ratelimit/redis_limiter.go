package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

const (
	counterKeyFmt = "ratelimit:search:%s"
	blocklistKey  = "ratelimit:blocklist"
)

// RedisLimiter is a fixed-window rate gate backed by Redis. Each admitted
// request increments a per-client counter that expires with the window; keys
// on the blocklist set are denied outright.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Admit(ctx context.Context, key string, cost int64) (domain.Decision, error) {
	blocked, err := l.client.SIsMember(ctx, blocklistKey, key).Result()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("check blocklist: %w", err)
	}
	if blocked {
		return domain.Decision{Allowed: false, Reason: domain.DenyBlocked}, nil
	}

	counterKey := fmt.Sprintf(counterKeyFmt, key)
	count, err := l.client.IncrBy(ctx, counterKey, cost).Result()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("increment window counter: %w", err)
	}
	if count == cost {
		// First hit in this window owns setting the expiry.
		if err := l.client.Expire(ctx, counterKey, l.window).Err(); err != nil {
			return domain.Decision{}, fmt.Errorf("set window expiry: %w", err)
		}
	}

	resetIn, err := l.client.TTL(ctx, counterKey).Result()
	if err != nil || resetIn < 0 {
		resetIn = l.window
	}

	if count > l.limit {
		return domain.Decision{
			Allowed:   false,
			Reason:    domain.DenyRateLimit,
			Remaining: 0,
			ResetIn:   resetIn,
		}, nil
	}
	return domain.Decision{
		Allowed:   true,
		Remaining: l.limit - count,
		ResetIn:   resetIn,
	}, nil
}

// Block adds a client key to the blocklist until it is removed by an operator.
func (l *RedisLimiter) Block(ctx context.Context, key string) error {
	return l.client.SAdd(ctx, blocklistKey, key).Err()
}

func (l *RedisLimiter) Unblock(ctx context.Context, key string) error {
	return l.client.SRem(ctx, blocklistKey, key).Err()
}
