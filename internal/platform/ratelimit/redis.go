// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/taskflow/internal/platform/constants"
)

// Redis limits requests per key with fixed-window counters stored in Redis.
type Redis struct {
	client redis.UniversalClient
	max    int64
	window time.Duration
}

// NewRedis creates a shared limiter admitting max requests per window.
func NewRedis(client redis.UniversalClient, max int, window time.Duration) *Redis {
	return &Redis{client: client, max: int64(max), window: window}
}

// Allow implements [Limiter].
func (limiter *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	count, err := limiter.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := limiter.client.Expire(ctx, redisKey, limiter.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}

	if count <= limiter.max {
		return Decision{Allowed: true}, nil
	}

	ttl, err := limiter.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = limiter.window
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}
