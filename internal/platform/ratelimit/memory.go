// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/taskflow/internal/platform/constants"
)

type memoryClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory limits requests per key using the token bucket algorithm.
//
// The bucket holds max tokens and refills at max per window, which admits the
// same sustained rate as a fixed window of the same size.
type Memory struct {
	mu      sync.Mutex
	clients map[string]*memoryClient

	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewMemory creates an in-process limiter admitting max requests per window.
//
// Idle entries are swept until ctx is cancelled.
func NewMemory(ctx context.Context, max int, window time.Duration) *Memory {
	limiter := newMemory(max, window, time.Now)
	go limiter.sweep(ctx, constants.RateLimitCleanupInterval)
	return limiter
}

func newMemory(max int, window time.Duration, now func() time.Time) *Memory {
	return &Memory{
		clients: make(map[string]*memoryClient),
		limit:   rate.Limit(float64(max) / window.Seconds()),
		burst:   max,
		now:     now,
	}
}

// Allow implements [Limiter]. It never fails.
func (memory *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := memory.now()

	memory.mu.Lock()
	defer memory.mu.Unlock()

	client, found := memory.clients[key]

	// Initialize a new limiter if this is a fresh key
	if !found {
		client = &memoryClient{limiter: rate.NewLimiter(memory.limit, memory.burst)}
		memory.clients[key] = client
	}
	client.lastSeen = now

	reservation := client.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}

	return Decision{Allowed: true}, nil
}

func (memory *Memory) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			memory.evictIdle(constants.RateLimitClientTTL)
		case <-ctx.Done():
			return
		}
	}
}

// evictIdle removes keys that have not been seen within ttl.
func (memory *Memory) evictIdle(ttl time.Duration) int {
	now := memory.now()

	memory.mu.Lock()
	defer memory.mu.Unlock()

	removed := 0
	for key, client := range memory.clients {
		if now.Sub(client.lastSeen) > ttl {
			delete(memory.clients, key)
			removed++
		}
	}
	return removed
}
