// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

/*
TestMemory_Budget admits max requests, rejects the next and refills over time.
*/
func TestMemory_Budget(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := newMemory(3, time.Minute, clock.Now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d", i+1)
	}

	decision, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))

	// Other clients keep their own budget.
	decision, _ = limiter.Allow(ctx, "10.0.0.2")
	assert.True(t, decision.Allowed)

	// One token refills every 20 seconds.
	clock.now = clock.now.Add(21 * time.Second)
	decision, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, decision.Allowed)
}

func TestMemory_EvictIdle(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := newMemory(3, time.Minute, clock.Now)

	_, _ = limiter.Allow(context.Background(), "a")
	clock.now = clock.now.Add(2 * time.Minute)
	_, _ = limiter.Allow(context.Background(), "b")
	clock.now = clock.now.Add(2 * time.Minute)

	assert.Equal(t, 1, limiter.evictIdle(3*time.Minute))
	assert.Len(t, limiter.clients, 1)
	assert.Contains(t, limiter.clients, "b")
}
