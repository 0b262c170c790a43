// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit enforces the per-client request budget on the public API.

Two backends share the [Limiter] contract:

  - [Memory]: per-key token buckets (x/time/rate) held in process memory.
  - [Redis]: fixed-window counters shared by every API replica.

The HTTP layer picks Redis when a cache is configured and falls back to
memory otherwise.
*/
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrBackendUnavailable is returned when the shared counter store cannot be reached.
var ErrBackendUnavailable = errors.New("ratelimit: backend unavailable")

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed bool

	// RetryAfter is a hint for rejected callers.
	RetryAfter time.Duration
}

// Limiter admits or rejects one request for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
