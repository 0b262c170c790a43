// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # Token Janitor

// Janitor physically purges token records past their expiry.
//
// Lookups already ignore expired records, so the janitor only bounds table
// growth; a missed sweep never makes an expired token valid.
type Janitor struct {
	repository TokenRepository
	now        sec.Clock
	log        *slog.Logger
}

// NewJanitor creates a Janitor. Nil clock and logger fall back to defaults.
func NewJanitor(repository TokenRepository, clock sec.Clock, logger *slog.Logger) *Janitor {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{repository: repository, now: clock, log: logger}
}

// Sweep deletes every expired record once and reports how many were removed.
func (janitor *Janitor) Sweep(context context.Context) (int64, error) {
	purged, err := janitor.repository.DeleteExpired(context, janitor.now())
	if err != nil {
		return 0, fmt.Errorf("auth_janitor_sweep_failed: %w", err)
	}

	if purged > 0 {
		janitor.log.InfoContext(context, "token_janitor_purged", slog.Int64("count", purged))
	}
	return purged, nil
}

// Run sweeps on every tick until ctx is cancelled. Sweep failures are logged
// and retried on the next tick.
func (janitor *Janitor) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if _, err := janitor.Sweep(ctx); err != nil {
				janitor.log.ErrorContext(ctx, "token_janitor_failed", slog.String("error", err.Error()))
			}
		}
	}
}
