// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/taskflow/internal/platform/constants"
)

// # Redis Reset Token Repository

// RedisResetTokenRepository implements ResetTokenRepository using Redis.
type RedisResetTokenRepository struct {
	client redis.UniversalClient
}

// NewResetTokenRepository creates a new Redis-backed ResetTokenRepository.
func NewResetTokenRepository(client redis.UniversalClient) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

/*
Set stores a reset token hash with its associated userID and TTL.

Parameters:
  - context: context.Context
  - tokenHash: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenRepository) Set(context context.Context, tokenHash string, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixResetToken + tokenHash

	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}

	return nil
}

/*
Take reads and removes the token hash in one GETDEL round trip.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: Original UserID
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetTokenRepository) Take(context context.Context, tokenHash string) (string, error) {
	key := constants.RedisPrefixResetToken + tokenHash

	userID, err := repository.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errResetMissing
		}
		return "", fmt.Errorf("redis_reset_token_take_failed: %w", err)
	}

	return userID, nil
}

// # In-Memory Reset Token Repository

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryResetTokenRepository keeps reset tokens in process memory.
// It is used when no Redis instance is configured.
type MemoryResetTokenRepository struct {
	mu      sync.Mutex
	entries map[string]resetEntry
	now     func() time.Time
}

// NewMemoryResetTokenRepository creates an empty in-memory store.
func NewMemoryResetTokenRepository(now func() time.Time) *MemoryResetTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryResetTokenRepository{entries: make(map[string]resetEntry), now: now}
}

// Set implements ResetTokenRepository.
func (repository *MemoryResetTokenRepository) Set(_ context.Context, tokenHash string, userID string, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.entries[tokenHash] = resetEntry{userID: userID, expiresAt: repository.now().Add(ttl)}
	return nil
}

// Take implements ResetTokenRepository. Expired entries are dropped on access.
func (repository *MemoryResetTokenRepository) Take(_ context.Context, tokenHash string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entry, ok := repository.entries[tokenHash]
	if !ok {
		return "", errResetMissing
	}
	delete(repository.entries, tokenHash)

	if !repository.now().Before(entry.expiresAt) {
		return "", errResetMissing
	}
	return entry.userID, nil
}
