// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/users/auth"
)

// # Clock

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// # In-memory Repositories

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*auth.User)}
}

func (repository *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user, ok := repository.users[id]
	if !ok {
		return nil, auth.ErrUserMissing
	}
	clone := *user
	return &clone, nil
}

func (repository *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserMissing
}

func (repository *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, existing := range repository.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return auth.ErrDuplicateRegistration
		}
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user, ok := repository.users[userID]
	if !ok {
		return auth.ErrUserMissing
	}
	user.PasswordHash = newHash
	return nil
}

func (repository *memoryUsers) remove(id string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.users, id)
}

func (repository *memoryUsers) count() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.users)
}

type memoryTokens struct {
	mu      sync.Mutex
	records map[string]*auth.Token

	// failWrites makes every blacklist call fail.
	failWrites error
	// failCreates makes every create call fail.
	failCreates error
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{records: make(map[string]*auth.Token)}
}

func (repository *memoryTokens) Create(_ context.Context, token *auth.Token) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failCreates != nil {
		return repository.failCreates
	}
	clone := *token
	repository.records[token.Value] = &clone
	return nil
}

func (repository *memoryTokens) FindActive(_ context.Context, value string, kind sec.TokenKind, now time.Time) (*auth.Token, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	record, ok := repository.records[value]
	if !ok || record.Kind != kind || record.Blacklisted || !record.ExpiresAt.After(now) {
		return nil, auth.ErrTokenMissing
	}
	clone := *record
	return &clone, nil
}

func (repository *memoryTokens) Blacklist(_ context.Context, value string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWrites != nil {
		return repository.failWrites
	}
	if record, ok := repository.records[value]; ok {
		record.Blacklisted = true
	}
	return nil
}

func (repository *memoryTokens) BlacklistUser(_ context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failWrites != nil {
		return repository.failWrites
	}
	for _, record := range repository.records {
		if record.UserID == userID {
			record.Blacklisted = true
		}
	}
	return nil
}

func (repository *memoryTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	var purged int64
	for value, record := range repository.records {
		if !record.ExpiresAt.After(now) {
			delete(repository.records, value)
			purged++
		}
	}
	return purged, nil
}

func (repository *memoryTokens) count() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.records)
}

func (repository *memoryTokens) get(value string) *auth.Token {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return repository.records[value]
}

// memoryTransactor restores both stores when fn fails.
type memoryTransactor struct {
	users  *memoryUsers
	tokens *memoryTokens
}

func (transactor *memoryTransactor) WithinTx(_ context.Context, fn func(users auth.UserRepository, tokens auth.TokenRepository) error) error {
	users := transactor.users.snapshot()
	records := transactor.tokens.snapshot()

	if err := fn(transactor.users, transactor.tokens); err != nil {
		transactor.users.restore(users)
		transactor.tokens.restore(records)
		return err
	}
	return nil
}

func (repository *memoryUsers) snapshot() map[string]auth.User {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	copied := make(map[string]auth.User, len(repository.users))
	for id, user := range repository.users {
		copied[id] = *user
	}
	return copied
}

func (repository *memoryUsers) restore(users map[string]auth.User) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.users = make(map[string]*auth.User, len(users))
	for id, user := range users {
		repository.users[id] = &user
	}
}

func (repository *memoryTokens) snapshot() map[string]auth.Token {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	copied := make(map[string]auth.Token, len(repository.records))
	for value, record := range repository.records {
		copied[value] = *record
	}
	return copied
}

func (repository *memoryTokens) restore(records map[string]auth.Token) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.records = make(map[string]*auth.Token, len(records))
	for value, record := range records {
		repository.records[value] = &record
	}
}

type recordingSeeder struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (seeder *recordingSeeder) SeedDefaults(_ context.Context, userID string) error {
	seeder.mu.Lock()
	defer seeder.mu.Unlock()
	seeder.users = append(seeder.users, userID)
	return seeder.err
}

// # Harness

type harness struct {
	clock    *stepClock
	ring     *sec.KeyRing
	tokens   *sec.TokenService
	users    *memoryUsers
	records  *memoryTokens
	resets   *auth.MemoryResetTokenRepository
	seeder   *recordingSeeder
	issuer   *auth.Issuer
	verifier *auth.Verifier
	service  *auth.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock:   newStepClock(),
		users:   newMemoryUsers(),
		records: newMemoryTokens(),
		seeder:  &recordingSeeder{},
	}

	ring, err := sec.NewKeyRing(sec.KeyRingConfig{Seed: "env-secret", History: 2, Clock: h.clock.Now})
	require.NoError(t, err)
	h.ring = ring

	tokens, err := sec.NewTokenService(ring, "default-secret", "taskflow", h.clock.Now)
	require.NoError(t, err)
	h.tokens = tokens

	h.resets = auth.NewMemoryResetTokenRepository(h.clock.Now)
	h.issuer = auth.NewIssuer(tokens, h.records)
	h.verifier = auth.NewVerifier(tokens, h.records, h.users, h.clock.Now)
	transactor := &memoryTransactor{users: h.users, tokens: h.records}
	h.service = auth.NewService(h.users, h.records, h.resets, transactor, h.issuer, tokens, h.seeder, h.clock.Now)

	return h
}

// register opens a session for a fresh account.
func (h *harness) register(t *testing.T, email string) *auth.Session {
	t.Helper()
	session, err := h.service.Register(context.Background(), email, "secret-password")
	require.NoError(t, err)
	return session
}

var errStoreDown = errors.New("token store unavailable")
