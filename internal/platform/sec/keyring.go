// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/constants"
)

// # Key Ring Contracts

// Clock returns the current time. Tests inject a fixed or stepped clock.
type Clock func() time.Time

// rotatingKeyLength is the byte length of generated signing secrets.
const rotatingKeyLength = 64

// Key is a single signing secret addressed by its 'kid'.
type Key struct {
	ID        string
	Secret    []byte
	CreatedAt time.Time
}

// KeyRingConfig holds the construction parameters of a [KeyRing].
type KeyRingConfig struct {
	// Seed is the static environment secret registered as the first entry.
	Seed string

	// History is the number of prior keys retained next to the current one.
	History int

	// Clock defaults to time.Now.
	Clock Clock

	// Random defaults to crypto/rand.Reader.
	Random io.Reader

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// KeyRing is the process-wide pool of access token signing secrets.
//
// # Concurrency
//
// Rotation and lookups may overlap: every method is safe for concurrent use.
// Exactly one entry is current at any time; at most History prior entries
// are retained, oldest evicted first.
type KeyRing struct {
	mu      sync.RWMutex
	keys    map[string]Key
	order   []string
	current string

	history int
	now     Clock
	random  io.Reader
	log     *slog.Logger
}

// NewKeyRing seeds the ring with the environment secret and generates the
// first rotating key, which becomes current.
func NewKeyRing(cfg KeyRingConfig) (*KeyRing, error) {
	if cfg.Seed == "" {
		return nil, errors.New("keyring: seed secret is required")
	}
	if cfg.History < 1 {
		return nil, fmt.Errorf("keyring: history must be at least 1, got %d", cfg.History)
	}

	ring := &KeyRing{
		keys:    make(map[string]Key, cfg.History+1),
		history: cfg.History,
		now:     cfg.Clock,
		random:  cfg.Random,
		log:     cfg.Logger,
	}
	if ring.now == nil {
		ring.now = time.Now
	}
	if ring.random == nil {
		ring.random = rand.Reader
	}
	if ring.log == nil {
		ring.log = slog.Default()
	}

	createdAt := ring.now()
	ring.add(Key{
		ID:        constants.EnvKeyPrefix + strconv.FormatInt(createdAt.UnixMilli(), 10),
		Secret:    []byte(cfg.Seed),
		CreatedAt: createdAt,
	})

	if _, err := ring.Rotate(); err != nil {
		return nil, err
	}

	return ring, nil
}

// # Key Access

// Current returns the key used for signing new tokens.
func (ring *KeyRing) Current() Key {
	ring.mu.RLock()
	defer ring.mu.RUnlock()
	return ring.keys[ring.current]
}

// Lookup returns the secret registered under id, or false once it was evicted.
func (ring *KeyRing) Lookup(id string) ([]byte, bool) {
	ring.mu.RLock()
	defer ring.mu.RUnlock()

	key, ok := ring.keys[id]
	if !ok {
		return nil, false
	}
	return key.Secret, true
}

// IDs returns the retained key identifiers, oldest first.
func (ring *KeyRing) IDs() []string {
	ring.mu.RLock()
	defer ring.mu.RUnlock()

	ids := make([]string, len(ring.order))
	copy(ids, ring.order)
	return ids
}

// # Rotation

// Rotate generates a new random secret, marks it current and evicts the
// oldest entries beyond the retention bound.
func (ring *KeyRing) Rotate() (Key, error) {
	secret := make([]byte, rotatingKeyLength)
	if _, err := io.ReadFull(ring.random, secret); err != nil {
		return Key{}, fmt.Errorf("keyring: failed to generate signing key: %w", err)
	}

	suffix := make([]byte, 4)
	if _, err := io.ReadFull(ring.random, suffix); err != nil {
		return Key{}, fmt.Errorf("keyring: failed to generate key id: %w", err)
	}

	createdAt := ring.now()
	key := Key{
		ID:        strconv.FormatInt(createdAt.UnixMilli(), 10) + "-" + hex.EncodeToString(suffix),
		Secret:    secret,
		CreatedAt: createdAt,
	}

	ring.mu.Lock()
	ring.add(key)
	evicted := ring.evict()
	ring.mu.Unlock()

	ring.log.Info("key_rotated",
		slog.String("key_id", key.ID),
		slog.Any("evicted", evicted),
	)

	return key, nil
}

// Run rotates the ring on every tick until ctx is cancelled.
//
// A rotation failure is returned to the caller, which must treat it as fatal.
func (ring *KeyRing) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			if _, err := ring.Rotate(); err != nil {
				return err
			}
		}
	}
}

// add registers key as current. Callers hold the write lock (or own the ring).
func (ring *KeyRing) add(key Key) {
	ring.keys[key.ID] = key
	ring.order = append(ring.order, key.ID)
	ring.current = key.ID
}

// evict drops the oldest entries beyond current + history.
func (ring *KeyRing) evict() []string {
	var evicted []string
	for len(ring.order) > ring.history+1 {
		oldest := ring.order[0]
		ring.order = ring.order[1:]
		delete(ring.keys, oldest)
		evicted = append(evicted, oldest)
	}
	return evicted
}
