// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"sync"
)

// Memory is a process-local [Store].
type Memory struct {
	mu          sync.Mutex
	credentials *Credentials
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (store *Memory) Load(_ context.Context) (*Credentials, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.credentials == nil {
		return nil, ErrNotFound
	}
	clone := *store.credentials
	return &clone, nil
}

func (store *Memory) Save(_ context.Context, credentials *Credentials) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	clone := *credentials
	store.credentials = &clone
	return nil
}

func (store *Memory) Clear(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.credentials = nil
	return nil
}
