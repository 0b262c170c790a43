// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package boltdb implements the credential store on a local bbolt file.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/taibuivan/taskflow/internal/client/storage"
)

var (
	bucketSession = []byte("session")
	keyCurrent    = []byte("current")
)

// openTimeout bounds waiting for another process holding the file lock.
const openTimeout = time.Second

// Storage is a [storage.Store] on a bbolt database file.
type Storage struct {
	db *bbolt.DB
}

// New opens (or creates) the database at path.
func New(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("boltdb: failed to open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltdb: failed to initialize buckets: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the database file.
func (store *Storage) Close() error {
	return store.db.Close()
}

func (store *Storage) Load(_ context.Context) (*storage.Credentials, error) {
	var credentials *storage.Credentials

	err := store.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(keyCurrent)
		if data == nil {
			return storage.ErrNotFound
		}

		credentials = &storage.Credentials{}
		if err := json.Unmarshal(data, credentials); err != nil {
			return fmt.Errorf("boltdb: failed to decode credentials: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return credentials, nil
}

func (store *Storage) Save(_ context.Context, credentials *storage.Credentials) error {
	data, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("boltdb: failed to encode credentials: %w", err)
	}

	return store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Put(keyCurrent, data)
	})
}

func (store *Storage) Clear(_ context.Context) error {
	return store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyCurrent)
	})
}
