// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package boltdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/client/storage"
	"github.com/taibuivan/taskflow/internal/client/storage/boltdb"
)

func openStore(t *testing.T, path string) *boltdb.Storage {
	t.Helper()
	store, err := boltdb.New(path)
	require.NoError(t, err)
	return store
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskctl.db")

	store := openStore(t, path)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Save(ctx, &storage.Credentials{
		AccessToken:   "access",
		RefreshCookie: "s:refresh.sig",
		User:          storage.User{ID: "user-1", Email: "ada@example.com"},
	}))
	require.NoError(t, store.Close())

	reopened := openStore(t, path)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "s:refresh.sig", loaded.RefreshCookie)
	assert.Equal(t, "user-1", loaded.User.ID)

	require.NoError(t, reopened.Clear(ctx))
	require.NoError(t, reopened.Clear(ctx))

	_, err = reopened.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
