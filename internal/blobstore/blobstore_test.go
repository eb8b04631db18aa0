// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package blobstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, store.Put(id, "line one\nline two\n"))

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got)
}

func TestStore_GetMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, store.Put(id, "text"))
	require.NoError(t, store.Delete(id))

	_, err = store.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an already-absent blob is not an error.
	assert.NoError(t, store.Delete(id))
}
