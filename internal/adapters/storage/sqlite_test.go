package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openTestDB(t).KV()

	_, ok, err := kv.Get(ctx, "ns", "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kv.Set(ctx, "ns", "k", "v1"))
	assert.NoError(t, kv.Set(ctx, "ns", "k", "v2"))

	value, ok, err := kv.Get(ctx, "ns", "k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)

	// namespaces do not bleed into each other
	_, ok, err = kv.Get(ctx, "other", "k")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kv.Remove(ctx, "ns", "k"))
	_, ok, err = kv.Get(ctx, "ns", "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminsAddRemove(t *testing.T) {
	ctx := context.Background()
	admins := openTestDB(t).Admins()

	ok, err := admins.IsAdmin(ctx, "room-1", 123)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, admins.Add(ctx, "room-1", 123))
	assert.NoError(t, admins.Add(ctx, "room-1", 123)) // idempotent

	ok, err = admins.IsAdmin(ctx, "room-1", 123)
	assert.NoError(t, err)
	assert.True(t, ok)

	// other rooms are unaffected
	ok, err = admins.IsAdmin(ctx, "room-2", 123)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, admins.Remove(ctx, "room-1", 123))
	ok, err = admins.IsAdmin(ctx, "room-1", 123)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminsOwnersAreNotRemovable(t *testing.T) {
	ctx := context.Background()
	admins := openTestDB(t).Admins()

	assert.NoError(t, admins.AddOwner(ctx, "room-1", 42))
	assert.NoError(t, admins.Add(ctx, "room-1", 123))

	list, err := admins.GetAll(ctx, "room-1")
	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, list.Owners)
	assert.Equal(t, []int64{123}, list.Admins)

	assert.NoError(t, admins.Remove(ctx, "room-1", 42))

	ok, err := admins.IsAdmin(ctx, "room-1", 42)
	assert.NoError(t, err)
	assert.True(t, ok)
}
