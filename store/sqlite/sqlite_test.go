package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remuskit/netbuf/store"
	"github.com/remuskit/netbuf/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReadAbsentKey(t *testing.T) {
	s := newStore(t)

	_, err := s.Read(context.Background(), "/vif/1/0/ifb")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb0"))

	v, err := s.Read(ctx, "/vif/1/0/ifb")
	require.NoError(t, err)
	assert.Equal(t, "ifb0", v)

	// Overwrite.
	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb1"))
	v, err = s.Read(ctx, "/vif/1/0/ifb")
	require.NoError(t, err)
	assert.Equal(t, "ifb1", v)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb0"))
	require.NoError(t, s.Delete(ctx, "/vif/1/0/ifb"))
	require.NoError(t, s.Delete(ctx, "/vif/1/0/ifb"))

	_, err := s.Read(ctx, "/vif/1/0/ifb")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExists(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "/vif/1/0/ifb")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb0"))

	ok, err = s.Exists(ctx, "/vif/1/0/ifb")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListByPrefix(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb0"))
	require.NoError(t, s.Write(ctx, "/vif/1/0/hotplug-status", "connected"))
	require.NoError(t, s.Write(ctx, "/vif/2/0/ifb", "ifb1"))

	keys, err := s.List(ctx, "/vif/1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/vif/1/0/hotplug-status", "/vif/1/0/ifb"}, keys)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListEscapesLikeMetacharacters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "/vif/a_b/ifb", "ifb0"))
	require.NoError(t, s.Write(ctx, "/vif/axb/ifb", "ifb1"))

	keys, err := s.List(ctx, "/vif/a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"/vif/a_b/ifb"}, keys, "underscore must match literally")
}

func TestFileBackedStorePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "state.db")
	ctx := context.Background()

	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "/vif/1/0/ifb", "ifb0"))
	require.NoError(t, s.Close())

	// Reopen as a second invocation would.
	s2, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.Read(ctx, "/vif/1/0/ifb")
	require.NoError(t, err)
	assert.Equal(t, "ifb0", v)
}
