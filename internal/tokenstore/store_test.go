package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	gdb, err := db.Open(context.Background(), "", filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	return &GormStore{DB: gdb}
}

func TestGormStore_SaveLoadOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Save(ctx, "first"))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	require.NoError(t, s.Save(ctx, "second"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestGormStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "tok"))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Clear(ctx))
}
