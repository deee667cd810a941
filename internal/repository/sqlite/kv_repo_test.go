package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/repository"
)

func newTestBackend(t *testing.T) repository.Backend {
	t.Helper()

	db, err := NewDB(context.Background(), DefaultConfig(filepath.Join(t.TempDir(), "data", "taskflow.db")), zerolog.Nop())
	require.NoError(t, err)

	b := NewBackend(db)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_, err := b.Get(ctx, "users")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, b.Set(ctx, "users", []byte(`[{"id":"u1"}]`)))
	got, err := b.Get(ctx, "users")
	require.NoError(t, err)
	require.Equal(t, `[{"id":"u1"}]`, string(got))

	require.NoError(t, b.Set(ctx, "users", []byte(`[]`)))
	got, err = b.Get(ctx, "users")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	require.NoError(t, b.Delete(ctx, "users"))
	_, err = b.Get(ctx, "users")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, b.Delete(ctx, "users"))
	require.NoError(t, b.Ping(ctx))
}

func TestNewDB_MigrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskflow.db")

	db, err := NewDB(ctx, DefaultConfig(path), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, NewBackend(db).Set(ctx, "tasks", []byte(`[]`)))
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, DefaultConfig(path), zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	got, err := NewBackend(db).Get(ctx, "tasks")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}
