package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/repository"
	"github.com/prn-tf/taskflow/internal/repository/memory"
)

type failingBackend struct {
	*memory.Backend
}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestCollections_SaveLoad(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewBackend()
	cols := repository.NewCollections(backend, "ns:", zerolog.Nop())

	type item struct {
		ID string `json:"id"`
	}

	require.NoError(t, cols.Save(ctx, repository.KeyProjects, []item{{ID: "p1"}}))
	assert.Equal(t, []string{"ns:projects"}, backend.Keys())

	got := repository.Load(ctx, cols, repository.KeyProjects, []item(nil))
	assert.Equal(t, []item{{ID: "p1"}}, got)

	require.NoError(t, cols.Remove(ctx, repository.KeyProjects))
	require.NoError(t, cols.Remove(ctx, repository.KeyProjects))

	_, err := backend.Get(ctx, "ns:projects")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoad_Defaults(t *testing.T) {
	ctx := context.Background()
	def := []string{"default"}

	t.Run("absent", func(t *testing.T) {
		cols := repository.NewCollections(memory.NewBackend(), "", zerolog.Nop())
		assert.Equal(t, def, repository.Load(ctx, cols, repository.KeyUsers, def))
	})

	t.Run("corrupt", func(t *testing.T) {
		backend := memory.NewBackend()
		require.NoError(t, backend.Set(ctx, repository.KeyUsers, []byte("{not json")))
		cols := repository.NewCollections(backend, "", zerolog.Nop())
		assert.Equal(t, def, repository.Load(ctx, cols, repository.KeyUsers, def))
	})

	t.Run("backend failure", func(t *testing.T) {
		cols := repository.NewCollections(failingBackend{memory.NewBackend()}, "", zerolog.Nop())
		assert.Equal(t, def, repository.Load(ctx, cols, repository.KeyUsers, def))
		assert.ErrorContains(t, cols.Save(ctx, repository.KeyUsers, def), "failed to write users")
	})
}

func TestEncode_SortedMapKeys(t *testing.T) {
	a, err := repository.Encode(map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, string(a))
}
