package dummy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dogsync/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := New()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	entries, err := s.List(ctx, "dogs")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Put(ctx, "dogs/akita/image-1", []byte("akita"), false))
	require.NoError(t, s.Put(ctx, "other/file", []byte("x"), false))

	entries, err = s.List(ctx, "dogs")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dogs/akita/image-1", entries[0].Path)
	assert.EqualValues(t, 5, entries[0].Size)
	assert.Len(t, entries[0].Signature, 32)
	assert.True(t, entries[0].Exists)

	err = s.Put(ctx, "dogs/akita/image-1", []byte("again"), false)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
	require.NoError(t, s.Put(ctx, "dogs/akita/image-1", []byte("again"), true))

	require.NoError(t, s.Delete(ctx, "dogs/akita/image-1", true))
	assert.False(t, s.Has("dogs/akita/image-1"))
	assert.Equal(t, []string{"dogs/akita/image-1"}, s.Recycled())

	// Deleting a missing path succeeds.
	require.NoError(t, s.Delete(ctx, "dogs/missing", false))

	assert.Equal(t, Calls{List: 2, Put: 4, Delete: 2}, s.Calls())
	assert.EqualValues(t, 8, s.Calls().Total())
}

func TestPermanentDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.Seed("dogs/a/image-1"))
	require.NoError(t, s.Delete(ctx, "dogs/a/image-1", false))
	assert.Empty(t, s.Recycled())
	assert.False(t, s.Has("dogs/a/image-1"))
}

func TestSeedDoesNotCount(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.Seed("dogs/a/image-1", "dogs/b/image-1"))
	assert.Zero(t, s.Calls().Total())
	assert.True(t, s.Has("dogs/b/image-1"))
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()
	s, err := New()
	require.NoError(t, err)

	boom := errors.NewAPIError("dummy", 500, "boom")
	s.FailOn("dogs/a/image-1", boom)

	assert.ErrorIs(t, s.Put(ctx, "dogs/a/image-1", []byte("x"), false), boom)
	assert.ErrorIs(t, s.Delete(ctx, "dogs/a/image-1", false), boom)
	require.NoError(t, s.Put(ctx, "dogs/a/image-2", []byte("x"), false))
}

func TestMissingRoot(t *testing.T) {
	s, err := New(WithMissingRoot())
	require.NoError(t, err)

	_, err = s.List(context.Background(), "dogs")
	assert.True(t, errors.IsNotFound(err))
}

func TestDelayHonorsContext(t *testing.T) {
	s, err := New(WithDelay(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Put(ctx, "dogs/a/image-1", []byte("x"), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Has("dogs/a/image-1"))
}

func TestBoltPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "dummy.db")

	s, err := New(WithPath(path))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "dogs/akita/image-1", []byte("akita"), false))
	require.NoError(t, s.Put(ctx, "dogs/boxer/image-1", []byte("boxer"), false))
	require.NoError(t, s.Delete(ctx, "dogs/boxer/image-1", true))
	require.NoError(t, s.Close())

	reopened, err := New(WithPath(path))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.List(ctx, "dogs")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dogs/akita/image-1", entries[0].Path)
	assert.Equal(t, []string{"dogs/boxer/image-1"}, reopened.Recycled())
	assert.Zero(t, reopened.Calls().Put)
}
