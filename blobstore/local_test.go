package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, s BlobStore, name, data string) {
	t.Helper()
	w, err := s.Create(context.Background(), name)
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func read(t *testing.T, s BlobStore, name string) string {
	t.Helper()
	r, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func testStore(t *testing.T, s BlobStore) {
	ctx := context.Background()

	write(t, s, "backups/a.tar.zst", "alpha")
	write(t, s, "backups/b.tar.zst", "beta")
	write(t, s, "other", "x")

	assert.Equal(t, "alpha", read(t, s, "backups/a.tar.zst"))

	names, err := s.List(ctx, "backups/")
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/a.tar.zst", "backups/b.tar.zst"}, names)

	t.Run("abort leaves nothing", func(t *testing.T) {
		w, err := s.Create(ctx, "backups/c.tar.zst")
		require.NoError(t, err)
		_, err = w.Write([]byte("partial"))
		require.NoError(t, err)
		require.NoError(t, w.Abort())

		_, err = s.Open(ctx, "backups/c.tar.zst")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("overwrite", func(t *testing.T) {
		write(t, s, "other", "y")
		assert.Equal(t, "y", read(t, s, "other"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "other"))
		require.NoError(t, s.Delete(ctx, "other"))
		_, err := s.Open(ctx, "other")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	testStore(t, s)

	_, err := os.Stat(filepath.Join(dir, "backups", "a.tar.zst"))
	require.NoError(t, err)
}

func TestLocalStoreListMissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}
