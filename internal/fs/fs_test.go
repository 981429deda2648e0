package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.col")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello world"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Truncate(5))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
	require.NoError(t, f.Close())

	info, err = lfs.Stat(fpath)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	vec, err := ffs.OpenFile(filepath.Join(tmp, "vector.col"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer vec.Close()
	ids, err := ffs.OpenFile(filepath.Join(tmp, "id.col"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer ids.Close()

	_, err = vec.WriteAt([]byte("1234"), 0)
	require.NoError(t, err)

	// Rules apply to files opened before the rule was added.
	ffs.AddRule("vector", Fault{FailAfterBytes: 6})
	_, err = vec.WriteAt([]byte("56"), 4)
	require.NoError(t, err)
	_, err = vec.WriteAt([]byte("7"), 6)
	assert.ErrorIs(t, err, ErrInjected)

	// Other files are unaffected.
	_, err = ids.WriteAt([]byte("abcdefgh"), 0)
	require.NoError(t, err)
	require.NoError(t, ids.Sync())

	boom := errors.New("boom")
	ffs.AddRule("id", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnTruncate: true, Err: boom})
	assert.ErrorIs(t, ids.Sync(), boom)
	assert.ErrorIs(t, ids.Truncate(0), boom)

	ffs.Clear()
	require.NoError(t, ids.Sync())
	_, err = vec.WriteAt([]byte("7"), 6)
	require.NoError(t, err)
}
