package archive

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/neighborhood/blobstore"
	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/testutil"
)

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)

	for _, c := range []corpus.Compression{corpus.CompressionNone, corpus.CompressionLZ4, corpus.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			rows := rng.Rows("doc", 25, 3)
			src := testutil.BuildCorpus(t, t.TempDir(), rows, func(o *corpus.Options) {
				o.Compression = c
				o.BlockSize = 8
			})

			store := blobstore.NewMemoryStore()
			info, err := Backup(ctx, src, store, "doc.tar.zst")
			require.NoError(t, err)
			assert.Equal(t, 4, info.Files)
			assert.Equal(t, 25, info.Meta.Rows)
			assert.Positive(t, info.Bytes)

			meta, err := Inspect(ctx, store, "doc.tar.zst")
			require.NoError(t, err)
			assert.Equal(t, info.Meta.CorpusID, meta.CorpusID)

			dst := filepath.Join(t.TempDir(), "restored")
			restored, err := Restore(ctx, store, "doc.tar.zst", dst)
			require.NoError(t, err)
			assert.Equal(t, 4, restored.Files)
			assert.Equal(t, info.Meta.CorpusID, restored.Meta.CorpusID)

			snap, err := corpus.Open(dst)
			require.NoError(t, err)
			defer snap.Release()

			ids, err := snap.IDs()
			require.NoError(t, err)
			require.Len(t, ids, len(rows))
			for i, row := range rows {
				assert.Equal(t, row.ID, ids[i])
				assert.Equal(t, row.Vector, snap.Vector(i))
			}
		})
	}
}

func TestBackupSkipsUncommittedTail(t *testing.T) {
	ctx := context.Background()
	src := testutil.BuildCorpus(t, t.TempDir(), testutil.Literal(
		"a", []float32{1, 2},
		"b", []float32{3, 4},
	))

	// Bytes past the committed length belong to an unfinished append.
	f, err := os.OpenFile(filepath.Join(src, "vector.col"), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	store := blobstore.NewMemoryStore()
	_, err = Backup(ctx, src, store, "b")
	require.NoError(t, err)

	dst := t.TempDir()
	_, err = Restore(ctx, store, "b", dst)
	require.NoError(t, err)

	fi, err := os.Stat(filepath.Join(dst, "vector.col"))
	require.NoError(t, err)
	assert.Equal(t, int64(16), fi.Size())
}

func TestBackupMissingCorpus(t *testing.T) {
	store := blobstore.NewMemoryStore()
	_, err := Backup(context.Background(), t.TempDir(), store, "x")
	require.ErrorIs(t, err, corpus.ErrNotFound)

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	t.Run("MissingBlob", func(t *testing.T) {
		_, err := Restore(ctx, store, "missing", t.TempDir())
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("NotEmpty", func(t *testing.T) {
		dst := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dst, "other"), nil, 0o600))
		_, err := Restore(ctx, store, "missing", dst)
		require.ErrorIs(t, err, ErrNotEmpty)
	})

	t.Run("ForeignEntry", func(t *testing.T) {
		writeArchive(t, store, "evil", map[string]string{"../escape": "x"})
		dst := t.TempDir()
		_, err := Restore(ctx, store, "evil", dst)
		require.ErrorIs(t, err, ErrInvalidEntry)

		entries, err := os.ReadDir(dst)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("MissingMeta", func(t *testing.T) {
		writeArchive(t, store, "nometa", map[string]string{"id.col": ""})
		dst := t.TempDir()
		_, err := Restore(ctx, store, "nometa", dst)
		require.ErrorIs(t, err, ErrMissingMeta)

		entries, err := os.ReadDir(dst)
		require.NoError(t, err)
		assert.Empty(t, entries)

		_, err = Inspect(ctx, store, "nometa")
		require.ErrorIs(t, err, ErrMissingMeta)
	})
}

func writeArchive(t *testing.T, store blobstore.BlobStore, name string, files map[string]string) {
	t.Helper()

	blob, err := store.Create(context.Background(), name)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(blob)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)
	for fname, data := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: fname, Mode: 0o644, Size: int64(len(data))}))
		_, err := tw.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, blob.Close())
}
