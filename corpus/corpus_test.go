package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/neighborhood/internal/fs"
)

func ptr(f float32) *float32 { return &f }

func TestTableAppendAndSnapshot(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			dir := filepath.Join(t.TempDir(), "corpus")

			tbl, err := Create(dir, 2, func(o *Options) { o.Compression = c })
			require.NoError(t, err)
			defer tbl.Close()

			require.NoError(t, tbl.Append(ctx,
				Row{ID: "a", Vector: []float32{1, 0}},
				Row{ID: "b", Vector: []float32{0, 1}, Norm: ptr(7)},
			))
			require.NoError(t, tbl.Append(ctx, Row{ID: "c", Vector: []float32{3, 4}}))
			assert.Equal(t, 3, tbl.Len())

			snap, err := Open(dir)
			require.NoError(t, err)
			defer snap.Release()

			assert.Equal(t, 3, snap.Len())
			assert.Equal(t, 2, snap.Dim())
			assert.True(t, snap.HasNorms())
			assert.Equal(t, []float32{0, 1}, snap.Vector(1))
			assert.Equal(t, []float32{1, 0, 0, 1, 3, 4}, snap.Rows())
			assert.Equal(t, []float32{1, 7, 5}, snap.Norms())
			assert.Equal(t, float32(5), snap.Norm(2))

			ids, err := snap.IDs()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, ids)
		})
	}
}

func TestBuilderWritesBlocks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := NewBuilder(dir, 3, func(o *Options) { o.BlockSize = 4; o.WithNorms = false })
	require.NoError(t, err)

	for i := range 10 {
		require.NoError(t, b.Add(ctx, Row{ID: fmt.Sprintf("id-%d", i), Vector: []float32{float32(i), 0, 1}}))
	}
	assert.Equal(t, 10, b.Len())
	require.NoError(t, b.Close(ctx))

	snap, err := Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	assert.False(t, snap.HasNorms())
	assert.Nil(t, snap.Norms())

	var sizes []int
	require.NoError(t, snap.ScanIDs(func(block []string) error {
		sizes = append(sizes, len(block))
		return nil
	}))
	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, []float32{9, 0, 1}, snap.Vector(9))
}

func TestSnapshotIsolatedFromAppends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tbl, err := Create(dir, 1)
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, tbl.Append(ctx, Row{ID: "a", Vector: []float32{1}}))

	before, err := Open(dir)
	require.NoError(t, err)
	defer before.Release()

	require.NoError(t, tbl.Append(ctx, Row{ID: "b", Vector: []float32{2}}))

	after, err := Open(dir)
	require.NoError(t, err)
	defer after.Release()

	assert.Equal(t, 1, before.Len())
	assert.Equal(t, 2, after.Len())

	ids, err := before.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	tbl, err := Create(dir, 4)
	require.NoError(t, err)
	require.NoError(t, tbl.Close())

	snap, err := Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	assert.Equal(t, 0, snap.Len())
	ids, err := snap.IDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestOpenTableTruncatesUncommittedTail(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tbl, err := Create(dir, 2)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(ctx, Row{ID: "a", Vector: []float32{1, 2}}))
	require.NoError(t, tbl.Close())

	// Simulate a crash after the data write but before the manifest commit.
	for _, name := range []string{idFile, vectorFile, normFile} {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_WRONLY, 0)
		require.NoError(t, err)
		_, err = f.Write([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0})
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	snap, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	snap.Release()

	tbl, err = OpenTable(dir)
	require.NoError(t, err)
	defer tbl.Close()

	fi, err := os.Stat(filepath.Join(dir, vectorFile))
	require.NoError(t, err)
	assert.Equal(t, int64(8), fi.Size())

	require.NoError(t, tbl.Append(ctx, Row{ID: "b", Vector: []float32{3, 4}}))

	snap, err = Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	ids, err := snap.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, []float32{3, 4}, snap.Vector(1))
}

func TestCorruptedFrame(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tbl, err := Create(dir, 1, func(o *Options) { o.Compression = CompressionNone })
	require.NoError(t, err)
	require.NoError(t, tbl.Append(ctx, Row{ID: "abc", Vector: []float32{1}}))
	require.NoError(t, tbl.Close())

	path := filepath.Join(dir, idFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o600))

	snap, err := Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	_, err = snap.IDs()
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestTableErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Create(dir, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	tbl, err := Create(dir, 2)
	require.NoError(t, err)

	var dimErr *ErrWrongDimension
	err = tbl.Append(ctx, Row{ID: "x", Vector: []float32{1}})
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 0, tbl.Len())

	_, err = Create(dir, 2)
	assert.ErrorIs(t, err, ErrExists)

	require.NoError(t, tbl.Close())
	assert.ErrorIs(t, tbl.Append(ctx, Row{ID: "x", Vector: []float32{1, 2}}), ErrClosed)

	_, err = Open(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendFailureKeepsCommittedState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tbl, err := Create(dir, 2)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(ctx, Row{ID: "a", Vector: []float32{1, 2}}))
	require.NoError(t, tbl.Close())

	ffs := fs.NewFaultyFS(nil)
	tbl, err = OpenTableFS(ffs, dir)
	require.NoError(t, err)
	defer tbl.Close()

	for name, fault := range map[string]fs.Fault{
		"vector": {FailAfterBytes: 0},
		"norm":   {FailAfterBytes: -1, FailOnSync: true},
	} {
		ffs.AddRule(name, fault)
		err := tbl.Append(ctx, Row{ID: "b", Vector: []float32{3, 4}})
		require.ErrorIs(t, err, fs.ErrInjected, name)
		assert.Equal(t, 1, tbl.Len())
		ffs.Clear()

		for _, col := range []string{idFile, vectorFile, normFile} {
			fi, err := os.Stat(filepath.Join(dir, col))
			require.NoError(t, err)
			committed := map[string]int64{idFile: tbl.Meta().IDBytes, vectorFile: 8, normFile: 4}[col]
			assert.Equal(t, committed, fi.Size(), "%s after %s fault", col, name)
		}
	}

	require.NoError(t, tbl.Append(ctx, Row{ID: "b", Vector: []float32{3, 4}}))

	snap, err := Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	ids, err := snap.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, []float32{3, 4}, snap.Vector(1))
}

func TestSnapshotRefCount(t *testing.T) {
	dir := t.TempDir()
	tbl, err := Create(dir, 1)
	require.NoError(t, err)
	require.NoError(t, tbl.Append(context.Background(), Row{ID: "a", Vector: []float32{1}}))
	require.NoError(t, tbl.Close())

	snap, err := Open(dir)
	require.NoError(t, err)

	require.True(t, snap.Acquire())
	snap.Release()
	assert.Equal(t, []float32{1}, snap.Vector(0))

	snap.Release()
	assert.False(t, snap.Acquire())
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
