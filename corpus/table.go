package corpus

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/neighborhood/distance"
	"github.com/hupe1980/neighborhood/internal/fs"
)

// Row is one corpus record.
type Row struct {
	ID     string
	Vector []float32
	// Norm is the stored norm. When nil and the corpus keeps norms, it is
	// computed from Vector.
	Norm *float32
}

// Table is the writer handle of a corpus. Appends are serialized and durable.
// Only one Table should be open per corpus.
type Table struct {
	dir     string
	dim     int
	hasNorm bool

	mu     sync.Mutex
	meta   Meta
	idf    fs.File
	vecf   fs.File
	normf  fs.File
	closed bool
}

// Create initializes an empty corpus of dimension dim at dir.
func Create(dir string, dim int, optFns ...func(o *Options)) (*Table, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	opts := resolveOptions(optFns)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, metaFile)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, dir)
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return nil, err
	}

	files := []string{idFile, vectorFile}
	if opts.WithNorms {
		files = append(files, normFile)
	}
	for _, name := range files {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o640) //nolint:gosec // G304: corpus paths are caller supplied
		if err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	meta := &Meta{
		Format:      FormatVersion,
		CorpusID:    uuid.NewString(),
		Dim:         dim,
		HasNorm:     opts.WithNorms,
		Compression: opts.Compression,
		BlockSize:   opts.BlockSize,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := writeMeta(dir, meta); err != nil {
		return nil, err
	}

	return OpenTable(dir)
}

// OpenTable opens the corpus at dir for appending. Column bytes beyond the
// committed lengths (left by an interrupted append) are truncated.
func OpenTable(dir string) (*Table, error) {
	return OpenTableFS(fs.Default, dir)
}

// OpenTableFS is OpenTable with column files opened through fsys.
func OpenTableFS(fsys fs.FileSystem, dir string) (*Table, error) {
	meta, err := ReadMeta(dir)
	if err != nil {
		return nil, err
	}

	t := &Table{dir: dir, dim: meta.Dim, hasNorm: meta.HasNorm, meta: *meta}

	if t.idf, err = openColumn(fsys, filepath.Join(dir, idFile), meta.IDBytes); err != nil {
		return nil, errors.Join(err, t.closeFiles())
	}
	if t.vecf, err = openColumn(fsys, filepath.Join(dir, vectorFile), meta.vectorBytes()); err != nil {
		return nil, errors.Join(err, t.closeFiles())
	}
	if meta.HasNorm {
		if t.normf, err = openColumn(fsys, filepath.Join(dir, normFile), meta.normBytes()); err != nil {
			return nil, errors.Join(err, t.closeFiles())
		}
	}

	return t, nil
}

func openColumn(fsys fs.FileSystem, path string, committed int64) (fs.File, error) {
	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.Size() < committed {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has %d bytes, manifest commits %d", ErrCorrupted, filepath.Base(path), fi.Size(), committed)
	}
	if fi.Size() > committed {
		if err := f.Truncate(committed); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Dir returns the corpus directory.
func (t *Table) Dir() string { return t.dir }

// Len returns the number of committed rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta.Rows
}

// Dim returns the vector dimension.
func (t *Table) Dim() int { return t.dim }

// HasNorms reports whether the corpus keeps a norm column.
func (t *Table) HasNorms() bool { return t.hasNorm }

// Meta returns the current manifest.
func (t *Table) Meta() Meta {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}

// Append writes rows at the end of the corpus as one identifier frame.
// It returns after the columns and the manifest are synced to disk; on error
// the committed state is unchanged.
func (t *Table) Append(ctx context.Context, rows ...Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	dim := t.meta.Dim
	ids := make([]string, len(rows))
	vecs := make([]byte, 0, len(rows)*dim*4)
	var norms []byte
	if t.meta.HasNorm {
		norms = make([]byte, 0, len(rows)*4)
	}

	for i, r := range rows {
		if len(r.Vector) != dim {
			return &ErrWrongDimension{Expected: dim, Actual: len(r.Vector)}
		}
		ids[i] = r.ID
		vecs = appendFloats(vecs, r.Vector...)
		if t.meta.HasNorm {
			n := distance.Norm(r.Vector)
			if r.Norm != nil {
				n = *r.Norm
			}
			norms = appendFloats(norms, n)
		}
	}

	frame, err := encodeFrame(ids, t.meta.Compression)
	if err != nil {
		return err
	}

	next := t.meta
	next.Rows += len(rows)
	next.IDBytes += int64(len(frame))
	next.UpdatedAt = time.Now().UTC()

	if err := t.writeColumns(frame, vecs, norms); err != nil {
		t.rollback()
		return err
	}
	if err := writeMeta(t.dir, &next); err != nil {
		t.rollback()
		return err
	}

	t.meta = next
	return nil
}

func (t *Table) writeColumns(frame, vecs, norms []byte) error {
	if _, err := t.idf.WriteAt(frame, t.meta.IDBytes); err != nil {
		return err
	}
	if _, err := t.vecf.WriteAt(vecs, t.meta.vectorBytes()); err != nil {
		return err
	}
	if t.normf != nil {
		if _, err := t.normf.WriteAt(norms, t.meta.normBytes()); err != nil {
			return err
		}
	}

	for _, f := range t.files() {
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

// rollback drops uncommitted bytes. Failures are tolerated: readers and the
// next OpenTable ignore anything past the manifest.
func (t *Table) rollback() {
	_ = t.idf.Truncate(t.meta.IDBytes)
	_ = t.vecf.Truncate(t.meta.vectorBytes())
	if t.normf != nil {
		_ = t.normf.Truncate(t.meta.normBytes())
	}
}

func (t *Table) files() []fs.File {
	out := make([]fs.File, 0, 3)
	for _, f := range []fs.File{t.idf, t.vecf, t.normf} {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (t *Table) closeFiles() error {
	var errs []error
	for _, f := range t.files() {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Close closes the column files.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.closeFiles()
}
