package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/neighborhood/blobstore"
	"github.com/hupe1980/neighborhood/corpus"
)

var (
	// ErrNotEmpty is returned when restoring into a directory that has content.
	ErrNotEmpty = errors.New("archive: restore directory is not empty")
	// ErrInvalidEntry is returned for archive entries that are not corpus files.
	ErrInvalidEntry = errors.New("archive: invalid entry")
	// ErrMissingMeta is returned when an archive carries no manifest.
	ErrMissingMeta = errors.New("archive: meta.json not found")
)

// Info describes a written or restored archive.
type Info struct {
	Name     string
	Meta     corpus.Meta
	Files    int
	Bytes    int64 // archive size in the blob store
	Duration time.Duration
}

// Backup writes the committed state of the corpus at dir to store under name.
// A failed backup leaves no blob behind.
func Backup(ctx context.Context, dir string, store blobstore.BlobStore, name string) (info *Info, err error) {
	start := time.Now()

	meta, err := corpus.ReadMeta(dir)
	if err != nil {
		return nil, err
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create blob %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = blob.Abort()
		}
	}()

	cw := &countingWriter{w: blob}
	zw, err := zstd.NewWriter(cw)
	if err != nil {
		return nil, err
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	info = &Info{Name: name, Meta: *meta}

	for _, col := range meta.Columns() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeColumn(tw, dir, col, meta.UpdatedAt); err != nil {
			return nil, fmt.Errorf("write %s: %w", col.Name, err)
		}
		info.Files++
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeBytes(tw, corpus.MetaFile, data, meta.UpdatedAt); err != nil {
		return nil, fmt.Errorf("write %s: %w", corpus.MetaFile, err)
	}
	info.Files++

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if err := blob.Close(); err != nil {
		return nil, fmt.Errorf("commit blob %s: %w", name, err)
	}

	info.Bytes = cw.n
	info.Duration = time.Since(start)
	return info, nil
}

// writeColumn copies the committed prefix of a column. Bytes appended after
// the manifest was read are not part of the backup.
func writeColumn(tw *tar.Writer, dir string, col corpus.Column, modTime time.Time) error {
	f, err := os.Open(filepath.Join(dir, col.Name)) //nolint:gosec // G304: corpus paths are caller supplied
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := &tar.Header{
		Name:    col.Name,
		Mode:    0o644,
		Size:    col.Size,
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.CopyN(tw, f, col.Size); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s shorter than committed length %d", corpus.ErrCorrupted, col.Name, col.Size)
		}
		return err
	}
	return nil
}

func writeBytes(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
