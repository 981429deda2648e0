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

// Restore extracts the archive name from store into dir and verifies the
// result opens as a corpus. dir must be missing or empty. Files extracted by
// a failed restore are removed.
func Restore(ctx context.Context, store blobstore.BlobStore, name, dir string) (info *Info, err error) {
	start := time.Now()

	if err := prepareDir(dir); err != nil {
		return nil, err
	}

	var extracted []string
	defer func() {
		if err != nil {
			for _, path := range extracted {
				_ = os.Remove(path)
			}
		}
	}()

	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", name, err)
	}
	defer rc.Close()

	cr := &countingReader{r: rc}
	zr, err := zstd.NewReader(cr)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	info = &Info{Name: name}
	tr := tar.NewReader(zr)
	seen := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}
		if err := validateEntry(hdr, seen); err != nil {
			return nil, err
		}
		dest := filepath.Join(dir, hdr.Name)
		extracted = append(extracted, dest)
		if err := extractFile(tr, dest); err != nil {
			return nil, fmt.Errorf("restore %s: %w", hdr.Name, err)
		}
		info.Files++
	}

	if !seen[corpus.MetaFile] {
		return nil, ErrMissingMeta
	}
	if err := syncDir(dir); err != nil {
		return nil, err
	}

	snap, err := corpus.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("verify restored corpus: %w", err)
	}
	info.Meta = snap.Meta()
	snap.Release()

	info.Bytes = cr.n
	info.Duration = time.Since(start)
	return info, nil
}

// Inspect reads the manifest of the archive name without extracting it.
func Inspect(ctx context.Context, store blobstore.BlobStore, name string) (*corpus.Meta, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", name, err)
	}
	defer rc.Close()

	zr, err := zstd.NewReader(rc)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, ErrMissingMeta
		}
		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}
		if hdr.Name != corpus.MetaFile {
			continue
		}

		var m corpus.Meta
		if err := json.NewDecoder(tr).Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", corpus.ErrCorrupted, corpus.MetaFile, err)
		}
		return &m, nil
	}
}

func prepareDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return os.MkdirAll(dir, 0o755)
	case err != nil:
		return err
	case len(entries) > 0:
		return fmt.Errorf("%w: %s", ErrNotEmpty, dir)
	}
	return nil
}

func validateEntry(hdr *tar.Header, seen map[string]bool) error {
	if hdr.Typeflag != tar.TypeReg {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidEntry, hdr.Name)
	}
	if !corpusFile(hdr.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, hdr.Name)
	}
	if seen[hdr.Name] {
		return fmt.Errorf("%w: duplicate %s", ErrInvalidEntry, hdr.Name)
	}
	seen[hdr.Name] = true
	return nil
}

func corpusFile(name string) bool {
	if name == corpus.MetaFile {
		return true
	}
	var all corpus.Meta
	all.HasNorm = true
	for _, col := range all.Columns() {
		if col.Name == name {
			return true
		}
	}
	return false
}

func extractFile(r io.Reader, dest string) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // G304: names are validated against the corpus layout
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec // G304: corpus paths are caller supplied
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
