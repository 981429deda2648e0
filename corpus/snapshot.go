package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/hupe1980/neighborhood/internal/mmap"
)

// Snapshot is an immutable, memory-mapped view of the committed rows of a
// corpus at the time it was opened.
//
// A Snapshot starts with one reference owned by the opener. Readers that may
// race with a swap take their own reference with Acquire; the mappings are
// released when the last reference is dropped.
type Snapshot struct {
	dir  string
	meta Meta

	vectors *mmap.Mapping
	norms   *mmap.Mapping
	ids     *mmap.Mapping

	rows     []float32
	normVals []float32

	refs atomic.Int64
}

// Open maps the committed prefix of the corpus at dir.
func Open(dir string) (*Snapshot, error) {
	meta, err := ReadMeta(dir)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{dir: dir, meta: *meta}
	s.refs.Store(1)

	if err := s.mapColumns(); err != nil {
		s.unmap()
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) mapColumns() error {
	var err error

	s.vectors, err = mapColumn(filepath.Join(s.dir, vectorFile), s.meta.vectorBytes(), mmap.AccessSequential)
	if err != nil {
		return err
	}
	s.rows = floatView(s.vectors.Bytes())

	if s.meta.HasNorm {
		s.norms, err = mapColumn(filepath.Join(s.dir, normFile), s.meta.normBytes(), mmap.AccessSequential)
		if err != nil {
			return err
		}
		s.normVals = floatView(s.norms.Bytes())
	}

	s.ids, err = mapColumn(filepath.Join(s.dir, idFile), s.meta.IDBytes, mmap.AccessSequential)
	return err
}

func mapColumn(path string, size int64, pattern mmap.AccessPattern) (*mmap.Mapping, error) {
	m, err := mmap.Open(path, size)
	if err != nil {
		if errors.Is(err, mmap.ErrShortFile) {
			return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
		return nil, err
	}
	_ = m.Advise(pattern)
	return m, nil
}

func (s *Snapshot) unmap() {
	for _, m := range []*mmap.Mapping{s.vectors, s.norms, s.ids} {
		if m != nil {
			_ = m.Close()
		}
	}
	s.rows, s.normVals = nil, nil
}

// Dir returns the corpus directory.
func (s *Snapshot) Dir() string { return s.dir }

// Meta returns the manifest the snapshot was opened at.
func (s *Snapshot) Meta() Meta { return s.meta }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return s.meta.Rows }

// Dim returns the vector dimension.
func (s *Snapshot) Dim() int { return s.meta.Dim }

// HasNorms reports whether the corpus carries a norm column.
func (s *Snapshot) HasNorms() bool { return s.meta.HasNorm }

// Vector returns row i. The slice aliases the mapping and must not be
// modified or retained after Release.
func (s *Snapshot) Vector(i int) []float32 {
	d := s.meta.Dim
	return s.rows[i*d : (i+1)*d : (i+1)*d]
}

// Norm returns the stored norm of row i. It panics if the corpus has no norms.
func (s *Snapshot) Norm(i int) float32 {
	return s.normVals[i]
}

// Rows returns all vectors as one row-major matrix.
func (s *Snapshot) Rows() []float32 { return s.rows }

// Norms returns the norm column, or nil when the corpus has none.
func (s *Snapshot) Norms() []float32 { return s.normVals }

// ScanIDs calls fn with each identifier frame in storage order.
// The block slice is reused between calls; the strings are not.
func (s *Snapshot) ScanIDs(fn func(block []string) error) error {
	b := s.ids.Bytes()
	if b == nil && s.meta.IDBytes > 0 {
		return ErrClosed
	}

	var (
		block []string
		seen  int
		err   error
		n     int
	)
	for len(b) > 0 {
		block, n, err = decodeFrame(b, s.meta.Compression, block)
		if err != nil {
			return err
		}
		seen += len(block)
		if err := fn(block); err != nil {
			return err
		}
		b = b[n:]
	}

	if seen != s.meta.Rows {
		return fmt.Errorf("%w: id column holds %d ids, manifest says %d", ErrCorrupted, seen, s.meta.Rows)
	}
	return nil
}

// IDs returns every identifier in storage order.
func (s *Snapshot) IDs() ([]string, error) {
	ids := make([]string, 0, s.meta.Rows)
	err := s.ScanIDs(func(block []string) error {
		ids = append(ids, block...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Acquire takes a reference. It returns false if the snapshot is already released.
func (s *Snapshot) Acquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference and unmaps the columns when none remain.
func (s *Snapshot) Release() {
	n := s.refs.Add(-1)
	if n == 0 {
		s.unmap()
	} else if n < 0 {
		panic("corpus: snapshot released too many times")
	}
}
