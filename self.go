package neighborhood

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/internal/similarity"
	"github.com/hupe1980/neighborhood/metric"
)

// Self ranks the rows of one corpus against each other under a normalized
// metric. The corpus must carry a norm column. Self is read-only and safe for
// concurrent use.
type Self struct {
	path   string
	opts   options
	logger *Logger
	engine *similarity.Engine

	current atomic.Pointer[view]
	closed  atomic.Bool
}

// OpenSelf opens the corpus at path.
func OpenSelf(ctx context.Context, path string, optFns ...Option) (*Self, error) {
	opts := applyOptions(optFns)

	sd, err := openSide(ctx, path, opts.duplicatePolicy)
	opts.logger.LogOpen(ctx, "self", path, sd.len(), sd.dim(), err)
	if err != nil {
		return nil, err
	}
	if !sd.snap.HasNorms() {
		sd.snap.Release()
		return nil, ErrMissingNorms
	}

	s := &Self{
		path:   path,
		opts:   opts,
		logger: opts.logger.WithCorpus("self", sd.snap.Meta().CorpusID),
		engine: similarity.New(opts.parallelism),
	}
	s.current.Store(newView(sd, sd, nil, sd.snap))
	return s, nil
}

// Neighbors returns up to n rows ranked by m against the row of id, highest
// first. The query row itself is included. A nil m means metric.Cosine.
// An unknown id yields an empty result.
func (s *Self) Neighbors(ctx context.Context, id string, n int, m metric.Metric) (result []Neighbor, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordNeighbors(n, len(result), time.Since(start), err)
		s.logger.LogNeighbors(ctx, id, n, len(result), err)
	}()

	if err := checkN(n); err != nil {
		return nil, err
	}
	if m != nil {
		if err := metric.Validate(m); err != nil {
			return nil, err
		}
	}

	v, err := pin(&s.current, &s.closed)
	if err != nil {
		return nil, err
	}
	defer v.release()

	q, ok := v.source.reg.IndexOf(id)
	if !ok || n == 0 {
		return nil, nil
	}

	snap := v.source.snap
	scores, err := s.engine.Score(ctx, snap.Vector(q), snap.Norm(q), v.source.matrix(), m)
	if err != nil {
		return nil, err
	}
	defer s.engine.Release(scores)

	return resolve(scores, n, v.source.reg), nil
}

// Location returns a copy of the vector of id, or nil if id is unknown.
func (s *Self) Location(ctx context.Context, id string) ([]float32, error) {
	start := time.Now()

	v, err := pin(&s.current, &s.closed)
	if err != nil {
		return nil, err
	}
	defer v.release()

	var vec []float32
	if i, ok := v.source.reg.IndexOf(id); ok {
		vec = slices.Clone(v.source.snap.Vector(i))
	}

	s.opts.metricsCollector.RecordLocation(vec != nil, time.Since(start))
	s.logger.LogLocation(ctx, id, vec != nil)
	return vec, nil
}

// Len returns the number of rows.
func (s *Self) Len() int {
	v, err := pin(&s.current, &s.closed)
	if err != nil {
		return 0
	}
	defer v.release()
	return v.source.snap.Len()
}

// Meta returns the corpus manifest.
func (s *Self) Meta() (corpus.Meta, error) {
	v, err := pin(&s.current, &s.closed)
	if err != nil {
		return corpus.Meta{}, err
	}
	defer v.release()
	return v.source.snap.Meta(), nil
}

// Close releases the corpus. Calls in flight finish first.
func (s *Self) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if v := s.current.Swap(nil); v != nil {
		v.release()
	}
	return nil
}
