// Package similarity scores one query vector against every row of a corpus.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/neighborhood/distance"
	"github.com/hupe1980/neighborhood/internal/pool"
	"github.com/hupe1980/neighborhood/metric"
)

// Matrix is a row-major corpus view: Rows holds len(Rows)/Dim vectors.
type Matrix struct {
	Rows  []float32
	Norms []float32
	Dim   int
}

// Len returns the number of rows.
func (m Matrix) Len() int {
	if m.Dim == 0 {
		return 0
	}
	return len(m.Rows) / m.Dim
}

// Engine computes dense score vectors.
type Engine struct {
	workers int
	scratch *pool.Float32s
}

// New returns an Engine that splits large scans across up to workers goroutines.
func New(workers int) *Engine {
	return &Engine{workers: max(workers, 1), scratch: pool.NewFloat32s(pool.DefaultMaxCap)}
}

// Release hands a score vector returned by Dot or Score back for reuse.
// scores must not be read afterwards.
func (e *Engine) Release(scores []float32) {
	e.scratch.Put(scores)
}

// Dot returns dot(query, row_j) for every row j of candidates.
func (e *Engine) Dot(ctx context.Context, query []float32, candidates Matrix) ([]float32, error) {
	out := e.scratch.Get(candidates.Len())
	if err := distance.DotAllParallel(ctx, candidates.Rows, candidates.Dim, query, out, e.workers); err != nil {
		e.scratch.Put(out)
		return nil, err
	}
	return out, nil
}

// Score returns the normalized similarity of query (with norm qn) to every
// row of candidates under m. candidates.Norms must be populated.
// A nil metric scores as Cosine.
func (e *Engine) Score(ctx context.Context, query []float32, qn float32, candidates Matrix, m metric.Metric) ([]float32, error) {
	if m == nil {
		m = metric.Cosine{}
	}
	if err := metric.Validate(m); err != nil {
		return nil, err
	}

	scores, err := e.Dot(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	norms := candidates.Norms[:len(scores)]
	den := e.scratch.Get(len(scores))
	defer e.scratch.Put(den)

	switch m := m.(type) {
	case metric.Cosine:
		cosine(scores, den, qn, norms)
	case metric.Jaccard:
		jaccard(scores, den, qn, norms)
	case metric.Generalized:
		if m.P == 2 {
			cosine(scores, den, qn, norms)
		} else {
			generalized(scores, den, qn, norms, 2/m.P)
		}
	default:
		e.scratch.Put(scores)
		return nil, fmt.Errorf("%w: %T", metric.ErrUnknownMetric, m)
	}

	return scores, nil
}

func cosine(d, den []float32, qn float32, norms []float32) {
	for j, n := range norms {
		den[j] = qn * n
	}
	distance.Divide(d, den, d)
	distance.ReplaceNaN(d, 0)
}

// jaccard leaves NaN and ±Inf from degenerate rows in place.
func jaccard(d, den []float32, qn float32, norms []float32) {
	for j, n := range norms {
		den[j] = n*n + qn*qn - d[j]
	}
	distance.Divide(d, den, d)
}

func generalized(d, den []float32, qn float32, norms []float32, exp float64) {
	for j, n := range norms {
		den[j] = float32(math.Pow(float64(qn*n), exp))
	}
	distance.Divide(d, den, d)
	distance.ReplaceNaN(d, 0)
}
