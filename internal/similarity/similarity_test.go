package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/neighborhood/distance"
	"github.com/hupe1980/neighborhood/metric"
)

func matrix(dim int, rows ...[]float32) Matrix {
	m := Matrix{Dim: dim}
	for _, r := range rows {
		m.Rows = append(m.Rows, r...)
		m.Norms = append(m.Norms, distance.Norm(r))
	}
	return m
}

func TestDot(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{1, 0}, []float32{0, 1}, []float32{2, 2})

	got, err := e.Dot(context.Background(), []float32{1, 1}, m)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 4}, got)
}

func TestDotEmptyCandidates(t *testing.T) {
	got, err := New(4).Dot(context.Background(), []float32{1, 1}, Matrix{Dim: 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScoreCosine(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{1, 0}, []float32{0, 1}, []float32{2, 2}, []float32{0, 0})
	q := []float32{1, 1}

	got, err := e.Score(context.Background(), q, distance.Norm(q), m, metric.Cosine{})
	require.NoError(t, err)

	assert.InDelta(t, 1/math.Sqrt2, got[0], 1e-6)
	assert.InDelta(t, 1/math.Sqrt2, got[1], 1e-6)
	assert.InDelta(t, 1, got[2], 1e-6)
	// Zero-norm row: 0/0 becomes 0.
	assert.Equal(t, float32(0), got[3])
}

func TestScoreNilMetricIsCosine(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{3, 4}, []float32{1, 0})
	q := []float32{1, 0}

	a, err := e.Score(context.Background(), q, 1, m, nil)
	require.NoError(t, err)
	b, err := e.Score(context.Background(), q, 1, m, metric.Cosine{})
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestScoreJaccard(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{1, 1}, []float32{2, 0}, []float32{0, 0})
	q := []float32{1, 1}

	got, err := e.Score(context.Background(), q, distance.Norm(q), m, metric.Jaccard{})
	require.NoError(t, err)

	// Identical vectors: 2 / (2 + 2 - 2).
	assert.InDelta(t, 1, got[0], 1e-6)
	// 2 / (4 + 2 - 2).
	assert.InDelta(t, 0.5, got[1], 1e-6)
	// 0 / (0 + 2 - 0).
	assert.Equal(t, float32(0), got[2])
}

func TestScoreJaccardPropagatesNaN(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{0, 0})
	q := []float32{0, 0}

	got, err := e.Score(context.Background(), q, 0, m, metric.Jaccard{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(got[0])))

	cos, err := e.Score(context.Background(), q, 0, m, metric.Cosine{})
	require.NoError(t, err)
	assert.Equal(t, float32(0), cos[0])
}

func TestScoreGeneralized(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{1, 0}, []float32{3, 4}, []float32{0, 0}, []float32{-1, 2})
	q := []float32{2, 1}
	qn := distance.Norm(q)

	cos, err := e.Score(context.Background(), q, qn, m, metric.Cosine{})
	require.NoError(t, err)

	t.Run("p=2 equals cosine", func(t *testing.T) {
		got, err := e.Score(context.Background(), q, qn, m, metric.Generalized{P: 2})
		require.NoError(t, err)
		assert.Equal(t, cos, got)
	})

	t.Run("p=1 divides by squared norms", func(t *testing.T) {
		got, err := e.Score(context.Background(), q, qn, m, metric.Generalized{P: 1})
		require.NoError(t, err)

		want := float64(10) / (float64(qn) * 5 * float64(qn) * 5)
		assert.InDelta(t, want, got[1], 1e-5)
		assert.Equal(t, float32(0), got[2])
	})

	t.Run("larger p favors large norms", func(t *testing.T) {
		got, err := e.Score(context.Background(), q, qn, m, metric.Generalized{P: 8})
		require.NoError(t, err)
		assert.Greater(t, got[1]/got[0], cos[1]/cos[0])
	})

	t.Run("invalid p", func(t *testing.T) {
		_, err := e.Score(context.Background(), q, qn, m, metric.Generalized{P: 0})
		assert.ErrorIs(t, err, metric.ErrInvalidP)
	})
}

func TestScoreRejectsMetricPointers(t *testing.T) {
	e := New(1)
	m := matrix(2, []float32{1, 0}, []float32{3, 4})
	q := []float32{1, 0}

	for _, mt := range []metric.Metric{&metric.Cosine{}, &metric.Jaccard{}, &metric.Generalized{P: 0}, &metric.Generalized{P: 2}} {
		got, err := e.Score(context.Background(), q, 1, m, mt)
		assert.ErrorIs(t, err, metric.ErrUnknownMetric, "%T", mt)
		assert.Nil(t, got)
	}
}

func TestScoreHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(1).Score(ctx, []float32{1}, 1, matrix(1, []float32{1}), metric.Cosine{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReleasedScoresAreRewritten(t *testing.T) {
	e := New(2)
	m := matrix(2, []float32{1, 0}, []float32{0, 1}, []float32{2, 2})

	first, err := e.Dot(context.Background(), []float32{1, 1}, m)
	require.NoError(t, err)
	e.Release(first)

	got, err := e.Score(context.Background(), []float32{1, 0}, 1, m, metric.Cosine{})
	require.NoError(t, err)
	assert.InDelta(t, 1, got[0], 1e-6)
	assert.InDelta(t, 0, got[1], 1e-6)
	assert.InDelta(t, math.Sqrt2/2, got[2], 1e-6)
}
