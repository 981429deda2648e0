package distance

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5, Norm([]float32{3, 4}), 1e-6)
	assert.Equal(t, float32(0), Norm([]float32{0, 0}))
}

func TestDotAll(t *testing.T) {
	data := []float32{
		1, 0,
		0, 1,
		1, 1,
		2, 2,
	}
	out := make([]float32, 4)

	DotAll(data, 2, []float32{1, 1}, out)
	assert.Equal(t, []float32{1, 1, 2, 4}, out)

	DotAll(nil, 2, []float32{1, 1}, out[:0])
}

func TestDotAllParallel_MatchesSerial(t *testing.T) {
	const (
		rows = 3*MinChunkRows + 17
		dim  = 8
	)

	data := make([]float32, rows*dim)
	for i := range data {
		data[i] = float32(i%13) - 6
	}
	q := []float32{1, -2, 3, -4, 5, -6, 7, -8}

	want := make([]float32, rows)
	DotAll(data, dim, q, want)

	got := make([]float32, rows)
	require.NoError(t, DotAllParallel(context.Background(), data, dim, q, got, 4))
	assert.Equal(t, want, got)
}

func TestDotAllParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make([]float32, 2)
	err := DotAllParallel(ctx, []float32{1, 2}, 1, []float32{1}, out, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDivideAndReplaceNaN(t *testing.T) {
	num := []float32{1, 0, -1, 4}
	den := []float32{2, 0, 0, 2}
	out := make([]float32, 4)

	Divide(num, den, out)
	assert.Equal(t, float32(0.5), out[0])
	assert.True(t, IsNaN(out[1]))
	assert.True(t, math.IsInf(float64(out[2]), -1))
	assert.Equal(t, float32(2), out[3])

	assert.Equal(t, 1, ReplaceNaN(out, 0))
	assert.Equal(t, float32(0), out[1])
	assert.True(t, math.IsInf(float64(out[2]), -1))
}
