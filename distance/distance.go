package distance

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MinChunkRows is the smallest row chunk handed to a scoring worker.
// Below this size the goroutine overhead outweighs the parallel speedup.
const MinChunkRows = 4096

func vector(v []float32) blas32.Vector {
	return blas32.Vector{N: len(v), Inc: 1, Data: v}
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return blas32.Dot(vector(a), vector(b))
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// DotAll writes dot(row_i, q) into out[i] for every row of the row-major
// matrix data with dim columns. len(out) must equal len(data)/dim.
func DotAll(data []float32, dim int, q []float32, out []float32) {
	rows := len(out)
	if rows == 0 || dim == 0 {
		clear(out)
		return
	}

	a := blas32.General{Rows: rows, Cols: dim, Stride: dim, Data: data[:rows*dim]}
	blas32.Gemv(blas.NoTrans, 1, a, vector(q[:dim]), 0, vector(out))
}

// DotAllParallel is DotAll split across up to workers goroutines.
// Chunks never go below MinChunkRows rows. Cancellation is observed between chunks.
func DotAllParallel(ctx context.Context, data []float32, dim int, q []float32, out []float32, workers int) error {
	rows := len(out)
	if workers <= 1 || rows < 2*MinChunkRows {
		if err := ctx.Err(); err != nil {
			return err
		}
		DotAll(data, dim, q, out)
		return nil
	}

	chunk := max((rows+workers-1)/workers, MinChunkRows)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < rows; lo += chunk {
		hi := min(lo+chunk, rows)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			DotAll(data[lo*dim:hi*dim], dim, q, out[lo:hi])
			return nil
		})
	}

	return g.Wait()
}

// Divide writes num[i] / den[i] into out[i] using IEEE semantics:
// 0/0 yields NaN and x/0 yields ±Inf.
func Divide(num, den, out []float32) {
	for i := range out {
		out[i] = num[i] / den[i]
	}
}

// IsNaN reports whether f is not-a-number.
func IsNaN(f float32) bool {
	return f != f
}

// ReplaceNaN overwrites every NaN element of v with value and returns the
// number of replaced elements.
func ReplaceNaN(v []float32, value float32) int {
	n := 0
	for i, f := range v {
		if IsNaN(f) {
			v[i] = value
			n++
		}
	}
	return n
}
