// Package distance is the vectorized dot-product engine behind every score.
//
// Per-row dot products over a row-major block of vectors are computed with a
// single BLAS matrix-vector product (gonum blas32.Gemv). Large corpora can be
// split into row chunks that are scored concurrently.
//
// # Usage
//
//	out := make([]float32, rows)
//	distance.DotAll(data, dim, query, out)
//	distance.Divide(out, denominators, out)
//	distance.ReplaceNaN(out, 0)
package distance
