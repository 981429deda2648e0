// Package pool provides reusable scratch buffers for full-corpus scans.
package pool

import "sync"

// DefaultMaxCap is the largest buffer capacity kept for reuse. Larger buffers
// are left to the garbage collector so one huge scan does not pin memory.
const DefaultMaxCap = 1 << 24

// Float32s is a pool of float32 slices. The zero value is not usable; call
// NewFloat32s.
type Float32s struct {
	p      sync.Pool
	maxCap int
}

// NewFloat32s returns a pool that keeps buffers of capacity up to maxCap.
func NewFloat32s(maxCap int) *Float32s {
	if maxCap <= 0 {
		maxCap = DefaultMaxCap
	}
	return &Float32s{maxCap: maxCap}
}

// Get returns a slice of length n. Its contents are unspecified.
func (f *Float32s) Get(n int) []float32 {
	if p, ok := f.p.Get().(*[]float32); ok && cap(*p) >= n {
		return (*p)[:n]
	}
	return make([]float32, n)
}

// Put returns s to the pool. s must not be used afterwards.
func (f *Float32s) Put(s []float32) {
	if cap(s) == 0 || cap(s) > f.maxCap {
		return
	}
	s = s[:0]
	f.p.Put(&s)
}
