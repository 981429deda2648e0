package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat32s(t *testing.T) {
	p := NewFloat32s(64)

	s := p.Get(10)
	assert.Len(t, s, 10)
	p.Put(s)

	// A pooled buffer too small for the request is replaced.
	big := p.Get(32)
	assert.Len(t, big, 32)
	p.Put(big)

	assert.Len(t, p.Get(0), 0)

	// Oversized buffers are not kept.
	p.Put(make([]float32, 128))
	assert.LessOrEqual(t, cap(p.Get(1)), 64)
}

func TestFloat32sDefaultCap(t *testing.T) {
	p := NewFloat32s(0)
	assert.Equal(t, DefaultMaxCap, p.maxCap)
}
