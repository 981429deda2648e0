package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/neighborhood/corpus"
)

func TestRowsDeterministic(t *testing.T) {
	a := NewRNG(4711).Rows("x", 4, 8)
	b := NewRNG(4711).Rows("x", 4, 8)

	assert.Equal(t, a, b)
	assert.Equal(t, "x-3", a[3].ID)
	assert.Len(t, a[0].Vector, 8)
}

func TestBuildCorpus(t *testing.T) {
	rows := Literal("a", []float32{1, 0}, "b", []float32{0, 1})
	dir := BuildCorpus(t, filepath.Join(t.TempDir(), "c"), rows)

	snap, err := corpus.Open(dir)
	require.NoError(t, err)
	defer snap.Release()

	ids, err := snap.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestExactTopN(t *testing.T) {
	assert.Equal(t, []int{3, 2, 1}, ExactTopN([]float32{0, 1, 1, 1}, 3))
	assert.Equal(t, []int{1, 0}, ExactTopN([]float32{1, 2}, 5))
}

func TestNaiveDot(t *testing.T) {
	rows := Literal("a", []float32{1, 2}, "b", []float32{3, 4})
	assert.Equal(t, []float32{5, 11}, NaiveDot([]float32{1, 2}, rows))
}
