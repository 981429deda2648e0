package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/neighborhood/corpus"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniform fills dst with random values in range [0, 1).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
// Uses a single backing array for efficiency.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// Rows generates num rows named prefix-0, prefix-1, ... with Gaussian vectors.
func (r *RNG) Rows(prefix string, num, dimensions int) []corpus.Row {
	vecs := r.GaussianVectors(num, dimensions)
	rows := make([]corpus.Row, num)
	for i, v := range vecs {
		rows[i] = corpus.Row{ID: fmt.Sprintf("%s-%d", prefix, i), Vector: v}
	}
	return rows
}

// Literal builds rows from alternating id and vector arguments:
//
//	testutil.Literal("a", []float32{1, 0}, "b", []float32{0, 1})
func Literal(pairs ...any) []corpus.Row {
	if len(pairs)%2 != 0 {
		panic("testutil: Literal needs id/vector pairs")
	}
	rows := make([]corpus.Row, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		rows = append(rows, corpus.Row{ID: pairs[i].(string), Vector: pairs[i+1].([]float32)})
	}
	return rows
}

// BuildCorpus writes rows as a new corpus at dir and returns dir.
// The dimension is taken from the first row; dim must be given for no rows.
func BuildCorpus(tb testing.TB, dir string, rows []corpus.Row, optFns ...func(o *corpus.Options)) string {
	tb.Helper()
	require.NotEmpty(tb, rows, "use CreateCorpus for empty corpora")
	return buildCorpus(tb, dir, len(rows[0].Vector), rows, optFns)
}

// CreateCorpus creates an empty corpus of dimension dim at dir and returns dir.
func CreateCorpus(tb testing.TB, dir string, dim int, optFns ...func(o *corpus.Options)) string {
	tb.Helper()
	return buildCorpus(tb, dir, dim, nil, optFns)
}

func buildCorpus(tb testing.TB, dir string, dim int, rows []corpus.Row, optFns []func(o *corpus.Options)) string {
	tb.Helper()
	ctx := context.Background()

	b, err := corpus.NewBuilder(dir, dim, optFns...)
	require.NoError(tb, err)
	for _, row := range rows {
		require.NoError(tb, b.Add(ctx, row))
	}
	require.NoError(tb, b.Close(ctx))
	return dir
}

// NaiveDot returns dot(q, row.Vector) for every row using plain loops.
func NaiveDot(q []float32, rows []corpus.Row) []float32 {
	out := make([]float32, len(rows))
	for j, row := range rows {
		var s float32
		for i := range q {
			s += q[i] * row.Vector[i]
		}
		out[j] = s
	}
	return out
}

// ExactTopN ranks scores the reference way: stable ascending sort, reversed,
// truncated to n. It returns indices. Scores must not contain NaN.
func ExactTopN(scores []float32, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:min(n, len(idx))]
}
