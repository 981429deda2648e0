// Package rank orders a full score vector and keeps the best n entries.
//
// The order is defined as: sort ascending with a stable sort, then reverse the
// whole sequence. Among equal scores the entry with the higher index therefore
// ranks first. NaN compares greater than every number, so NaN scores (which
// only the Jaccard metric lets through) rank ahead of +Inf.
package rank

import (
	"container/heap"
	"slices"

	"github.com/hupe1980/neighborhood/distance"
)

// Hit is one ranked candidate.
type Hit struct {
	Index int
	Score float32
}

// compare orders scores ascending with NaN after every number.
func compare(a, b float32) int {
	switch an, bn := distance.IsNaN(a), distance.IsNaN(b); {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// before reports whether hit (ia, a) ranks ahead of (ib, b) in the final order.
func before(ia int, a float32, ib int, b float32) bool {
	if c := compare(a, b); c != 0 {
		return c > 0
	}
	return ia > ib
}

// TopN returns the first n hits of the descending order of scores, or all of
// them if len(scores) < n.
func TopN(scores []float32, n int) []Hit {
	if n <= 0 || len(scores) == 0 {
		return nil
	}
	if n < len(scores)/8 {
		return selectTop(scores, n)
	}
	return sortTop(scores, n)
}

// sortTop is the literal definition: stable ascending sort, reverse, truncate.
func sortTop(scores []float32, n int) []Hit {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return compare(scores[a], scores[b])
	})
	slices.Reverse(order)

	n = min(n, len(order))
	hits := make([]Hit, n)
	for i, idx := range order[:n] {
		hits[i] = Hit{Index: idx, Score: scores[idx]}
	}
	return hits
}

// selectTop keeps a bounded heap whose root is the weakest retained hit.
// The (score, index) key is a total order equal to sortTop's, so both paths
// return identical results.
func selectTop(scores []float32, n int) []Hit {
	h := make(minHeap, 0, n)
	for i, s := range scores {
		if len(h) < n {
			heap.Push(&h, Hit{Index: i, Score: s})
			continue
		}
		if before(i, s, h[0].Index, h[0].Score) {
			h[0] = Hit{Index: i, Score: s}
			heap.Fix(&h, 0)
		}
	}

	hits := []Hit(h)
	slices.SortFunc(hits, func(a, b Hit) int {
		if before(a.Index, a.Score, b.Index, b.Score) {
			return -1
		}
		return 1
	})
	return hits
}

type minHeap []Hit

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	return before(h[j].Index, h[j].Score, h[i].Index, h[i].Score)
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(Hit)) }
func (h *minHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
