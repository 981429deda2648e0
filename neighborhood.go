package neighborhood

import (
	"context"
	"fmt"

	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/internal/rank"
	"github.com/hupe1980/neighborhood/internal/registry"
)

// DefaultN is the conventional result count for neighbor queries.
const DefaultN = 100

// Neighbor is one ranked result.
type Neighbor struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// openSide maps the corpus at path and replays its id column into a registry.
func openSide(ctx context.Context, path string, policy DuplicatePolicy) (side, error) {
	snap, err := corpus.Open(path)
	if err != nil {
		return side{}, err
	}

	reg, err := loadRegistry(ctx, snap, policy)
	if err != nil {
		snap.Release()
		return side{}, err
	}
	return side{snap: snap, reg: reg}, nil
}

func loadRegistry(ctx context.Context, snap *corpus.Snapshot, policy DuplicatePolicy) (*registry.Registry, error) {
	b := registry.NewBuilder(policy, snap.Len())
	err := snap.ScanIDs(func(block []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, id := range block {
			if err := b.Add(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load identifiers of %s: %w", snap.Dir(), translateError(err))
	}
	return b.Build(), nil
}

// resolve ranks scores and maps indices to identifiers of reg.
func resolve(scores []float32, n int, reg *registry.Registry) []Neighbor {
	hits := rank.TopN(scores, n)
	if len(hits) == 0 {
		return nil
	}

	out := make([]Neighbor, len(hits))
	for i, h := range hits {
		id, _ := reg.IDOf(h.Index)
		out[i] = Neighbor{ID: id, Score: h.Score}
	}
	return out
}

func checkN(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidN, n)
	}
	return nil
}
