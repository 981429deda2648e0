package neighborhood_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/neighborhood"
	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/metric"
)

func buildExampleCorpus(dir string, rows ...corpus.Row) {
	ctx := context.Background()
	b, err := corpus.NewBuilder(dir, len(rows[0].Vector))
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range rows {
		if err := b.Add(ctx, r); err != nil {
			log.Fatal(err)
		}
	}
	if err := b.Close(ctx); err != nil {
		log.Fatal(err)
	}
}

// ExampleOpenCross ranks a growable target corpus against source rows.
func ExampleOpenCross() {
	ctx := context.Background()
	dir, _ := os.MkdirTemp("", "neighborhood-example")
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "source")
	target := filepath.Join(dir, "target")
	buildExampleCorpus(source,
		corpus.Row{ID: "a", Vector: []float32{1, 0}},
		corpus.Row{ID: "b", Vector: []float32{0, 1}},
		corpus.Row{ID: "c", Vector: []float32{1, 1}},
		corpus.Row{ID: "d", Vector: []float32{2, 2}},
	)
	buildExampleCorpus(target,
		corpus.Row{ID: "a", Vector: []float32{1, 0}},
		corpus.Row{ID: "b", Vector: []float32{0, 1}},
	)

	nb, err := neighborhood.OpenCross(ctx, source, target)
	if err != nil {
		log.Fatal(err)
	}
	defer nb.Close()

	hits, _ := nb.Neighbors(ctx, "c", 2)
	fmt.Println(hits)

	idx, _ := nb.AddTarget(ctx, "d")
	fmt.Println(idx)

	idx, _ = nb.AddTarget(ctx, "d")
	fmt.Println(idx)

	hits, _ = nb.Neighbors(ctx, "c", 1)
	fmt.Println(hits)
	// Output:
	// [{b 1} {a 1}]
	// 2
	// -1
	// [{d 4}]
}

// ExampleSelf_Neighbors ranks one corpus by a normalized metric.
func ExampleSelf_Neighbors() {
	ctx := context.Background()
	dir, _ := os.MkdirTemp("", "neighborhood-example")
	defer os.RemoveAll(dir)

	buildExampleCorpus(dir,
		corpus.Row{ID: "x", Vector: []float32{1, 0}},
		corpus.Row{ID: "y", Vector: []float32{3, 4}},
		corpus.Row{ID: "w", Vector: []float32{0, 2}},
	)

	nb, err := neighborhood.OpenSelf(ctx, dir)
	if err != nil {
		log.Fatal(err)
	}
	defer nb.Close()

	hits, _ := nb.Neighbors(ctx, "x", 3, metric.Cosine{})
	for _, h := range hits {
		fmt.Printf("%s %.2f\n", h.ID, h.Score)
	}
	// Output:
	// x 1.00
	// y 0.60
	// w 0.00
}
