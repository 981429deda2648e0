// Package neighborhood answers "which rows of a corpus are most similar to
// this one?" by exact, full-scan scoring over memory-mapped columnar corpora.
//
// # Cross-corpus
//
// Queries come from a source corpus and are ranked by raw dot product against
// a target corpus. The target can grow: AddTarget copies a source row into the
// target and returns its new index.
//
//	ctx := context.Background()
//	nb, _ := neighborhood.OpenCross(ctx, "./users", "./items")
//	defer nb.Close()
//
//	hits, _ := nb.Neighbors(ctx, "user-42", neighborhood.DefaultN)
//	for _, h := range hits {
//	    fmt.Println(h.ID, h.Score)
//	}
//
//	idx, _ := nb.AddTarget(ctx, "user-7") // -1 if unknown or already a target
//
// # Self-corpus
//
// Queries and candidates share one corpus that carries a norm column, and a
// normalized metric is chosen per query:
//
//	nb, _ := neighborhood.OpenSelf(ctx, "./items")
//	hits, _ := nb.Neighbors(ctx, "item-1", 10, metric.Generalized{P: 1})
//
// # Ranking
//
// Results are ordered by descending score. Equal scores rank the higher
// corpus index first. NaN scores (possible only under metric.Jaccard) rank
// above every number.
//
// # Concurrency
//
// Neighbors and Location are safe for concurrent use and never block on
// AddTarget. Each call pins one published state: it sees the target either
// before or after a concurrent growth step, never in between. AddTarget calls
// on one Cross are serialized. A target corpus must be grown through a single
// Cross at a time.
package neighborhood
