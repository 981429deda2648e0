// Package testutil provides testing utilities for neighborhood.
//
// This package is intended for use in tests and benchmarks only.
// It builds corpora on disk from literal or random rows and computes
// reference rankings with plain loops.
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Rows("item", 1000, 64)
//	dir := testutil.BuildCorpus(t, t.TempDir(), rows)
//
//	want := testutil.ExactTopN(testutil.NaiveDot(q, rows), 10)
package testutil
