// Package importer bulk-loads corpora from external embedding sources.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/neighborhood/corpus"
)

// ErrEmptySource is returned by Import when the source yields no records.
var ErrEmptySource = errors.New("importer: source has no records")

// Record is one identifier with its embedding.
type Record struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// Source yields records in order. Next returns io.EOF after the last record.
type Source interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// Import writes every record of src into a new corpus at dir and returns the
// number of rows written. The corpus dimension is taken from the first record.
func Import(ctx context.Context, src Source, dir string, optFns ...func(o *corpus.Options)) (int, error) {
	first, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		return 0, ErrEmptySource
	}
	if err != nil {
		return 0, err
	}

	b, err := corpus.NewBuilder(dir, len(first.Vector), optFns...)
	if err != nil {
		return 0, err
	}

	n := 0
	rec := first
	for {
		if err := b.Add(ctx, corpus.Row{ID: rec.ID, Vector: rec.Vector}); err != nil {
			_ = b.Close(ctx)
			return n, fmt.Errorf("record %d (%q): %w", n, rec.ID, err)
		}
		n++

		rec, err = src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = b.Close(ctx)
			return n, err
		}
	}

	return n, b.Close(ctx)
}
