package corpus

import (
	"context"
	"slices"
)

// Builder bulk-loads a new corpus, writing BlockSize identifiers per frame.
type Builder struct {
	table   *Table
	pending []Row
	block   int
}

// NewBuilder creates the corpus at dir and returns a Builder for it.
func NewBuilder(dir string, dim int, optFns ...func(o *Options)) (*Builder, error) {
	t, err := Create(dir, dim, optFns...)
	if err != nil {
		return nil, err
	}
	block := t.Meta().BlockSize
	return &Builder{table: t, block: block, pending: make([]Row, 0, block)}, nil
}

// Add buffers a row and flushes a full block.
func (b *Builder) Add(ctx context.Context, r Row) error {
	if len(r.Vector) != b.table.Dim() {
		return &ErrWrongDimension{Expected: b.table.Dim(), Actual: len(r.Vector)}
	}
	r.Vector = slices.Clone(r.Vector)
	b.pending = append(b.pending, r)
	if len(b.pending) >= b.block {
		return b.Flush(ctx)
	}
	return nil
}

// Flush commits buffered rows.
func (b *Builder) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.table.Append(ctx, b.pending...); err != nil {
		return err
	}
	b.pending = b.pending[:0]
	return nil
}

// Len returns the number of rows added so far.
func (b *Builder) Len() int {
	return b.table.Len() + len(b.pending)
}

// Close flushes pending rows and closes the underlying table.
func (b *Builder) Close(ctx context.Context) error {
	flushErr := b.Flush(ctx)
	if err := b.table.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
