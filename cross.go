package neighborhood

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/internal/conv"
	"github.com/hupe1980/neighborhood/internal/similarity"
)

// Cross ranks the rows of a growable target corpus against query rows of a
// source corpus by raw dot product.
//
// Neighbors and Location may be called concurrently with each other and with
// AddTarget. AddTarget calls are serialized.
type Cross struct {
	sourcePath string
	targetPath string

	opts   options
	logger *Logger
	engine *similarity.Engine

	current atomic.Pointer[view]
	closed  atomic.Bool

	// growMu guards table and the publication of successor views.
	growMu sync.Mutex
	table  *corpus.Table
}

// OpenCross opens the source corpus at sourcePath and the target corpus at
// targetPath. Both must share a vector dimension.
func OpenCross(ctx context.Context, sourcePath, targetPath string, optFns ...Option) (*Cross, error) {
	opts := applyOptions(optFns)

	var (
		source, target side
		table          *corpus.Table
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = openSide(gctx, sourcePath, opts.duplicatePolicy)
		opts.logger.LogOpen(ctx, "source", sourcePath, source.len(), source.dim(), err)
		return err
	})
	g.Go(func() error {
		var err error
		// The writer handle goes first so an interrupted append is truncated
		// before the target is mapped.
		if table, err = corpus.OpenTableFS(opts.fileSystem, targetPath); err != nil {
			opts.logger.LogOpen(ctx, "target", targetPath, 0, 0, err)
			return err
		}
		target, err = openSide(gctx, targetPath, opts.duplicatePolicy)
		opts.logger.LogOpen(ctx, "target", targetPath, target.len(), target.dim(), err)
		return err
	})

	cleanup := func() {
		for _, s := range []side{source, target} {
			if s.snap != nil {
				s.snap.Release()
			}
		}
		if table != nil {
			_ = table.Close()
		}
	}

	if err := g.Wait(); err != nil {
		cleanup()
		return nil, err
	}

	if source.dim() != target.dim() {
		cleanup()
		return nil, &ErrDimensionMismatch{Source: source.dim(), Target: target.dim()}
	}

	members, err := buildMembers(source.reg, target.reg)
	if err != nil {
		cleanup()
		return nil, err
	}

	c := &Cross{
		sourcePath: sourcePath,
		targetPath: targetPath,
		opts:       opts,
		logger:     opts.logger.WithCorpus("target", target.snap.Meta().CorpusID),
		engine:     similarity.New(opts.parallelism),
		table:      table,
	}
	c.current.Store(newView(source, target, members, source.snap, target.snap))

	return c, nil
}

func (s side) len() int {
	if s.snap == nil {
		return 0
	}
	return s.snap.Len()
}

func (s side) dim() int {
	if s.snap == nil {
		return 0
	}
	return s.snap.Dim()
}

// Neighbors returns up to n target rows ranked by dot product with the source
// row of id, highest first. Equal scores rank the higher target index first.
// An unknown id yields an empty result.
func (c *Cross) Neighbors(ctx context.Context, id string, n int) (result []Neighbor, err error) {
	start := time.Now()
	defer func() {
		c.opts.metricsCollector.RecordNeighbors(n, len(result), time.Since(start), err)
		c.logger.LogNeighbors(ctx, id, n, len(result), err)
	}()

	if err := checkN(n); err != nil {
		return nil, err
	}

	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return nil, err
	}
	defer v.release()

	q, ok := v.source.reg.IndexOf(id)
	if !ok || n == 0 {
		return nil, nil
	}

	scores, err := c.engine.Dot(ctx, v.source.snap.Vector(q), v.target.matrix())
	if err != nil {
		return nil, err
	}
	defer c.engine.Release(scores)

	return resolve(scores, n, v.target.reg), nil
}

// Location returns a copy of the source vector of id, or nil if id is unknown.
func (c *Cross) Location(ctx context.Context, id string) ([]float32, error) {
	start := time.Now()

	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return nil, err
	}
	defer v.release()

	var vec []float32
	if i, ok := v.source.reg.IndexOf(id); ok {
		vec = slices.Clone(v.source.snap.Vector(i))
	}

	c.opts.metricsCollector.RecordLocation(vec != nil, time.Since(start))
	c.logger.LogLocation(ctx, id, vec != nil)
	return vec, nil
}

// AddTarget appends the source row of id to the target corpus and returns its
// new target index. It returns -1 without side effects when id is not in the
// source or is already a target member. On an I/O error it returns -1 and the
// error; the published state is unchanged.
func (c *Cross) AddTarget(ctx context.Context, id string) (index int, err error) {
	start := time.Now()
	tx := uuid.NewString()
	defer func() {
		c.opts.metricsCollector.RecordAddTarget(index >= 0, time.Since(start), err)
		c.logger.LogAddTarget(ctx, tx, id, index, err)
	}()

	c.growMu.Lock()
	defer c.growMu.Unlock()

	if c.closed.Load() {
		return -1, ErrClosed
	}

	// Only growth replaces the published view, so it can be used without a
	// reference while growMu is held.
	cur := c.current.Load()

	if cur.target.reg.Len() != c.table.Len() {
		if cur, err = c.resync(ctx, cur); err != nil {
			return -1, err
		}
	}

	q, ok := cur.source.reg.IndexOf(id)
	if !ok {
		return -1, nil
	}
	member, err := conv.IntToUint32(q)
	if err != nil {
		return -1, fmt.Errorf("source index of %q: %w", id, err)
	}
	if cur.members.Contains(member) || cur.target.reg.Contains(id) {
		return -1, nil
	}

	l := c.table.Len()
	row := corpus.Row{ID: id, Vector: cur.source.snap.Vector(q)}
	if cur.source.snap.HasNorms() {
		norm := cur.source.snap.Norm(q)
		row.Norm = &norm
	}

	if err := c.table.Append(ctx, row); err != nil {
		return -1, fmt.Errorf("append %q to target: %w", id, err)
	}

	next, err := c.successor(cur, id, member)
	if err != nil {
		// The row is durable but not published; the next AddTarget resyncs.
		return -1, fmt.Errorf("reopen target after appending %q: %w", id, err)
	}

	c.publish(cur, next)
	return l, nil
}

// successor builds the view that follows cur once id (source index member)
// has been appended to the target.
func (c *Cross) successor(cur *view, id string, member uint32) (*view, error) {
	snap, err := corpus.Open(c.targetPath)
	if err != nil {
		return nil, err
	}

	reg, err := cur.target.reg.Append(id)
	if err != nil {
		snap.Release()
		return nil, translateError(err)
	}
	if snap.Len() != reg.Len() {
		snap.Release()
		return nil, fmt.Errorf("%w: target holds %d rows, registry %d", corpus.ErrCorrupted, snap.Len(), reg.Len())
	}

	if !cur.source.snap.Acquire() {
		snap.Release()
		return nil, ErrClosed
	}

	members := cur.members.Clone()
	members.Add(member)

	return newView(cur.source, side{snap: snap, reg: reg}, members, cur.source.snap, snap), nil
}

// resync rebuilds the target side from disk after an append whose reopen failed.
func (c *Cross) resync(ctx context.Context, cur *view) (*view, error) {
	published, stored := cur.target.reg.Len(), c.table.Len()

	target, err := openSide(ctx, c.targetPath, c.opts.duplicatePolicy)
	var members *roaring.Bitmap
	if err == nil {
		if members, err = buildMembers(cur.source.reg, target.reg); err != nil {
			target.snap.Release()
		}
	}
	if err == nil && !cur.source.snap.Acquire() {
		target.snap.Release()
		err = ErrClosed
	}
	c.logger.LogResync(ctx, published, stored, err)
	if err != nil {
		return nil, err
	}

	next := newView(cur.source, target, members, cur.source.snap, target.snap)
	c.publish(cur, next)
	return next, nil
}

func (c *Cross) publish(old, next *view) {
	c.current.Store(next)
	old.release()
}

// SourceLen returns the number of source rows.
func (c *Cross) SourceLen() int {
	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return 0
	}
	defer v.release()
	return v.source.snap.Len()
}

// TargetLen returns the number of published target rows.
func (c *Cross) TargetLen() int {
	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return 0
	}
	defer v.release()
	return v.target.snap.Len()
}

// Coverage returns how many source rows are target members.
func (c *Cross) Coverage() uint64 {
	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return 0
	}
	defer v.release()
	return v.members.GetCardinality()
}

// Close releases the corpora. Calls in flight finish on the state they pinned.
func (c *Cross) Close() error {
	c.growMu.Lock()
	defer c.growMu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}

	if v := c.current.Swap(nil); v != nil {
		v.release()
	}
	return c.table.Close()
}

// Metas returns the source and target manifests of the published state.
func (c *Cross) Metas() (source, target corpus.Meta, err error) {
	v, err := pin(&c.current, &c.closed)
	if err != nil {
		return corpus.Meta{}, corpus.Meta{}, err
	}
	defer v.release()
	return v.source.snap.Meta(), v.target.snap.Meta(), nil
}
