package neighborhood

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/neighborhood/corpus"
	"github.com/hupe1980/neighborhood/internal/conv"
	"github.com/hupe1980/neighborhood/internal/registry"
	"github.com/hupe1980/neighborhood/internal/similarity"
)

// side is one corpus as queries see it: mapped rows plus the registry built
// from the same committed prefix.
type side struct {
	snap *corpus.Snapshot
	reg  *registry.Registry
}

func (s side) matrix() similarity.Matrix {
	return similarity.Matrix{
		Rows:  s.snap.Rows(),
		Norms: s.snap.Norms(),
		Dim:   s.snap.Dim(),
	}
}

// view is a published, immutable state of a neighborhood. Readers pin it
// with tryAcquire; growth installs a successor and drops the owner reference.
type view struct {
	refs atomic.Int64

	source side
	target side

	// members holds the source indices whose identifier is a target member.
	members *roaring.Bitmap

	// owned lists the snapshot references this view releases.
	owned []*corpus.Snapshot
}

func newView(source, target side, members *roaring.Bitmap, owned ...*corpus.Snapshot) *view {
	v := &view{source: source, target: target, members: members, owned: owned}
	v.refs.Store(1)
	return v
}

func (v *view) tryAcquire() bool {
	for {
		n := v.refs.Load()
		if n <= 0 {
			return false
		}
		if v.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (v *view) release() {
	if v.refs.Add(-1) == 0 {
		for _, s := range v.owned {
			s.Release()
		}
	}
}

// pin returns the current view with a reference held, or ErrClosed.
func pin(current *atomic.Pointer[view], closed *atomic.Bool) (*view, error) {
	for {
		if closed.Load() {
			return nil, ErrClosed
		}
		v := current.Load()
		if v == nil {
			return nil, ErrClosed
		}
		if v.tryAcquire() {
			return v, nil
		}
		// The view was retired between Load and acquire; its successor is
		// published before retirement.
		runtime.Gosched()
	}
}

// buildMembers marks every source index whose identifier appears in target.
func buildMembers(source, target *registry.Registry) (*roaring.Bitmap, error) {
	var err error
	bm := roaring.New()
	target.All(func(_ int, id string) bool {
		i, ok := source.IndexOf(id)
		if !ok {
			return true
		}
		var x uint32
		if x, err = conv.IntToUint32(i); err != nil {
			return false
		}
		bm.Add(x)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("source index: %w", err)
	}
	bm.RunOptimize()
	return bm, nil
}
