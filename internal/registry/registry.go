// Package registry maps external identifiers to dense corpus indices and back.
//
// A Registry is built once by replaying a corpus's id column in storage order
// and is immutable afterwards. Growth produces a new Registry via Append; the
// old value stays valid, so a reader holding it never sees a half-applied
// growth step.
package registry

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrDuplicate is returned when an identifier is already registered and the
// policy does not allow it.
var ErrDuplicate = errors.New("registry: duplicate identifier")

// DuplicatePolicy decides what happens when an id column repeats an identifier.
type DuplicatePolicy int

const (
	// LastWins maps the identifier to its last position. Every position keeps
	// its own reverse entry, so the earlier positions stop round-tripping.
	LastWins DuplicatePolicy = iota
	// FirstWins keeps the identifier mapped to its first position.
	FirstWins
	// Reject fails the build on the first repeated identifier.
	Reject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case FirstWins:
		return "first-wins"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// Registry is the id↔index mapping of one corpus.
type Registry struct {
	base  map[string]int // bulk-built forward map, never written after Build
	grown *trie          // forward entries added by Append
	ids   []string       // index -> id
	dups  int

	// extended is set once a successor shares ids' backing array.
	extended atomic.Bool
}

// IndexOf resolves an identifier to its index.
func (r *Registry) IndexOf(id string) (int, bool) {
	if i, ok := r.grown.lookup(id); ok {
		return i, true
	}
	i, ok := r.base[id]
	return i, ok
}

// IDOf returns the identifier stored at index i.
func (r *Registry) IDOf(i int) (string, bool) {
	if i < 0 || i >= len(r.ids) {
		return "", false
	}
	return r.ids[i], true
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.IndexOf(id)
	return ok
}

// Len returns the number of indices (positions) in the registry.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Duplicates returns how many positions repeated an earlier identifier at build time.
func (r *Registry) Duplicates() int {
	return r.dups
}

// Append returns a registry extended by id at index r.Len().
// The receiver is left unchanged.
func (r *Registry) Append(id string) (*Registry, error) {
	if r.Contains(id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicate, id)
	}

	ids := r.ids
	if r.extended.Swap(true) {
		// A sibling already claimed the spare capacity; copy instead of sharing.
		ids = make([]string, len(r.ids), len(r.ids)+1+len(r.ids)/4)
		copy(ids, r.ids)
	}

	return &Registry{
		base:  r.base,
		grown: r.grown.insert(id, len(r.ids)),
		ids:   append(ids, id),
		dups:  r.dups,
	}, nil
}

// All calls fn for every index in ascending order until fn returns false.
func (r *Registry) All(fn func(i int, id string) bool) {
	for i, id := range r.ids {
		if !fn(i, id) {
			return
		}
	}
}

// Builder assembles a Registry from identifiers observed in storage order.
type Builder struct {
	policy DuplicatePolicy
	base   map[string]int
	ids    []string
	dups   int
}

// NewBuilder creates a Builder. sizeHint pre-sizes the maps.
func NewBuilder(policy DuplicatePolicy, sizeHint int) *Builder {
	return &Builder{
		policy: policy,
		base:   make(map[string]int, max(sizeHint, 0)),
		ids:    make([]string, 0, max(sizeHint, 0)),
	}
}

// Add assigns the next index to id.
func (b *Builder) Add(id string) error {
	idx := len(b.ids)
	if prev, ok := b.base[id]; ok {
		switch b.policy {
		case Reject:
			return fmt.Errorf("%w: %q at indices %d and %d", ErrDuplicate, id, prev, idx)
		case FirstWins:
			b.dups++
			b.ids = append(b.ids, id)
			return nil
		default:
			b.dups++
		}
	}
	b.base[id] = idx
	b.ids = append(b.ids, id)
	return nil
}

// Build returns the registry. The Builder must not be used afterwards.
func (b *Builder) Build() *Registry {
	r := &Registry{base: b.base, ids: b.ids, dups: b.dups}
	b.base, b.ids = nil, nil
	return r
}

// Build is a convenience wrapper that registers ids in order.
func Build(ids []string, policy DuplicatePolicy) (*Registry, error) {
	b := NewBuilder(policy, len(ids))
	for _, id := range ids {
		if err := b.Add(id); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
