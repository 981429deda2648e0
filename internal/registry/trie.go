package registry

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	chunkSize = 6
	mask      = (1 << chunkSize) - 1
)

func hashID(id string) uint64 {
	return xxhash.Sum64String(id)
}

// trie is an immutable hash array mapped trie from identifier to index.
// insert returns a new trie that shares every untouched node with the old one,
// so earlier registry versions stay valid for concurrent readers.
type trie struct {
	root  *node
	count int
}

type node struct {
	bitmap   uint64
	children []*node

	key    string
	val    int
	isLeaf bool

	collision []entry
}

type entry struct {
	key string
	val int
}

func (t *trie) len() int {
	if t == nil {
		return 0
	}
	return t.count
}

func (t *trie) lookup(id string) (int, bool) {
	if t == nil || t.root == nil {
		return 0, false
	}
	return t.root.lookup(id, hashID(id), 0)
}

func (n *node) lookup(id string, hash uint64, shift int) (int, bool) {
	if n.isLeaf {
		for _, e := range n.collision {
			if e.key == id {
				return e.val, true
			}
		}
		if len(n.collision) == 0 && n.key == id {
			return n.val, true
		}
		return 0, false
	}

	bit := uint64(1) << ((hash >> shift) & mask)
	if n.bitmap&bit == 0 {
		return 0, false
	}

	childIdx := bits.OnesCount64(n.bitmap & (bit - 1))
	return n.children[childIdx].lookup(id, hash, shift+chunkSize)
}

func (t *trie) insert(id string, val int) *trie {
	var root *node
	count := 0
	if t != nil {
		root, count = t.root, t.count
	}

	newRoot, added := insertRec(root, id, hashID(id), val, 0)
	if added {
		count++
	}
	return &trie{root: newRoot, count: count}
}

func insertRec(n *node, id string, hash uint64, val int, shift int) (*node, bool) {
	if n == nil {
		return &node{key: id, val: val, isLeaf: true}, true
	}

	if n.isLeaf {
		if len(n.collision) > 0 {
			collision := make([]entry, len(n.collision), len(n.collision)+1)
			copy(collision, n.collision)
			for i, e := range collision {
				if e.key == id {
					collision[i].val = val
					return &node{isLeaf: true, collision: collision}, false
				}
			}
			return &node{isLeaf: true, collision: append(collision, entry{key: id, val: val})}, true
		}

		if n.key == id {
			return &node{key: id, val: val, isLeaf: true}, false
		}

		nHash := hashID(n.key)
		if nHash == hash {
			return &node{
				isLeaf:    true,
				collision: []entry{{key: n.key, val: n.val}, {key: id, val: val}},
			}, true
		}

		// Split the leaf into an internal node holding both keys.
		split, _ := insertRec(&node{}, n.key, nHash, n.val, shift)
		return insertRec(split, id, hash, val, shift)
	}

	bit := uint64(1) << ((hash >> shift) & mask)
	childIdx := bits.OnesCount64(n.bitmap & (bit - 1))

	var child *node
	var added bool
	if n.bitmap&bit != 0 {
		child, added = insertRec(n.children[childIdx], id, hash, val, shift+chunkSize)
	} else {
		child, added = &node{key: id, val: val, isLeaf: true}, true
	}

	next := &node{bitmap: n.bitmap | bit}
	if n.bitmap&bit != 0 {
		next.children = make([]*node, len(n.children))
		copy(next.children, n.children)
		next.children[childIdx] = child
	} else {
		next.children = make([]*node, len(n.children)+1)
		copy(next.children[:childIdx], n.children[:childIdx])
		next.children[childIdx] = child
		copy(next.children[childIdx+1:], n.children[childIdx:])
	}

	return next, added
}
