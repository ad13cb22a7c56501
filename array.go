package persistent

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrIndexOutOfRange reports an Array index outside [0, Len).
var ErrIndexOutOfRange = errors.New("index out of range")

// arrayNode is one immutable node of the index-keyed search tree. Nodes
// are shared freely between versions; a mutation path-copies only the
// spine from the root down to the changed index.
type arrayNode struct {
	index int
	value interface{}
	left  *arrayNode
	right *arrayNode
}

// Array is a persistent fixed-length sequence with random access by
// integer index. Every SetValue produces a new version; Undo and Redo
// move the read cursor along the version chain.
type Array struct {
	size  int
	roots []*arrayNode
	cur   int
	last  int
}

// NewArray returns an Array of the given length whose untouched
// elements read as nil.
func NewArray(size int) *Array {
	return NewArrayWithSource(size, nil, nil)
}

// NewArrayOf is NewArray with untouched elements reading as zero.
func NewArrayOf(size int, zero interface{}) *Array {
	return NewArrayWithSource(size, zero, nil)
}

// NewArrayWithSource is NewArrayOf taking the random source that shapes
// the index tree, for deterministic construction in tests. A nil rnd
// uses the process-global source.
func NewArrayWithSource(size int, zero interface{}, rnd *rand.Rand) *Array {
	var root *arrayNode
	if size > 0 {
		root = &arrayNode{index: 0, value: zero}
		for _, index := range perm(size-1, rnd) {
			attach(root, index+1, zero)
		}
	}
	return &Array{
		size:  size,
		roots: []*arrayNode{root},
	}
}

func perm(n int, rnd *rand.Rand) []int {
	if rnd != nil {
		return rnd.Perm(n)
	}
	return rand.Perm(n)
}

// attach inserts index below root, mutably. Only run during
// construction, before the version-0 root is published.
func attach(root *arrayNode, index int, zero interface{}) {
	for {
		if index < root.index {
			if root.left == nil {
				root.left = &arrayNode{index: index, value: zero}
				return
			}
			root = root.left
		} else {
			if root.right == nil {
				root.right = &arrayNode{index: index, value: zero}
				return
			}
			root = root.right
		}
	}
}

// Len returns the fixed length the Array was constructed with.
func (a *Array) Len() int {
	return a.size
}

// SetValue sets the element at index, producing a new version. Versions
// above the current cursor are discarded first, so a SetValue after
// Undo starts a fresh branch.
func (a *Array) SetValue(index int, value interface{}) error {
	if index < 0 || index >= a.size {
		return fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, index, a.size)
	}
	newRoot := setArrayValue(a.roots[a.cur], index, value)
	if newRoot == nil {
		// construction inserted every valid index, so a missing one
		// leaves the version's contents unchanged
		newRoot = a.roots[a.cur]
	}
	a.roots = append(a.roots[:a.cur+1], newRoot)
	a.cur++
	a.last = a.cur
	return nil
}

// setArrayValue path-copies from node down to index, sharing every
// subtree off the spine. Returns nil if index is not in the tree.
func setArrayValue(node *arrayNode, index int, value interface{}) *arrayNode {
	if node == nil {
		return nil
	}
	if index == node.index {
		return &arrayNode{index: index, value: value, left: node.left, right: node.right}
	}
	if index < node.index {
		if left := setArrayValue(node.left, index, value); left != nil {
			return &arrayNode{index: node.index, value: node.value, left: left, right: node.right}
		}
		return nil
	}
	if right := setArrayValue(node.right, index, value); right != nil {
		return &arrayNode{index: node.index, value: node.value, left: node.left, right: right}
	}
	return nil
}

// GetValue returns the element at index in the current version.
func (a *Array) GetValue(index int) (interface{}, error) {
	if index < 0 || index >= a.size {
		return nil, fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, index, a.size)
	}
	node := a.roots[a.cur]
	for node != nil {
		if index == node.index {
			return node.value, nil
		}
		if index < node.index {
			node = node.left
		} else {
			node = node.right
		}
	}
	panic(fmt.Sprintf("index %d missing from a tree of length %d", index, a.size))
}

// Undo moves the read cursor back numIter versions. With clearHistory,
// the versions above the new cursor are discarded.
func (a *Array) Undo(numIter int, clearHistory bool) {
	a.cur = clampVersion(a.cur-numIter, a.last)
	if clearHistory {
		a.roots = a.roots[:a.cur+1]
		a.last = a.cur
	}
}

// Redo moves the read cursor forward numIter versions.
func (a *Array) Redo(numIter int) {
	a.cur = clampVersion(a.cur+numIter, a.last)
}

// LastVersion returns the number of versions, counting version 0.
func (a *Array) LastVersion() int {
	return a.last + 1
}
