package persistent

import (
	"fmt"
	"math/rand"
	"reflect"
)

// treapNode is one immutable node of the treap: a binary search tree on
// key, a max-heap on priority.
type treapNode struct {
	key      interface{}
	value    interface{}
	priority int
	left     *treapNode
	right    *treapNode
}

// Map is a persistent ordered map. Versions are immutable treap roots
// in an append-only chain indexed by version number; mutations
// path-copy O(log n) expected nodes and share everything else.
type Map struct {
	roots    []*treapNode
	sizes    []int
	cur      int
	last     int
	keyOrder func(_, _ interface{}) (int, error)
	rnd      *rand.Rand
}

// NewMap returns an empty Map ordering keys with DefaultKeyCompare.
func NewMap() *Map {
	return NewMapWithSource(nil)
}

// NewMapWithSource is NewMap taking the random source used to draw
// treap priorities, for deterministic shapes in tests. A nil rnd uses
// the process-global source.
func NewMapWithSource(rnd *rand.Rand) *Map {
	return &Map{
		roots:    []*treapNode{nil},
		sizes:    []int{0},
		keyOrder: DefaultKeyCompare,
		rnd:      rnd,
	}
}

func (m *Map) drawPriority() int {
	if m.rnd != nil {
		return m.rnd.Int()
	}
	return rand.Int()
}

// Len returns the number of entries in the current version.
func (m *Map) Len() int {
	return m.sizes[m.cur]
}

// commit discards any undone versions and appends root as the new
// current one.
func (m *Map) commit(root *treapNode, size int) {
	m.roots = append(m.roots[:m.cur+1], root)
	m.sizes = append(m.sizes[:m.cur+1], size)
	m.cur++
	m.last = m.cur
}

// Find looks key up in the current version. When found, the entry's
// value is stored at the given pointer; pass nil to test presence only.
func (m *Map) Find(key, value interface{}) (bool, error) {
	node := m.roots[m.cur]
	for node != nil {
		cmp, err := m.keyOrder(key, node.key)
		if err != nil {
			return false, fmt.Errorf("keyCompare: %w", err)
		}
		switch {
		case cmp == 0:
			if value != nil && node.value != nil {
				reflect.ValueOf(value).Elem().Set(reflect.ValueOf(node.value))
			}
			return true, nil
		case cmp < 0:
			node = node.left
		default:
			node = node.right
		}
	}
	return false, nil
}

// SetValue sets the value stored for key. When the key is absent the
// entry is inserted instead; callers wanting update-only semantics
// check Find first. A new version is produced either way.
func (m *Map) SetValue(key, value interface{}) error {
	root := m.roots[m.cur]
	newRoot, err := m.setNodeValue(root, key, value)
	if err != nil {
		return err
	}
	size := m.sizes[m.cur]
	if newRoot == nil {
		newRoot, err = m.insertNode(root, key, value)
		if err != nil {
			return err
		}
		size++
	}
	m.commit(newRoot, size)
	return nil
}

// Insert adds key with value, replacing the value when the key is
// already present.
func (m *Map) Insert(key, value interface{}) error {
	return m.SetValue(key, value)
}

// Erase removes the entry for key, reporting whether it was present. An
// absent key produces no new version.
func (m *Map) Erase(key interface{}) (bool, error) {
	found, err := m.Find(key, nil)
	if err != nil || !found {
		return false, err
	}
	newRoot, err := m.eraseNode(m.roots[m.cur], key)
	if err != nil {
		return false, err
	}
	m.commit(newRoot, m.sizes[m.cur]-1)
	return true, nil
}

// Iter walks the current version's entries in key order, invoking f for
// each until it returns an error.
func (m *Map) Iter(f func(key, value interface{}) error) error {
	return iterNode(m.roots[m.cur], f)
}

func iterNode(node *treapNode, f func(key, value interface{}) error) error {
	if node == nil {
		return nil
	}
	if err := iterNode(node.left, f); err != nil {
		return err
	}
	if err := f(node.key, node.value); err != nil {
		return err
	}
	return iterNode(node.right, f)
}

// Undo moves the read cursor back numIter versions. With clearHistory,
// the versions above the new cursor are discarded.
func (m *Map) Undo(numIter int, clearHistory bool) {
	m.cur = clampVersion(m.cur-numIter, m.last)
	if clearHistory {
		m.roots = m.roots[:m.cur+1]
		m.sizes = m.sizes[:m.cur+1]
		m.last = m.cur
	}
}

// Redo moves the read cursor forward numIter versions.
func (m *Map) Redo(numIter int) {
	m.cur = clampVersion(m.cur+numIter, m.last)
}

// LastVersion returns the number of versions, counting version 0.
func (m *Map) LastVersion() int {
	return m.last + 1
}

// setNodeValue path-copies down to key and replaces its value,
// preserving the node's priority. Returns nil when key is absent.
func (m *Map) setNodeValue(node *treapNode, key, value interface{}) (*treapNode, error) {
	if node == nil {
		return nil, nil
	}
	cmp, err := m.keyOrder(key, node.key)
	if err != nil {
		return nil, fmt.Errorf("keyCompare: %w", err)
	}
	if cmp == 0 {
		return &treapNode{key: node.key, value: value, priority: node.priority, left: node.left, right: node.right}, nil
	}
	if cmp < 0 {
		left, err := m.setNodeValue(node.left, key, value)
		if err != nil || left == nil {
			return nil, err
		}
		return &treapNode{key: node.key, value: node.value, priority: node.priority, left: left, right: node.right}, nil
	}
	right, err := m.setNodeValue(node.right, key, value)
	if err != nil || right == nil {
		return nil, err
	}
	return &treapNode{key: node.key, value: node.value, priority: node.priority, left: node.left, right: right}, nil
}

// insertNode adds an absent key: split the root around key, then merge
// the pieces around a fresh node with a freshly drawn priority.
func (m *Map) insertNode(root *treapNode, key, value interface{}) (*treapNode, error) {
	node := &treapNode{key: key, value: value, priority: m.drawPriority()}
	left, right, err := m.splitNode(root, key)
	if err != nil {
		return nil, err
	}
	return mergeNodes(mergeNodes(left, node), right), nil
}

// splitNode partitions node around key: keys ≤ key go left, the rest
// right. The descended spine is path-copied; all other subtrees are
// shared with the original.
func (m *Map) splitNode(node *treapNode, key interface{}) (*treapNode, *treapNode, error) {
	if node == nil {
		return nil, nil, nil
	}
	cmp, err := m.keyOrder(node.key, key)
	if err != nil {
		return nil, nil, fmt.Errorf("keyCompare: %w", err)
	}
	if cmp <= 0 {
		left, right, err := m.splitNode(node.right, key)
		if err != nil {
			return nil, nil, err
		}
		return &treapNode{key: node.key, value: node.value, priority: node.priority, left: node.left, right: left}, right, nil
	}
	left, right, err := m.splitNode(node.left, key)
	if err != nil {
		return nil, nil, err
	}
	return left, &treapNode{key: node.key, value: node.value, priority: node.priority, left: right, right: node.right}, nil
}

// mergeNodes joins two treaps in which every key of left precedes every
// key of right. The higher-priority root wins at each step; ties go to
// the right operand.
func mergeNodes(left, right *treapNode) *treapNode {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if left.priority <= right.priority {
		return &treapNode{key: right.key, value: right.value, priority: right.priority,
			left: mergeNodes(left, right.left), right: right.right}
	}
	return &treapNode{key: left.key, value: left.value, priority: left.priority,
		left: left.left, right: mergeNodes(left.right, right)}
}

// eraseNode path-copies down to key and replaces its node by the merge
// of its children. The key must be present.
func (m *Map) eraseNode(node *treapNode, key interface{}) (*treapNode, error) {
	cmp, err := m.keyOrder(key, node.key)
	if err != nil {
		return nil, fmt.Errorf("keyCompare: %w", err)
	}
	if cmp == 0 {
		return mergeNodes(node.left, node.right), nil
	}
	if cmp < 0 {
		left, err := m.eraseNode(node.left, key)
		if err != nil {
			return nil, err
		}
		return &treapNode{key: node.key, value: node.value, priority: node.priority, left: left, right: node.right}, nil
	}
	right, err := m.eraseNode(node.right, key)
	if err != nil {
		return nil, err
	}
	return &treapNode{key: node.key, value: node.value, priority: node.priority, left: node.left, right: right}, nil
}
