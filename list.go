package persistent

// snapshot is one versioned image of a list cell: the value it held and
// its neighbours as of the version the snapshot became live.
type snapshot struct {
	version int
	value   interface{}
	left    *listNode
	right   *listNode
}

// listNode is a fat node: it stores its original snapshot and at most
// one later snapshot in place. A third update clones the node instead.
type listNode struct {
	full   bool
	first  snapshot
	second snapshot
}

func newListNode(value interface{}, version int) *listNode {
	return &listNode{first: snapshot{version: version, value: value}}
}

// at returns the snapshot visible at version: the second once it is
// live, the first otherwise.
func (n *listNode) at(version int) *snapshot {
	if n.full && n.second.version <= version {
		return &n.second
	}
	return &n.first
}

// newest returns the most recently written snapshot, the target for
// neighbour rewiring during a mutation.
func (n *listNode) newest() *snapshot {
	if n.full {
		return &n.second
	}
	return &n.first
}

// getLeft returns the left neighbour at version, nil when the node did
// not exist yet.
func (n *listNode) getLeft(version int) *listNode {
	if version < n.first.version {
		return nil
	}
	return n.at(version).left
}

// getRight returns the right neighbour at version, nil when the node
// did not exist yet or is the end sentinel.
func (n *listNode) getRight(version int) *listNode {
	if version < n.first.version {
		return nil
	}
	return n.at(version).right
}

func (n *listNode) value(version int) interface{} {
	return n.at(version).value
}

// fillSecond is the one-shot fill of the second snapshot: neighbours
// carry over from the first, value and version are the new ones.
func (n *listNode) fillSecond(value interface{}, version int) {
	n.second = n.first
	n.second.version = version
	n.second.value = value
	n.full = true
}

// clear undoes the node's newest snapshot if it is newer than version,
// reporting whether anything was undone. A cleared second slot leaves
// the node fillable again.
func (n *listNode) clear(version int) bool {
	if n.full {
		if version >= n.second.version {
			return false
		}
		n.second = snapshot{}
		n.full = false
		return true
	}
	if version >= n.first.version {
		return false
	}
	n.first.left = nil
	n.first.right = nil
	return true
}

// extremeEntry records a node that became the leftmost or rightmost
// cell of the list, and the version at which it did. The version is
// recorded separately from the node because an existing cell can become
// an extreme through a second-snapshot fill.
type extremeEntry struct {
	version int
	node    *listNode
}

// invalidator journals every fat-node fill and extreme registration so
// that truncating history erases the interior mutations a dead branch
// made.
type invalidator struct {
	heads []extremeEntry
	tails []extremeEntry
	nodes []*listNode
}

func (inv *invalidator) add(n *listNode) {
	inv.nodes = append(inv.nodes, n)
}

func (inv *invalidator) addHead(n *listNode, version int) {
	inv.heads = append(inv.heads, extremeEntry{version, n})
}

func (inv *invalidator) addTail(n *listNode, version int) {
	inv.tails = append(inv.tails, extremeEntry{version, n})
}

// updateLastHead advances the newest head record when a cell was placed
// to its left at version.
func (inv *invalidator) updateLastHead(version int) {
	head := inv.heads[len(inv.heads)-1]
	if left := head.node.getLeft(version); left != nil {
		inv.heads[len(inv.heads)-1].node = left
	}
}

// invalidate unwinds every journalled mutation newer than version, so
// the next mutation starts a branch with no trace of the undone one.
func (inv *invalidator) invalidate(version int) {
	for len(inv.nodes) > 0 && inv.nodes[len(inv.nodes)-1].clear(version) {
		inv.nodes = inv.nodes[:len(inv.nodes)-1]
	}
	for len(inv.heads) > 0 && inv.heads[len(inv.heads)-1].version > version {
		inv.heads = inv.heads[:len(inv.heads)-1]
	}
	for len(inv.tails) > 0 && inv.tails[len(inv.tails)-1].version > version {
		inv.tails = inv.tails[:len(inv.tails)-1]
	}
}

// resolve scans the registry newest to oldest for the node that was the
// extreme at version.
func resolve(registry []extremeEntry, version int) *listNode {
	for i := len(registry) - 1; i >= 0; i-- {
		if registry[i].version <= version {
			return registry[i].node
		}
	}
	return registry[0].node
}

// List is a persistent doubly-linked sequence. Cells absorb up to two
// versions in place before a mutation escalates to path-copying of the
// neighbouring cells; a sentinel without a right neighbour terminates
// every version of the list and is where End points.
type List struct {
	cur   int
	last  int
	sizes []int
	inv   *invalidator
}

// NewList returns an empty List.
func NewList() *List {
	sentinel := &listNode{}
	return &List{
		sizes: []int{0},
		inv: &invalidator{
			heads: []extremeEntry{{0, sentinel}},
			tails: []extremeEntry{{0, sentinel}},
		},
	}
}

// Len returns the number of elements in the current version.
func (l *List) Len() int {
	return l.sizes[l.cur]
}

// commit discards any undone versions and advances the cursor onto the
// freshly built one.
func (l *List) commit(size int) {
	l.sizes = append(l.sizes[:l.cur+1], size)
	l.cur++
	l.last = l.cur
}

// Begin returns an iterator on the leftmost element of the current
// version; on an empty list it equals End.
func (l *List) Begin() *ListIterator {
	return &ListIterator{list: l, node: resolve(l.inv.heads, l.cur)}
}

// End returns the end iterator of the current version.
func (l *List) End() *ListIterator {
	return &ListIterator{list: l, node: resolve(l.inv.tails, l.cur)}
}

// copyLeft rebuilds the spine to the left of prev at version cur+1,
// cloning full cells and stopping at the first cell whose second slot
// can absorb the new version.
func (l *List) copyLeft(from, prev *listNode) {
	for left := from; left != nil; left = left.getLeft(l.cur) {
		if left.full {
			clone := newListNode(left.value(l.cur), l.cur+1)
			prev.newest().left = clone
			clone.first.right = prev
			l.inv.add(clone)
			if left.getLeft(l.cur) == nil {
				l.inv.addHead(clone, l.cur+1)
			}
			prev = clone
			continue
		}
		left.fillSecond(left.value(l.cur), l.cur+1)
		left.second.right = prev
		prev.newest().left = left
		l.inv.add(left)
		return
	}
}

// copyRight is the mirror of copyLeft, registering a clone of the
// sentinel as the new tail when the walk falls off the right end.
func (l *List) copyRight(from, prev *listNode) {
	for right := from; right != nil; right = right.getRight(l.cur) {
		if right.full {
			clone := newListNode(right.value(l.cur), l.cur+1)
			prev.newest().right = clone
			clone.first.left = prev
			l.inv.add(clone)
			if right.getRight(l.cur) == nil {
				l.inv.addTail(clone, l.cur+1)
			}
			prev = clone
			continue
		}
		right.fillSecond(right.value(l.cur), l.cur+1)
		right.second.left = prev
		prev.newest().right = right
		l.inv.add(right)
		return
	}
}

// Insert places value before the element it points at, producing a new
// version. The caller's iterator is rebound to the element now
// following the new one; the returned iterator is on the new element.
func (l *List) Insert(it *ListIterator, value interface{}) (*ListIterator, error) {
	if err := it.check(); err != nil {
		return nil, err
	}
	l.inv.invalidate(l.cur)
	node := newListNode(value, l.cur+1)
	l.inv.add(node)
	if it.node.getLeft(l.cur) == nil {
		l.inv.addHead(node, l.cur+1)
	}
	l.copyLeft(it.node.getLeft(l.cur), node)
	l.copyRight(it.node, node)
	l.inv.updateLastHead(l.cur + 1)
	l.commit(l.Len() + 1)
	it.node = node.getRight(l.cur)
	return &ListIterator{list: l, node: node}, nil
}

// Erase removes the element it points at, producing a new version. The
// caller's iterator is invalidated; the returned iterator is on the
// right neighbour at the new version.
func (l *List) Erase(it *ListIterator) (*ListIterator, error) {
	if err := it.check(); err != nil {
		return nil, err
	}
	rightNode := it.node.getRight(l.cur)
	if rightNode == nil {
		return nil, errEndIterator("erase")
	}
	l.inv.invalidate(l.cur)
	leftNode := it.node.getLeft(l.cur)

	var leftClone, rightClone *listNode
	if leftNode != nil {
		if !leftNode.full {
			leftNode.fillSecond(leftNode.value(l.cur), l.cur+1)
			l.inv.add(leftNode)
		} else {
			leftClone = newListNode(leftNode.value(l.cur), l.cur+1)
			l.inv.add(leftClone)
			if leftNode.getLeft(l.cur) == nil {
				l.inv.addHead(leftClone, l.cur+1)
			}
			l.copyLeft(leftNode.getLeft(l.cur), leftClone)
		}
	}
	if !rightNode.full {
		rightNode.fillSecond(rightNode.value(l.cur), l.cur+1)
		l.inv.add(rightNode)
		if leftNode == nil {
			rightNode.second.left = nil
			l.inv.addHead(rightNode, l.cur+1)
		}
	} else {
		rightClone = newListNode(rightNode.value(l.cur), l.cur+1)
		l.inv.add(rightClone)
		if leftNode == nil {
			l.inv.addHead(rightClone, l.cur+1)
		}
		if rightNode.getRight(l.cur) == nil {
			l.inv.addTail(rightClone, l.cur+1)
		}
		l.copyRight(rightNode.getRight(l.cur), rightClone)
	}

	surviving := rightNode
	if rightClone != nil {
		surviving = rightClone
	}
	if leftNode != nil {
		leftSide := leftNode
		if leftClone != nil {
			leftSide = leftClone
		}
		leftSide.newest().right = surviving
		surviving.newest().left = leftSide
	}

	l.inv.updateLastHead(l.cur + 1)
	l.commit(l.Len() - 1)
	it.node = nil
	return &ListIterator{list: l, node: surviving}, nil
}

// Undo moves the read cursor back numIter versions. With clearHistory,
// the newer versions are discarded and their fat-node fills erased.
func (l *List) Undo(numIter int, clearHistory bool) {
	l.cur = clampVersion(l.cur-numIter, l.last)
	if clearHistory {
		l.inv.invalidate(l.cur)
		l.sizes = l.sizes[:l.cur+1]
		l.last = l.cur
	}
}

// Redo moves the read cursor forward numIter versions.
func (l *List) Redo(numIter int) {
	l.cur = clampVersion(l.cur+numIter, l.last)
}

// LastVersion returns the number of versions, counting version 0.
func (l *List) LastVersion() int {
	return l.last + 1
}
