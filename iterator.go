package persistent

import (
	"errors"
	"fmt"
)

// ErrInvalidIterator reports use of a nil, exhausted, or stale list
// iterator.
var ErrInvalidIterator = errors.New("invalid iterator")

func errEndIterator(op string) error {
	return fmt.Errorf("%w: %s at end of list", ErrInvalidIterator, op)
}

// ListIterator points at one element of a List. It reads through the
// list's current version, so Undo and Redo move what it observes.
type ListIterator struct {
	list *List
	node *listNode
}

// check rejects nil iterators and iterators whose node is newer than
// the current version, which happens after undoing past the version the
// node was created in.
func (it *ListIterator) check() error {
	if it == nil || it.node == nil {
		return ErrInvalidIterator
	}
	if it.node.first.version > it.list.cur {
		return fmt.Errorf("%w: node at version %d is newer than current version %d",
			ErrInvalidIterator, it.node.first.version, it.list.cur)
	}
	return nil
}

// Next moves to the right neighbour.
func (it *ListIterator) Next() error {
	if err := it.check(); err != nil {
		return err
	}
	right := it.node.getRight(it.list.cur)
	it.node = right
	if right == nil {
		return fmt.Errorf("%w: next past end of list", ErrInvalidIterator)
	}
	return nil
}

// Prev moves to the left neighbour.
func (it *ListIterator) Prev() error {
	if err := it.check(); err != nil {
		return err
	}
	left := it.node.getLeft(it.list.cur)
	it.node = left
	if left == nil {
		return fmt.Errorf("%w: prev past beginning of list", ErrInvalidIterator)
	}
	return nil
}

// Done reports whether the iterator is at the end of the list.
func (it *ListIterator) Done() (bool, error) {
	if err := it.check(); err != nil {
		return false, err
	}
	return it.node.getRight(it.list.cur) == nil, nil
}

// GetVal returns the value of the element the iterator points at.
func (it *ListIterator) GetVal() (interface{}, error) {
	if err := it.check(); err != nil {
		return nil, err
	}
	if it.node.getRight(it.list.cur) == nil {
		return nil, errEndIterator("getVal")
	}
	return it.node.value(it.list.cur), nil
}

// SetVal sets the value of the element the iterator points at,
// producing a new version of the list. The iterator follows the element
// into the new version.
func (it *ListIterator) SetVal(value interface{}) error {
	if err := it.check(); err != nil {
		return err
	}
	l := it.list
	if it.node.getRight(l.cur) == nil {
		return errEndIterator("setVal")
	}
	l.inv.invalidate(l.cur)
	if !it.node.full {
		it.node.fillSecond(value, l.cur+1)
		l.inv.add(it.node)
	} else {
		node := newListNode(value, l.cur+1)
		l.inv.add(node)
		if it.node.getLeft(l.cur) == nil {
			l.inv.addHead(node, l.cur+1)
		}
		l.copyLeft(it.node.getLeft(l.cur), node)
		l.copyRight(it.node.getRight(l.cur), node)
		it.node = node
	}
	l.inv.updateLastHead(l.cur + 1)
	l.commit(l.Len())
	return nil
}
