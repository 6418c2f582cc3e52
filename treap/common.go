// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"github.com/cvmsuite/cvm/rng"
)

const (
	// staticDepth is the size of the static array to use for keeping track
	// of the parent stack during treap iteration.  Since a treap has a very
	// high probability that the tree height is logarithmic, it is
	// exceedingly unlikely that the parent stack will ever exceed this size
	// even for extremely large numbers of items.
	staticDepth = 128
)

// treapNode represents a node in the treap.
type treapNode[K any, P rng.Priority] struct {
	key      K
	priority P
	size     int // Count of items within this subtree - the node itself counts as 1.
	left     *treapNode[K, P]
	right    *treapNode[K, P]
}

// newTreapNode returns a new node from the given key and priority.  The node
// is not initially linked to any others.
func newTreapNode[K any, P rng.Priority](key K, priority P) *treapNode[K, P] {
	return &treapNode[K, P]{key: key, priority: priority, size: 1}
}

// leftSize returns the size of the subtree on the left-hand side, and zero if
// there is no tree present there.
func (n *treapNode[K, P]) leftSize() int {
	if n.left != nil {
		return n.left.size
	}
	return 0
}

// rightSize returns the size of the subtree on the right-hand side, and zero if
// there is no tree present there.
func (n *treapNode[K, P]) rightSize() int {
	if n.right != nil {
		return n.right.size
	}
	return 0
}

// updateSize recomputes the cached subtree size from the node's children.
func (n *treapNode[K, P]) updateSize() {
	n.size = 1 + n.leftSize() + n.rightSize()
}

// cloneTree returns a deep copy of the subtree rooted at node.
func cloneTree[K any, P rng.Priority](node *treapNode[K, P]) *treapNode[K, P] {
	if node == nil {
		return nil
	}
	return &treapNode[K, P]{
		key:      node.key,
		priority: node.priority,
		size:     node.size,
		left:     cloneTree(node.left),
		right:    cloneTree(node.right),
	}
}

// join merges two subtrees into one, where every key in left is less than
// every key in right.  The subtree whose root has the higher priority stays
// on top and the other one is recursively attached beneath it on the
// matching side.
func join[K any, P rng.Priority](left, right *treapNode[K, P]) *treapNode[K, P] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}

	if left.priority > right.priority {
		left.right = join(left.right, right)
		left.updateSize()
		return left
	}

	right.left = join(left, right.left)
	right.updateSize()
	return right
}

// parentStack represents a stack of parent treap nodes that are used during
// iteration.  It consists of a static array for holding the parents and a
// dynamic overflow slice.  It is extremely unlikely the overflow will ever be
// hit during normal operation, however, since a treap's height is
// probabilistic, the overflow case needs to be handled properly.  This approach
// is used because it is much more efficient for the majority case than
// dynamically allocating heap space every time the treap is iterated.
type parentStack[K any, P rng.Priority] struct {
	index    int
	items    [staticDepth]*treapNode[K, P]
	overflow []*treapNode[K, P]
}

// Len returns the current number of items in the stack.
func (s *parentStack[K, P]) Len() int {
	return s.index
}

// At returns the item n number of items from the top of the stack, where 0 is
// the topmost item, without removing it.  It returns nil if n exceeds the
// number of items on the stack.
func (s *parentStack[K, P]) At(n int) *treapNode[K, P] {
	index := s.index - n - 1
	if index < 0 {
		return nil
	}

	if index < staticDepth {
		return s.items[index]
	}

	return s.overflow[index-staticDepth]
}

// Pop removes the top item from the stack.  It returns nil if the stack is
// empty.
func (s *parentStack[K, P]) Pop() *treapNode[K, P] {
	if s.index == 0 {
		return nil
	}

	s.index--
	if s.index < staticDepth {
		node := s.items[s.index]
		s.items[s.index] = nil
		return node
	}

	node := s.overflow[s.index-staticDepth]
	s.overflow[s.index-staticDepth] = nil
	return node
}

// Push pushes the passed item onto the top of the stack.
func (s *parentStack[K, P]) Push(node *treapNode[K, P]) {
	if s.index < staticDepth {
		s.items[s.index] = node
		s.index++
		return
	}

	// Grow the overflow one slot at a time since the depth only exceeds
	// the static array in pathological cases.
	index := s.index - staticDepth
	if index+1 > cap(s.overflow) {
		overflow := make([]*treapNode[K, P], index+1)
		copy(overflow, s.overflow)
		s.overflow = overflow
	}
	s.overflow[index] = node
	s.index++
}
