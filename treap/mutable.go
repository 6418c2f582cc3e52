// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"cmp"

	"github.com/cvmsuite/cvm/rng"
)

// Mutable represents a treap data structure which is used to hold ordered
// keys with attached priorities using a combination of binary search tree and
// heap semantics.  It is a self-organizing and randomized data structure that
// doesn't require complex operations to maintain balance.  Search, insert, and
// delete operations are all expected O(log n).
//
// The entry with the highest priority is always at the root, so Top is O(1)
// and Pop is expected O(log n).
type Mutable[K any, P rng.Priority] struct {
	root    *treapNode[K, P]
	compare func(a, b K) int
	src     rng.Source
}

// Len returns the number of items stored in the treap.
func (t *Mutable[K, P]) Len() int {
	if t.root == nil {
		return 0
	}
	return t.root.size
}

// GeneratePriority draws a fresh priority from the treap's random source.
// Real priorities are uniform over [0, 1) and integer priorities are uniform
// over the non-negative range of the type.
func (t *Mutable[K, P]) GeneratePriority() P {
	return rng.Draw[P](t.src)
}

// get returns the treap node that contains the passed key and its parent.  When
// the found node is the root of the tree, the parent will be nil.  When the key
// does not exist, both the node and the parent will be nil.
func (t *Mutable[K, P]) get(key K) (*treapNode[K, P], *treapNode[K, P]) {
	var parent *treapNode[K, P]
	for node := t.root; node != nil; {
		// Traverse left or right depending on the result of the
		// comparison.
		compareResult := t.compare(key, node.key)
		if compareResult < 0 {
			parent = node
			node = node.left
			continue
		}
		if compareResult > 0 {
			parent = node
			node = node.right
			continue
		}

		// The key exists.
		return node, parent
	}

	// A nil node was reached which means the key does not exist.
	return nil, nil
}

// Has returns whether or not the passed key exists.
func (t *Mutable[K, P]) Has(key K) bool {
	if node, _ := t.get(key); node != nil {
		return true
	}
	return false
}

// Get returns the priority of the passed key.  The boolean is false when the
// key does not exist.
func (t *Mutable[K, P]) Get(key K) (P, bool) {
	if node, _ := t.get(key); node != nil {
		return node.priority, true
	}
	var zero P
	return zero, false
}

// relinkGrandparent relinks the node into the treap after it has been rotated
// by changing the passed grandparent's left or right pointer, depending on
// where the old parent was, to point at the passed node.  Otherwise, when there
// is no grandparent, it means the node is now the root of the tree, so update
// it accordingly.
func (t *Mutable[K, P]) relinkGrandparent(node, parent, grandparent *treapNode[K, P]) {
	// The node is now the root of the tree when there is no grandparent.
	if grandparent == nil {
		t.root = node
		return
	}

	// Relink the grandparent's left or right pointer based on which side
	// the old parent was.
	if grandparent.left == parent {
		grandparent.left = node
	} else {
		grandparent.right = node
	}
}

// Insert inserts the passed key with a priority drawn from the treap's random
// source.
func (t *Mutable[K, P]) Insert(key K) {
	t.Put(key, t.GeneratePriority())
}

// Put inserts the passed key with the given priority.
//
// Keys are unique.  When the key already exists its priority is replaced and
// the node is moved to the position the new priority requires.
func (t *Mutable[K, P]) Put(key K, priority P) {
	// The node is the root of the tree if there isn't already one.
	if t.root == nil {
		t.root = newTreapNode(key, priority)
		return
	}

	// Replacing the priority of an existing key is done by removing it
	// first so the descent below only ever deals with new keys.
	if node, _ := t.get(key); node != nil {
		if node.priority == priority {
			return
		}
		t.Delete(key)
		if t.root == nil {
			t.root = newTreapNode(key, priority)
			return
		}
	}

	// Find the binary tree insertion point and construct a list of parents
	// while doing so.  Every parent gains one descendant.
	var parents parentStack[K, P]
	var compareResult int
	for node := t.root; node != nil; {
		parents.Push(node)
		node.size++
		compareResult = t.compare(key, node.key)
		if compareResult < 0 {
			node = node.left
		} else {
			node = node.right
		}
	}

	// Link the new node into the binary tree in the correct position.
	node := newTreapNode(key, priority)
	parent := parents.At(0)
	if compareResult < 0 {
		parent.left = node
	} else {
		parent.right = node
	}

	// Perform any rotations needed to maintain the max-heap.
	for parents.Len() > 0 {
		// There is nothing left to do when the node's priority is less
		// than or equal to its parent's priority.
		parent = parents.Pop()
		if node.priority <= parent.priority {
			break
		}

		// Perform a right rotation if the node is on the left side or
		// a left rotation if the node is on the right side.
		if parent.left == node {
			//        p               n
			//       / \       ->    / \
			//      n  p.r         n.l  p
			//     / \                 / \
			//   n.l n.r             n.r p.r
			node.size += 1 + parent.rightSize()
			parent.size -= 1 + node.leftSize()
			node.right, parent.left = parent, node.right
		} else {
			node.size += 1 + parent.leftSize()
			parent.size -= 1 + node.rightSize()
			node.left, parent.right = parent, node.left
		}
		t.relinkGrandparent(node, parent, parents.At(0))
	}
}

// Delete removes the passed key if it exists.
func (t *Mutable[K, P]) Delete(key K) {
	// Find the node for the key while constructing a list of parents while
	// doing so.
	var parents parentStack[K, P]
	var node *treapNode[K, P]
	for n := t.root; n != nil; {
		compareResult := t.compare(key, n.key)
		if compareResult == 0 {
			node = n
			break
		}
		parents.Push(n)
		if compareResult < 0 {
			n = n.left
		} else {
			n = n.right
		}
	}

	// There is nothing to do if the key does not exist.
	if node == nil {
		return
	}

	// Every ancestor loses exactly one descendant.
	for i := 0; i < parents.Len(); i++ {
		parents.At(i).size--
	}
	parent := parents.At(0)

	// While the node has two children, rotate it toward the child with the
	// higher priority.  This moves the node down a level while keeping the
	// max-heap intact.  The child that moves up takes over the node's
	// subtree less the node itself.
	for node.left != nil && node.right != nil {
		var child *treapNode[K, P]
		if node.left.priority > node.right.priority {
			child = node.left
			child.right, node.left = node, child.right
		} else {
			child = node.right
			child.left, node.right = node, child.left
		}
		child.size = node.size - 1
		node.updateSize()
		t.relinkGrandparent(child, node, parent)

		// The parent for the node to delete is now what was previously
		// its child.
		parent = child
	}

	// The node has at most one child now, so splice it into its place.
	replacement := node.left
	if replacement == nil {
		replacement = node.right
	}
	t.relinkGrandparent(replacement, node, parent)
	node.left, node.right = nil, nil
}

// Top returns the key and priority of the entry with the highest priority
// without removing it.  The boolean is false when the treap is empty.
func (t *Mutable[K, P]) Top() (K, P, bool) {
	if t.root == nil {
		var key K
		var priority P
		return key, priority, false
	}
	return t.root.key, t.root.priority, true
}

// Pop removes and returns the key and priority of the entry with the highest
// priority.  The boolean is false when the treap is empty.
func (t *Mutable[K, P]) Pop() (K, P, bool) {
	root := t.root
	if root == nil {
		var key K
		var priority P
		return key, priority, false
	}

	t.root = join(root.left, root.right)
	root.left, root.right = nil, nil
	return root.key, root.priority, true
}

// ForEach invokes the passed function with every key/priority pair in the
// treap in ascending key order.  Iteration stops early when fn returns false.
func (t *Mutable[K, P]) ForEach(fn func(k K, p P) bool) {
	// Add the root node and all children to the left of it to the list of
	// nodes to traverse and loop until they, and all of their child nodes,
	// have been traversed.
	var parents parentStack[K, P]
	for node := t.root; node != nil; node = node.left {
		parents.Push(node)
	}
	for parents.Len() > 0 {
		node := parents.Pop()
		if !fn(node.key, node.priority) {
			return
		}

		// Extend the nodes to traverse by all children to the left of
		// the current node's right child.
		for node := node.right; node != nil; node = node.left {
			parents.Push(node)
		}
	}
}

// Clone returns a deep copy of the treap.  Changes to either treap are never
// visible in the other.  The copy draws its priorities from the same random
// source as the original.
func (t *Mutable[K, P]) Clone() *Mutable[K, P] {
	return &Mutable[K, P]{
		root:    cloneTree(t.root),
		compare: t.compare,
		src:     t.src,
	}
}

// Move transfers every entry to a new treap and leaves the receiver empty.
func (t *Mutable[K, P]) Move() *Mutable[K, P] {
	moved := &Mutable[K, P]{
		root:    t.root,
		compare: t.compare,
		src:     t.src,
	}
	t.root = nil
	return moved
}

// Reset efficiently removes all items in the treap.
func (t *Mutable[K, P]) Reset() {
	t.root = nil
}

// NewMutable returns a new empty mutable treap ordered by the natural order of
// its keys.  Priorities are drawn from src; a nil src selects a fresh source
// seeded from system entropy.  See the documentation for the Mutable structure
// for more details.
func NewMutable[K cmp.Ordered, P rng.Priority](src rng.Source) *Mutable[K, P] {
	return NewMutableFunc[K, P](cmp.Compare[K], src)
}

// NewMutableFunc returns a new empty mutable treap ordered by compare, which
// must return a negative number when a < b, zero when a == b and a positive
// number when a > b.
func NewMutableFunc[K any, P rng.Priority](compare func(a, b K) int, src rng.Source) *Mutable[K, P] {
	if src == nil {
		src = rng.NewEntropySource()
	}
	return &Mutable[K, P]{compare: compare, src: src}
}
