// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package treap implements a treap data structure that is used to hold ordered
keys, each carrying a random priority, using a combination of binary search
tree and heap semantics.  It is a self-organizing and randomized data
structure that doesn't require complex operations to maintain balance.
Search, insert, and delete operations are all expected O(log n).

Keys are kept in binary search tree order and priorities in max-heap order,
so the root always holds the entry with the highest priority.  Every node
also caches the number of entries in its subtree, which makes Len O(1) and
lets the treap double as a bounded priority sample.

Priorities are normally drawn by the treap itself from the rng.Source it was
created with.  The randomness of those draws is what keeps the tree balanced,
so a source must never be shared between goroutines or reused in a way that
makes draws depend on earlier tree state.

A Mutable treap is not safe for concurrent access.
*/
package treap
