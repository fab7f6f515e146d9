// Package triepath implements the AtomTrie (PathMap): a
// byte-path trie mapping a canonical atom-serialization prefix to an
// optional unit value, with structural sharing on clone and read/write
// "zipper" cursors that descend and ascend path segments.
//
// Nodes are immutable once published; a clone is an O(1) pointer copy of
// the root, and a write cursor copies only the nodes along the path it
// mutates before swapping the new root in.
package triepath

import "sync"

// node is an immutable trie node. A zero-value node is a valid empty leaf.
type node struct {
	children map[byte]*node
	hasValue bool
}

func emptyNode() *node { return &node{} }

// clone returns a shallow copy of n suitable for mutating in place — the
// children map is copied (so the original node's map is untouched) but the
// child pointers themselves are shared until something beneath them is
// written.
func (n *node) clone() *node {
	cp := &node{hasValue: n.hasValue}
	if len(n.children) > 0 {
		cp.children = make(map[byte]*node, len(n.children))
		for k, v := range n.children {
			cp.children[k] = v
		}
	}
	return cp
}

func (n *node) child(b byte) (*node, bool) {
	c, ok := n.children[b]
	return c, ok
}

// Trie is the shared-mutable atom space storage: a single reader-writer
// lock guards only the root pointer. Readers
// only hold the lock long enough to snapshot the root; all traversal
// happens lock-free against that immutable snapshot.
type Trie struct {
	mu   sync.RWMutex
	root *node
}

func New() *Trie {
	return &Trie{root: emptyNode()}
}

// Clone returns a new Trie sharing the current root — an O(1) reference
// bump. The clone and the original diverge only once one of them opens a
// WriteCursor and commits a mutation.
func (t *Trie) Clone() *Trie {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Trie{root: t.root}
}

func (t *Trie) snapshot() *node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

func (t *Trie) swapRoot(newRoot *node) {
	t.mu.Lock()
	t.root = newRoot
	t.mu.Unlock()
}

// Reader opens a read cursor positioned at the trie's root.
func (t *Trie) Reader() *ReadCursor {
	return &ReadCursor{cur: t.snapshot()}
}

// Writer opens a write cursor positioned at the trie's root. Mutations
// performed through the cursor are only visible to the Trie once Commit is
// called. The root is cloned eagerly so every subsequent DescendTo only
// needs to clone the nodes it actually passes through.
func (t *Trie) Writer() *WriteCursor {
	newRoot := t.snapshot().clone()
	return &WriteCursor{trie: t, root: newRoot, cur: newRoot}
}

// Has reports whether path has a stored value, without mutating the trie.
func (t *Trie) Has(path []byte) bool {
	r := t.Reader()
	return r.DescendToCheck(path) && r.Value()
}

// ReadCursor is a read-only zipper: it descends path segments without
// creating them and can iterate every value reachable beneath its current
// position.
type ReadCursor struct {
	cur  *node
	path []frame
	iter *iterState
}

type frame struct {
	n    *node
	edge byte
}

// DescendToCheck attempts to follow every byte of path from the current
// position. It succeeds (and leaves the cursor at the destination) only if
// every intermediate edge exists; on failure the cursor is left unchanged.
func (c *ReadCursor) DescendToCheck(path []byte) bool {
	cur := c.cur
	var pushed []frame
	for _, b := range path {
		next, ok := cur.child(b)
		if !ok {
			return false
		}
		pushed = append(pushed, frame{n: cur, edge: b})
		cur = next
	}
	c.cur = cur
	c.path = append(c.path, pushed...)
	return true
}

// Value reports whether the current position stores a value.
func (c *ReadCursor) Value() bool {
	return c.cur.hasValue
}

// Ascend moves the cursor up one edge previously descended. Reports false
// if already at the cursor's starting position.
func (c *ReadCursor) Ascend() bool {
	if len(c.path) == 0 {
		return false
	}
	last := c.path[len(c.path)-1]
	c.path = c.path[:len(c.path)-1]
	c.cur = last.n
	return true
}

// iterState is lazily built by ToNextValue to walk every value-bearing node
// beneath the position DescendToCheck last landed on, in pre-order. It also
// tracks the byte path taken from that starting position so callers (e.g.
// the environment's get-atoms) can recover the full trie key of whatever
// value ToNextValue lands on, via ReadCursor.Path.
type iterState struct {
	stack []iterFrame
	path  []byte
}

type iterFrame struct {
	n         *node
	keys      []byte
	idx       int
	beforeLen int // len(path) before this frame's own edge was appended
}

// ToNextValue advances to the next node beneath the cursor's current
// position (inclusive of the position itself on the first call) that has a
// stored value, in a deterministic pre-order walk. Returns false once the
// subtree is exhausted. Ascend/DescendToCheck during iteration is
// unsupported — callers that need both should open a second cursor.
func (c *ReadCursor) ToNextValue() bool {
	if c.iter == nil {
		c.iter = &iterState{}
		c.iter.push(c.cur, 0, false)
		// The starting node itself is a candidate.
		if c.cur.hasValue {
			return true
		}
	}
	for {
		next, ok := c.iter.next()
		if !ok {
			return false
		}
		c.cur = next
		if next.hasValue {
			return true
		}
	}
}

// Path returns the byte path, relative to wherever ToNextValue's iteration
// started, of the cursor's current position. Only meaningful once
// ToNextValue has been called at least once.
func (c *ReadCursor) Path() []byte {
	if c.iter == nil {
		return nil
	}
	return append([]byte(nil), c.iter.path...)
}

func (s *iterState) push(n *node, edge byte, hasEdge bool) {
	beforeLen := len(s.path)
	if hasEdge {
		s.path = append(s.path, edge)
	}
	keys := make([]byte, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sortBytes(keys)
	s.stack = append(s.stack, iterFrame{n: n, keys: keys, beforeLen: beforeLen})
}

func (s *iterState) next() (*node, bool) {
	for len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.idx >= len(top.keys) {
			s.path = s.path[:top.beforeLen]
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}
		edge := top.keys[top.idx]
		top.idx++
		child := top.n.children[edge]
		s.push(child, edge, true)
		return child, true
	}
	return nil, false
}

func sortBytes(b []byte) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j-1] > b[j]; j-- {
			b[j-1], b[j] = b[j], b[j-1]
		}
	}
}

// WriteCursor is a zipper that creates missing path segments as it
// descends and stages set/delete mutations. Nothing is visible through the
// owning Trie until Commit is called; this lets a caller build up several
// writes and publish them as one root swap.
type WriteCursor struct {
	trie *Trie
	root *node // the (already-cloned) new root; swapped in on Commit
	cur  *node
}

// DescendTo follows path from the current position, cloning and creating
// any node along the way that is shared or absent. Every cloned node is
// wired into its (already-cloned) parent immediately, so c.root always
// reaches c.cur through freshly-owned nodes.
func (c *WriteCursor) DescendTo(path []byte) {
	cur := c.cur
	for _, b := range path {
		next, ok := cur.child(b)
		if ok {
			next = next.clone()
		} else {
			next = emptyNode()
		}
		if cur.children == nil {
			cur.children = make(map[byte]*node)
		}
		cur.children[b] = next
		cur = next
	}
	c.cur = cur
}

// SetValue marks the current position as holding a value.
func (c *WriteCursor) SetValue() {
	c.cur.hasValue = true
}

// DeleteValue clears the value at the current position. It does not prune
// now-empty subtrees; callers that care about reclaiming dead paths should
// do so at a higher level (the environment's multiplicity map already
// tracks when a fact's count reaches zero).
func (c *WriteCursor) DeleteValue() {
	c.cur.hasValue = false
}

// RestrictToSubtree materializes the subtree rooted at the cursor's current
// position as its own independent Trie — used to build the lazily
// materialized type subtrie.
func (c *WriteCursor) RestrictToSubtree() *Trie {
	return &Trie{root: c.cur}
}

// Commit publishes every mutation made through this cursor by swapping the
// owning Trie's root. Must be called at most once per cursor.
func (c *WriteCursor) Commit() {
	c.trie.swapRoot(c.root)
}
