package rax

import (
	"slices"
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/window"
)

// MutateFunc computes the new target of a word from its current one.
//
// old holds a fresh reference to the current target, or is nil when the word
// is absent. The function owns old: it must either return it or release it.
// The returned handle's reference is transferred to the tree; a nil handle
// deletes the word.
type MutateFunc[T any] func(old refcount.Ptr[T]) refcount.Ptr[T]

// step is one node on the path of a key, with the number of key bytes
// consumed before reaching it.
type step struct {
	n  *node
	at int
}

// Mutate applies fn to the current target of word and installs the result.
// It returns the installed value, or nil when the word is absent afterwards.
//
// fn is called exactly once and must not re-enter the tree. The previous
// target's reference is released only after the new target is installed.
// Mutating the empty word is a contract violation.
func (t *Tree[T]) Mutate(w *window.Write, word []byte, fn MutateFunc[T]) *T {
	w.CheckWrite()
	if len(word) == 0 {
		violate("Mutate", "empty word")
	}

	key := t.key(word)
	path, label := t.locate(key)
	last := path[len(path)-1]
	exact := last.at == len(key) && label == 0

	var oldRaw unsafe.Pointer
	if exact {
		oldRaw = last.n.target
	}

	next := fn(refcount.CopyRaw[T](oldRaw))

	if next.IsNil() {
		if oldRaw == nil {
			return nil
		}
		last.n.target = nil
		t.compact(key, path)
		old := refcount.AdoptRaw[T](oldRaw)
		old.Release()
		return nil
	}

	raw := next.IntoRaw()
	switch {
	case exact:
		last.n.target = raw
		if oldRaw != nil {
			old := refcount.AdoptRaw[T](oldRaw)
			old.Release()
			return refcount.ValueFromRaw[T](raw)
		}
	case last.n.kind == leafNode:
		t.extendLeaf(last.n, key[last.at:], raw)
	case last.n.kind == branchNode:
		t.addChild(last.n, key[last.at], t.newPath(key[last.at+1:], raw))
	default:
		t.splitCompressed(last.n, key[last.at:], label, raw)
	}

	for i := len(path) - 1; i >= 0; i-- {
		path[i].n.recount()
	}
	return refcount.ValueFromRaw[T](raw)
}

// locate walks key from the root. It returns every node visited and, when the
// walk stopped inside the label of the last node, how many label bytes
// matched.
func (t *Tree[T]) locate(key []byte) ([]step, int) {
	path := make([]step, 0, 8)
	n := t.root
	i := 0
	for {
		path = append(path, step{n: n, at: i})
		if i == len(key) {
			return path, 0
		}
		switch n.kind {
		case compressedNode:
			m := commonPrefixLength(n.label, key[i:])
			if m < len(n.label) {
				return path, m
			}
			i += m
			n = n.children[0]
		case branchNode:
			c := n.child(key[i])
			if c == nil {
				return path, 0
			}
			i++
			n = c
		default:
			return path, 0
		}
	}
}

func (t *Tree[T]) newLeaf(raw unsafe.Pointer) *node {
	n := &node{kind: leafNode, target: raw}
	n.recount()
	t.memory.Add(sizeOf(n))
	return n
}

// newPath builds the nodes for the remainder of a key below a new edge.
func (t *Tree[T]) newPath(rest []byte, raw unsafe.Pointer) *node {
	leaf := t.newLeaf(raw)
	if len(rest) == 0 {
		return leaf
	}
	return t.newCompressed(rest, leaf, nil)
}

func (t *Tree[T]) newCompressed(label []byte, child *node, raw unsafe.Pointer) *node {
	n := &node{
		kind:     compressedNode,
		target:   raw,
		label:    cloneBytes(label),
		children: []*node{child},
	}
	n.recount()
	t.memory.Add(sizeOf(n))
	return n
}

// makeBranch turns n into a branching node over two children, keeping its
// target.
func makeBranch(n *node, a byte, na *node, b byte, nb *node) {
	if b < a {
		a, b = b, a
		na, nb = nb, na
	}
	n.kind = branchNode
	n.label = nil
	n.edges = bitset.New(maxByte + 1)
	n.edges.Set(uint(a)).Set(uint(b))
	n.children = []*node{na, nb}
}

// extendLeaf hangs a compressed edge below a leaf, turning it into a
// compressed node.
func (t *Tree[T]) extendLeaf(n *node, rest []byte, raw unsafe.Pointer) {
	before := sizeOf(n)
	n.kind = compressedNode
	n.label = cloneBytes(rest)
	n.children = []*node{t.newLeaf(raw)}
	t.memory.Add(sizeOf(n) - before)
}

func (t *Tree[T]) addChild(n *node, c byte, child *node) {
	before := sizeOf(n)
	pos := int(n.edges.Rank(uint(c)))
	n.edges.Set(uint(c))
	n.children = slices.Insert(n.children, pos, child)
	t.memory.Add(sizeOf(n) - before)
}

// splitCompressed inserts a word whose remaining key rest matches only the
// first m bytes of n's label.
func (t *Tree[T]) splitCompressed(n *node, rest []byte, m int, raw unsafe.Pointer) {
	before := sizeOf(n)
	label, child := n.label, n.children[0]

	if m == len(rest) {
		// The word ends inside the label: the split point holds the target
		// and keeps the rest of the label.
		n.label = cloneBytes(label[:m])
		n.children[0] = t.newCompressed(label[m:], child, raw)
		t.memory.Add(sizeOf(n) - before)
		return
	}

	tail := child
	if m+1 < len(label) {
		tail = t.newCompressed(label[m+1:], child, nil)
	}
	fresh := t.newPath(rest[m+1:], raw)

	if m == 0 {
		makeBranch(n, label[0], tail, rest[0], fresh)
		t.memory.Add(sizeOf(n) - before)
		return
	}

	split := &node{}
	makeBranch(split, label[m], tail, rest[m], fresh)
	split.recount()
	t.memory.Add(sizeOf(split))

	n.label = cloneBytes(label[:m])
	n.children[0] = split
	t.memory.Add(sizeOf(n) - before)
}

// compact restores the canonical form along path after the target of its
// last node was removed. It unlinks target-less leaves, turns single-child
// branching nodes into compressed nodes and merges compressed chains.
func (t *Tree[T]) compact(key []byte, path []step) {
	var drop *node
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i].n
		before := sizeOf(n)

		if drop != nil {
			t.unlink(n, key[path[i].at])
			drop = nil
		}
		t.normalize(n)
		n.recount()
		t.memory.Add(sizeOf(n) - before)

		if i > 0 && n.kind == leafNode && !n.isWord() {
			drop = n
		}
	}
}

// unlink removes the child of n reached by c and releases its accounting.
func (t *Tree[T]) unlink(n *node, c byte) {
	var gone *node
	switch n.kind {
	case compressedNode:
		gone = n.children[0]
		n.kind = leafNode
		n.label = nil
		n.children = nil
	case branchNode:
		pos := int(n.edges.Rank(uint(c))) - 1
		gone = n.children[pos]
		n.edges.Clear(uint(c))
		n.children = slices.Delete(n.children, pos, pos+1)
	}
	if gone != nil {
		t.memory.Add(-sizeOf(gone))
	}
}

func (t *Tree[T]) normalize(n *node) {
	if n.kind == branchNode && len(n.children) == 1 {
		c := n.firstByte()
		n.kind = compressedNode
		n.edges = nil
		n.label = []byte{c}
	}
	if n.kind != compressedNode {
		return
	}
	child := n.children[0]
	if child.kind == compressedNode && !child.isWord() {
		merged := make([]byte, 0, len(n.label)+len(child.label))
		merged = append(merged, n.label...)
		merged = append(merged, child.label...)
		n.label = merged
		n.children[0] = child.children[0]
		t.memory.Add(-sizeOf(child))
	}
}
