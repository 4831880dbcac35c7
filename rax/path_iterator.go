package rax

import (
	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/window"
)

// Defragger is implemented by target values that can compact their own
// storage. PathIterator.Defrag calls it for the word at the iterator's
// position.
type Defragger interface {
	Defrag()
}

// PathIterator enumerates, in ascending order, the distinct next bytes
// available after a path, one tree level at a time. It lets a caller such as
// an edit-distance matcher decide per byte whether to descend into a subtree
// or prune it.
//
// Multi-byte compressed labels are presented as chains of single-byte steps.
type PathIterator[T any] struct {
	tree *Tree[T]
	r    window.Reader
	n    *node
	// off is the number of n's label bytes already consumed; zero at a node
	// boundary.
	off  int
	path []byte
	// sel is the selected byte, maxByte+1 when exhausted.
	sel   int
	valid bool
}

// PathIterator returns an iterator positioned after prefix. If no word
// starts with prefix the iterator is done and IsWord is false.
func (t *Tree[T]) PathIterator(r window.Reader, prefix []byte) *PathIterator[T] {
	r.CheckRead()
	key := cloneBytes(t.key(prefix))
	it := &PathIterator[T]{
		tree: t,
		r:    r,
		path: key,
		sel:  maxByte + 1,
	}
	if n, off, ok := t.position(key); ok && n.count > 0 {
		it.n, it.off, it.valid = n, off, true
		it.sel = it.nextByte(0)
	}
	return it
}

// Done reports whether no further byte remains at this level.
func (it *PathIterator[T]) Done() bool {
	it.r.CheckRead()
	return it.sel > maxByte
}

// IsWord reports whether the path consumed so far is a stored word.
func (it *PathIterator[T]) IsWord() bool {
	it.r.CheckRead()
	return it.valid && it.off == 0 && it.n.isWord()
}

// Next selects the next larger available byte.
func (it *PathIterator[T]) Next() {
	it.r.CheckRead()
	if it.sel > maxByte {
		return
	}
	it.sel = it.nextByte(it.sel + 1)
}

// SeekForward selects the smallest available byte >= c, never moving
// backwards. It reports whether c itself is available and selected.
func (it *PathIterator[T]) SeekForward(c byte) bool {
	it.r.CheckRead()
	if it.sel > maxByte {
		return false
	}
	if int(c) > it.sel {
		it.sel = it.nextByte(int(c))
	}
	return it.sel == int(c)
}

// Byte returns the selected byte.
func (it *PathIterator[T]) Byte() byte {
	it.r.CheckRead()
	if it.sel > maxByte {
		violate("PathIterator.Byte", "iterator is done")
	}
	return byte(it.sel)
}

// CanDescend reports whether the selected byte leads into a subtree.
func (it *PathIterator[T]) CanDescend() bool {
	it.r.CheckRead()
	return it.sel <= maxByte
}

// DescendNew returns an iterator one level deeper, consuming the selected
// byte. The receiver is unchanged.
func (it *PathIterator[T]) DescendNew() *PathIterator[T] {
	if !it.CanDescend() {
		violate("PathIterator.DescendNew", "no byte to descend into")
	}
	c := byte(it.sel)

	path := make([]byte, len(it.path)+1, len(it.path)+1+it.n.height)
	copy(path, it.path)
	path[len(it.path)] = c

	next := &PathIterator[T]{
		tree:  it.tree,
		r:     it.r,
		path:  path,
		valid: true,
	}
	switch it.n.kind {
	case compressedNode:
		if it.off+1 < len(it.n.label) {
			next.n, next.off = it.n, it.off+1
		} else {
			next.n = it.n.children[0]
		}
	default:
		next.n = it.n.child(c)
	}
	next.sel = next.nextByte(0)
	return next
}

// Path returns the bytes from the root to the current position, that is the
// originating prefix followed by every descended byte. The slice must not be
// modified.
func (it *PathIterator[T]) Path() []byte {
	it.r.CheckRead()
	if it.tree.suffix {
		return reversed(it.path)
	}
	return it.path
}

// Target returns the value of the word at the current position.
func (it *PathIterator[T]) Target() *T {
	if !it.IsWord() {
		violate("PathIterator.Target", "no word at this position")
	}
	return refcount.ValueFromRaw[T](it.n.target)
}

// TargetRef returns a new reference to the target at the current position.
// The caller must release it.
func (it *PathIterator[T]) TargetRef() refcount.Ptr[T] {
	if !it.IsWord() {
		violate("PathIterator.TargetRef", "no word at this position")
	}
	return refcount.CopyRaw[T](it.n.target)
}

// WordCount returns the number of words at or below the current position.
func (it *PathIterator[T]) WordCount() int {
	it.r.CheckRead()
	if !it.valid {
		return 0
	}
	if it.off > 0 {
		return it.n.children[0].count
	}
	return it.n.count
}

// Defrag compacts the storage of the current node and, when the position is
// a word whose value implements Defragger, the value's storage as well.
//
// It changes no structure, so live iterators stay valid, but it writes to
// shared nodes and therefore requires the write window.
func (it *PathIterator[T]) Defrag(w *window.Write) {
	w.CheckWrite()
	if !it.valid {
		return
	}
	it.tree.defragNode(it.n)
	if it.off == 0 && it.n.isWord() {
		if d, ok := any(refcount.ValueFromRaw[T](it.n.target)).(Defragger); ok {
			d.Defrag()
		}
	}
}

// DefragNode compacts the storage of the current node only. It is Defrag
// for trees whose targets are also held, and compacted, elsewhere.
func (it *PathIterator[T]) DefragNode(w *window.Write) {
	w.CheckWrite()
	if !it.valid {
		return
	}
	it.tree.defragNode(it.n)
}

func (it *PathIterator[T]) nextByte(from int) int {
	if from > maxByte {
		return maxByte + 1
	}
	n := it.n
	switch n.kind {
	case compressedNode:
		if c := int(n.label[it.off]); from <= c {
			return c
		}
	case branchNode:
		if c, ok := n.edges.NextSet(uint(from)); ok && c <= maxByte {
			return int(c)
		}
	}
	return maxByte + 1
}

// defragNode reallocates n's label, child slice and edge set at their exact
// sizes.
func (t *Tree[T]) defragNode(n *node) {
	before := sizeOf(n)
	if n.label != nil {
		n.label = cloneBytes(n.label)
	}
	if n.children != nil {
		children := make([]*node, len(n.children))
		copy(children, n.children)
		n.children = children
	}
	if n.edges != nil {
		n.edges.Compact()
	}
	t.memory.Add(sizeOf(n) - before)
}
