package rax

import (
	"bytes"

	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/window"
)

// frame is a node on the iterator's descent stack.
type frame struct {
	n *node
	// at is the key length on arrival at n.
	at int
	// next is the lowest child byte not yet visited; maxByte+1 when the
	// node's children are exhausted.
	next int
}

// WordIterator walks the words sharing a prefix in ascending byte order.
//
// The tree must not be mutated while the iterator is in use. The iterator
// panics if the window it was created in has ended.
type WordIterator[T any] struct {
	tree   *Tree[T]
	r      window.Reader
	prefix []byte
	key    []byte
	stack  []frame
	cur    *node
	done   bool
	word   []byte
}

// WordIterator returns an iterator positioned at the smallest word that
// starts with prefix. An empty prefix iterates the whole tree.
func (t *Tree[T]) WordIterator(r window.Reader, prefix []byte) *WordIterator[T] {
	r.CheckRead()
	it := &WordIterator[T]{
		tree:   t,
		r:      r,
		prefix: cloneBytes(t.key(prefix)),
		key:    make([]byte, 0, t.root.height),
		stack:  make([]frame, 0, 16),
	}
	it.seek(it.prefix)
	it.checkPrefix()
	return it
}

// Done reports whether the iterator has moved past the last matching word.
func (it *WordIterator[T]) Done() bool {
	it.r.CheckRead()
	return it.done
}

// Next advances to the next word in lexical order.
func (it *WordIterator[T]) Next() {
	it.r.CheckRead()
	if it.done {
		return
	}
	it.advance()
	it.checkPrefix()
}

// SeekForward moves to the first word >= word. It never moves backwards.
// If word does not start with the iterator's prefix the iterator becomes
// done. It reports whether the landing word equals word.
func (it *WordIterator[T]) SeekForward(word []byte) bool {
	it.r.CheckRead()
	if it.done {
		return false
	}
	target := it.tree.key(word)
	if !bytes.HasPrefix(target, it.prefix) {
		it.done = true
		return false
	}
	if cmp := bytes.Compare(target, it.key); cmp <= 0 {
		return cmp == 0
	}
	it.seek(target)
	it.checkPrefix()
	return !it.done && bytes.Equal(it.key, target)
}

// Word returns the current word. The slice is only valid until the iterator
// moves.
func (it *WordIterator[T]) Word() []byte {
	it.mustCurrent("Word")
	if !it.tree.suffix {
		return it.key
	}
	it.word = it.word[:0]
	for i := len(it.key) - 1; i >= 0; i-- {
		it.word = append(it.word, it.key[i])
	}
	return it.word
}

// Target returns the current word's value. The pointer stays valid while the
// window is open.
func (it *WordIterator[T]) Target() *T {
	it.mustCurrent("Target")
	return refcount.ValueFromRaw[T](it.cur.target)
}

// TargetRef returns a new reference to the current word's target. The caller
// must release it.
func (it *WordIterator[T]) TargetRef() refcount.Ptr[T] {
	it.mustCurrent("TargetRef")
	return refcount.CopyRaw[T](it.cur.target)
}

func (it *WordIterator[T]) mustCurrent(op string) {
	it.r.CheckRead()
	if it.done {
		violate("WordIterator."+op, "iterator is done")
	}
}

func (it *WordIterator[T]) checkPrefix() {
	if it.cur == nil || !bytes.HasPrefix(it.key, it.prefix) {
		it.done = true
		it.cur = nil
	}
}

// advance moves to the next node carrying a word, depth first, visiting a
// node's own word before its children.
func (it *WordIterator[T]) advance() {
	for len(it.stack) > 0 {
		top := len(it.stack) - 1
		f := it.stack[top]
		c, child, ok := f.n.nextChild(f.next)
		if !ok {
			it.stack = it.stack[:top]
			continue
		}
		it.stack[top].next = int(c) + 1

		if f.n.kind == compressedNode {
			it.key = append(it.key[:f.at], f.n.label...)
		} else {
			it.key = append(it.key[:f.at], c)
		}
		it.stack = append(it.stack, frame{n: child, at: len(it.key)})
		if child.isWord() {
			it.cur = child
			return
		}
	}
	it.cur = nil
}

// seek positions the iterator at the smallest word >= target.
func (it *WordIterator[T]) seek(target []byte) {
	it.stack = it.stack[:0]
	it.key = it.key[:0]
	it.cur = nil

	n := it.tree.root
	for {
		at := len(it.key)
		if at == len(target) {
			it.stack = append(it.stack, frame{n: n, at: at})
			if n.isWord() {
				it.cur = n
				return
			}
			it.advance()
			return
		}

		switch n.kind {
		case compressedNode:
			m := commonPrefixLength(n.label, target[at:])
			if m == len(n.label) {
				it.stack = append(it.stack, frame{n: n, at: at, next: maxByte + 1})
				it.key = append(it.key, n.label...)
				n = n.children[0]
				continue
			}
			next := maxByte + 1
			if at+m == len(target) || n.label[m] > target[at+m] {
				// Everything below the label sorts after target.
				next = 0
			}
			it.stack = append(it.stack, frame{n: n, at: at, next: next})
		case branchNode:
			c := target[at]
			if child := n.child(c); child != nil {
				it.stack = append(it.stack, frame{n: n, at: at, next: int(c) + 1})
				it.key = append(it.key, c)
				n = child
				continue
			}
			it.stack = append(it.stack, frame{n: n, at: at, next: int(c)})
		default:
			it.stack = append(it.stack, frame{n: n, at: at, next: maxByte + 1})
		}
		it.advance()
		return
	}
}
