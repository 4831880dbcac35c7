package rax

import (
	"sync/atomic"

	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/window"
)

type options struct {
	suffix bool
}

// Option configures a Tree at construction.
type Option func(*options)

// WithSuffixMode builds a suffix tree: every word is reversed before it is
// used as a key. Callers keep passing words in their original order.
func WithSuffixMode() Option {
	return func(o *options) {
		o.suffix = true
	}
}

// Tree is a compressed radix tree from words to refcount.Ptr[T] targets.
//
// The zero value is not usable; call New.
type Tree[T any] struct {
	root   *node
	suffix bool
	memory atomic.Int64
}

// New creates an empty tree.
func New[T any](opts ...Option) *Tree[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tree[T]{
		root:   &node{kind: leafNode},
		suffix: o.suffix,
	}
	t.memory.Store(sizeOf(t.root))
	return t
}

// SuffixMode reports whether words are reversed internally.
func (t *Tree[T]) SuffixMode() bool {
	return t.suffix
}

// TotalWordCount returns the number of words in the tree in O(1).
func (t *Tree[T]) TotalWordCount() int {
	return t.root.count
}

// Len is TotalWordCount.
func (t *Tree[T]) Len() int {
	return t.root.count
}

// WordCount returns the number of words that start with prefix in
// O(len(prefix)). In suffix mode it counts words that end with prefix.
func (t *Tree[T]) WordCount(prefix []byte) int {
	n, off, ok := t.position(t.key(prefix))
	if !ok {
		return 0
	}
	if off > 0 {
		// Inside a label every word below extends the prefix; the node's own
		// word is shorter than the prefix.
		return n.children[0].count
	}
	return n.count
}

// LongestWord returns the length in bytes of the longest word in the tree.
func (t *Tree[T]) LongestWord() int {
	return t.root.height
}

// MemoryUsage returns the bytes accounted to node storage. Targets are not
// included.
func (t *Tree[T]) MemoryUsage() int64 {
	return t.memory.Load()
}

// Lookup returns the target stored for word, or nil. The pointer stays valid
// while the caller's window is open.
func (t *Tree[T]) Lookup(r window.Reader, word []byte) *T {
	r.CheckRead()
	key := t.key(word)
	n, off, ok := t.position(key)
	if !ok || off > 0 || !n.isWord() {
		return nil
	}
	return refcount.ValueFromRaw[T](n.target)
}

// key maps a caller's word to the internal key.
func (t *Tree[T]) key(word []byte) []byte {
	if !t.suffix {
		return word
	}
	return reversed(word)
}

// position walks key and returns the node it ends at together with the
// number of label bytes consumed when it ends inside a compressed label.
func (t *Tree[T]) position(key []byte) (*node, int, bool) {
	n := t.root
	for i := 0; ; {
		if i == len(key) {
			return n, 0, true
		}
		switch n.kind {
		case compressedNode:
			m := commonPrefixLength(n.label, key[i:])
			if m == len(n.label) {
				i += m
				n = n.children[0]
				continue
			}
			if i+m == len(key) {
				return n, m, true
			}
			return nil, 0, false
		case branchNode:
			c := n.child(key[i])
			if c == nil {
				return nil, 0, false
			}
			i++
			n = c
		default:
			return nil, 0, false
		}
	}
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
