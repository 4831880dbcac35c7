package rax

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

type kind uint8

const (
	leafNode kind = iota
	branchNode
	compressedNode
)

func (k kind) String() string {
	switch k {
	case branchNode:
		return "branching"
	case compressedNode:
		return "compressed"
	default:
		return "leaf"
	}
}

// maxByte bounds child cursors; a cursor of maxByte+1 means exhausted.
const maxByte = 255

type node struct {
	kind kind

	// target is the raw refcount pointer of the word ending here, or nil.
	target unsafe.Pointer

	// count is the number of words in the subtree, this node included.
	count int
	// height is the length of the longest word suffix below this node.
	height int

	// label is the edge to the only child of a compressed node.
	label []byte
	// edges holds the child bytes of a branching node.
	edges *bitset.BitSet
	// children is ordered by edge byte for branching nodes and holds exactly
	// one entry for compressed nodes.
	children []*node
}

var (
	nodeHeaderSize   = int64(unsafe.Sizeof(node{}))
	bitsetHeaderSize = int64(unsafe.Sizeof(bitset.BitSet{}))
	pointerSize      = int64(unsafe.Sizeof(uintptr(0)))
)

// sizeOf returns the bytes accounted to n itself, excluding its children.
func sizeOf(n *node) int64 {
	size := nodeHeaderSize + int64(cap(n.label)) + int64(cap(n.children))*pointerSize
	if n.edges != nil {
		size += bitsetHeaderSize + int64(len(n.edges.Bytes()))*8
	}
	return size
}

func (n *node) isWord() bool {
	return n.target != nil
}

// child returns the child of a branching node reached by c, or nil.
func (n *node) child(c byte) *node {
	if n.edges == nil || !n.edges.Test(uint(c)) {
		return nil
	}
	return n.children[n.edges.Rank(uint(c))-1]
}

// nextChild returns the first child whose edge starts with a byte >= from.
func (n *node) nextChild(from int) (byte, *node, bool) {
	if from > maxByte {
		return 0, nil, false
	}
	switch n.kind {
	case compressedNode:
		if from <= int(n.label[0]) {
			return n.label[0], n.children[0], true
		}
	case branchNode:
		if c, ok := n.edges.NextSet(uint(from)); ok && c <= maxByte {
			return byte(c), n.children[n.edges.Rank(c)-1], true
		}
	}
	return 0, nil, false
}

// firstByte returns the smallest child byte of a branching node.
func (n *node) firstByte() byte {
	c, _ := n.edges.NextSet(0)
	return byte(c)
}

// recount refreshes count and height from the node's target and children.
func (n *node) recount() {
	count, height := 0, 0
	if n.isWord() {
		count = 1
	}
	switch n.kind {
	case compressedNode:
		c := n.children[0]
		count += c.count
		if c.count > 0 {
			height = len(n.label) + c.height
		}
	case branchNode:
		for _, c := range n.children {
			count += c.count
			if c.count > 0 && c.height+1 > height {
				height = c.height + 1
			}
		}
	}
	n.count, n.height = count, height
}

// cloneBytes copies b into a slice whose capacity equals its length.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func commonPrefixLength(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
