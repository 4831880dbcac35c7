package rax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DebugTreeStrings returns one line per node describing the tree structure.
// Keys are shown in internal order, so suffix trees show reversed labels.
func (t *Tree[T]) DebugTreeStrings() []string {
	lines := make([]string, 0, 16)
	lines = append(lines, fmt.Sprintf("tree words=%d longest=%d memory=%d suffix=%t",
		t.root.count, t.root.height, t.memory.Load(), t.suffix))
	t.debugNode(&lines, t.root, "", 1)
	return lines
}

// DebugPrintTree writes DebugTreeStrings to out, preceded by label when it is
// not empty.
func (t *Tree[T]) DebugPrintTree(out io.Writer, label string) {
	if label != "" {
		fmt.Fprintf(out, "=== %s ===\n", label)
	}
	for _, line := range t.DebugTreeStrings() {
		fmt.Fprintln(out, line)
	}
}

func (t *Tree[T]) debugNode(lines *[]string, n *node, edge string, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	if edge != "" {
		b.WriteString(edge)
		b.WriteString(" -> ")
	}
	b.WriteByte('[')
	b.WriteString(n.kind.String())
	if n.kind == compressedNode {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(string(n.label)))
	}
	b.WriteByte(']')
	if n.isWord() {
		b.WriteString(" +word")
	}
	fmt.Fprintf(&b, " count=%d height=%d", n.count, n.height)
	*lines = append(*lines, b.String())

	switch n.kind {
	case compressedNode:
		t.debugNode(lines, n.children[0], strconv.Quote(string(n.label)), depth+1)
	case branchNode:
		for c, ok := n.edges.NextSet(0); ok && c <= maxByte; c, ok = n.edges.NextSet(c + 1) {
			t.debugNode(lines, n.children[n.edges.Rank(c)-1], strconv.Quote(string([]byte{byte(c)})), depth+1)
		}
	}
}
