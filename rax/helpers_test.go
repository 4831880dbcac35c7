package rax

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/testutil"
	"github.com/hupe1980/textidx/window"
)

// payload counts its destructions and defrags.
type payload struct {
	v         int
	destroyed *atomic.Int32
	defrags   int
}

func (p *payload) Destroy() {
	if p.destroyed != nil {
		p.destroyed.Add(1)
	}
}

func (p *payload) Defrag() {
	p.defrags++
}

func set(v int) MutateFunc[int] {
	return func(old refcount.Ptr[int]) refcount.Ptr[int] {
		old.Release()
		return refcount.Make(v)
	}
}

func remove[T any]() MutateFunc[T] {
	return func(old refcount.Ptr[T]) refcount.Ptr[T] {
		old.Release()
		return refcount.Ptr[T]{}
	}
}

func identity[T any]() MutateFunc[T] {
	return func(old refcount.Ptr[T]) refcount.Ptr[T] {
		return old
	}
}

func write[T any](t *Tree[T], fn func(w *window.Write)) {
	w := window.BeginWrite()
	defer w.End()
	fn(w)
}

func insertAll(t *Tree[int], words map[string]int) {
	write(t, func(w *window.Write) {
		for word, v := range words {
			t.Mutate(w, []byte(word), set(v))
		}
	})
}

func collect[T any](tb testing.TB, t *Tree[T], prefix string) []string {
	tb.Helper()
	r := window.BeginRead()
	defer r.End()

	out := make([]string, 0)
	for it := t.WordIterator(r, []byte(prefix)); !it.Done(); it.Next() {
		out = append(out, string(it.Word()))
	}
	return out
}

// checkInvariants verifies the canonical node form and the cached counts.
func checkInvariants[T any](tb testing.TB, t *Tree[T]) {
	tb.Helper()
	var walk func(n *node, root bool) (count, height int)
	walk = func(n *node, root bool) (int, int) {
		count, height := 0, 0
		if n.isWord() {
			count = 1
		}
		switch n.kind {
		case leafNode:
			require.Empty(tb, n.children)
			require.Nil(tb, n.edges)
			if !root {
				require.True(tb, n.isWord(), "target-less leaf below the root")
			}
		case compressedNode:
			require.NotEmpty(tb, n.label, "empty compressed label")
			require.Len(tb, n.children, 1)
			child := n.children[0]
			require.False(tb, child.kind == compressedNode && !child.isWord(),
				"compressed node above target-less compressed node")
			c, h := walk(child, false)
			count += c
			height = len(n.label) + h
		case branchNode:
			require.GreaterOrEqual(tb, len(n.children), 2, "branching node with fewer than two children")
			require.Equal(tb, uint(len(n.children)), n.edges.Count())
			for _, child := range n.children {
				c, h := walk(child, false)
				count += c
				height = max(height, h+1)
			}
		}
		require.Equal(tb, count, n.count)
		require.Equal(tb, height, n.height)
		return count, height
	}
	walk(t.root, true)
}

// memoryFromScratch recomputes the accounted bytes by walking every node.
func memoryFromScratch[T any](t *Tree[T]) int64 {
	var total int64
	var walk func(n *node)
	walk = func(n *node) {
		total += sizeOf(n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return total
}

func reverse(s string) string {
	return string(testutil.Reverse([]byte(s)))
}
