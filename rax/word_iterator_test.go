package rax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/textidx/testutil"
	"github.com/hupe1980/textidx/window"
)

func fruitTree() *Tree[int] {
	tree := New[int]()
	insertAll(tree, map[string]int{"apple": 1, "app": 2, "application": 3, "banana": 4, "band": 5, "bandana": 6})
	return tree
}

func TestWordIterator_SeekForward(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	defer r.End()

	it := tree.WordIterator(r, nil)
	require.False(t, it.Done())
	assert.Equal(t, "app", string(it.Word()))

	assert.False(t, it.SeekForward([]byte("b")))
	assert.Equal(t, "banana", string(it.Word()))

	assert.True(t, it.SeekForward([]byte("band")))
	assert.Equal(t, "band", string(it.Word()))
	assert.Equal(t, 5, *it.Target())

	// Seeking backwards leaves the position unchanged.
	assert.False(t, it.SeekForward([]byte("apple")))
	assert.Equal(t, "band", string(it.Word()))
	assert.True(t, it.SeekForward([]byte("band")))

	assert.False(t, it.SeekForward([]byte("bandanas")))
	assert.True(t, it.Done())
}

func TestWordIterator_SeekForwardWithinPrefix(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	defer r.End()

	it := tree.WordIterator(r, []byte("app"))
	assert.False(t, it.SeekForward([]byte("appli")))
	assert.Equal(t, "application", string(it.Word()))

	it.Next()
	assert.True(t, it.Done())

	it = tree.WordIterator(r, []byte("app"))
	assert.False(t, it.SeekForward([]byte("band")))
	assert.True(t, it.Done())
}

func TestWordIterator_SeekMatchesReference(t *testing.T) {
	rng := testutil.NewRNG(5)
	words := rng.Words(300, "abcd", 7)
	ref := testutil.NewWordSet(words...)
	tree := New[int]()
	write(tree, func(w *window.Write) {
		for i, word := range words {
			tree.Mutate(w, []byte(word), set(i))
		}
	})
	sorted := ref.Sorted()

	r := window.BeginRead()
	defer r.End()
	for i := 0; i < 100; i++ {
		target := rng.Word("abcd", 7)
		it := tree.WordIterator(r, nil)
		exact := it.SeekForward([]byte(target))

		want := ""
		for _, w := range sorted {
			if w >= target {
				want = w
				break
			}
		}
		if want == "" {
			assert.True(t, it.Done(), target)
			continue
		}
		require.False(t, it.Done(), target)
		assert.Equal(t, want, string(it.Word()), target)
		assert.Equal(t, want == target, exact, target)
	}
}

func TestWordIterator_EmptyTree(t *testing.T) {
	tree := New[int]()
	r := window.BeginRead()
	defer r.End()

	it := tree.WordIterator(r, nil)
	assert.True(t, it.Done())
	assert.False(t, it.SeekForward([]byte("a")))
	it.Next()
	assert.True(t, it.Done())
}

func TestWordIterator_MissingPrefix(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	defer r.End()

	for _, p := range []string{"c", "apples", "bandanas", "ba\x00", "aa"} {
		assert.True(t, tree.WordIterator(r, []byte(p)).Done(), p)
	}
	assert.Equal(t, []string{"band", "bandana"}, collect(t, tree, "band"))
	assert.Equal(t, []string{"banana", "band", "bandana"}, collect(t, tree, "ban"))
}

func TestWordIterator_DonePanics(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	defer r.End()

	it := tree.WordIterator(r, []byte("zzz"))
	require.True(t, it.Done())

	assert.PanicsWithError(t, "rax: WordIterator.Word: iterator is done", func() {
		it.Word()
	})
	assert.PanicsWithError(t, "rax: WordIterator.Target: iterator is done", func() {
		it.Target()
	})
	assert.Panics(t, func() {
		it.TargetRef()
	})
}

func TestWordIterator_StaleWindowPanics(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	it := tree.WordIterator(r, nil)
	r.End()

	assert.PanicsWithError(t, "window: read token used after its window ended", func() {
		it.Next()
	})
	assert.Panics(t, func() {
		it.Done()
	})
}

func TestWordIterator_TargetRef(t *testing.T) {
	tree := fruitTree()
	r := window.BeginRead()
	defer r.End()

	it := tree.WordIterator(r, []byte("band"))
	ref := it.TargetRef()
	defer ref.Release()

	assert.Equal(t, 5, *ref.Get())
	assert.Equal(t, uint32(2), ref.RefCount())
}

func TestWordIterator_ConcurrentReaders(t *testing.T) {
	rng := testutil.NewRNG(9)
	words := rng.Words(1000, "abcdef", 10)
	ref := testutil.NewWordSet(words...)
	tree := New[int]()
	write(tree, func(w *window.Write) {
		for i, word := range words {
			tree.Mutate(w, []byte(word), set(i))
		}
	})
	sorted := ref.Sorted()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		prefix := string("abcdef"[i%6])
		g.Go(func() error {
			r := window.BeginRead()
			defer r.End()

			got := make([]string, 0)
			for it := tree.WordIterator(r, []byte(prefix)); !it.Done(); it.Next() {
				got = append(got, string(it.Word()))
			}
			assert.Equal(t, ref.WithPrefix(prefix), got)

			for _, word := range sorted {
				v, _ := ref.Get(word)
				assert.Equal(t, v, *tree.Lookup(r, []byte(word)))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
