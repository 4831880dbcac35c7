package rax

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/testutil"
	"github.com/hupe1980/textidx/window"
)

func TestTree_Scenario(t *testing.T) {
	tree := New[int]()
	insertAll(tree, map[string]int{"apple": 1, "app": 2, "application": 3})
	checkInvariants(t, tree)

	r := window.BeginRead()
	var words []string
	var values []int
	for it := tree.WordIterator(r, []byte("app")); !it.Done(); it.Next() {
		words = append(words, string(it.Word()))
		values = append(values, *it.Target())
	}
	r.End()

	assert.Equal(t, []string{"app", "apple", "application"}, words)
	assert.Equal(t, []int{2, 1, 3}, values)
	assert.Equal(t, 3, tree.WordCount([]byte("app")))
	assert.Equal(t, 2, tree.WordCount([]byte("appl")))
	assert.Equal(t, 3, tree.TotalWordCount())
	assert.Equal(t, len("application"), tree.LongestWord())

	write(tree, func(w *window.Write) {
		assert.Nil(t, tree.Mutate(w, []byte("app"), remove[int]()))
	})
	checkInvariants(t, tree)

	assert.Equal(t, 2, tree.WordCount([]byte("app")))
	assert.Equal(t, 2, tree.TotalWordCount())
	assert.Equal(t, []string{"apple", "application"}, collect(t, tree, ""))
}

func TestTree_Counts(t *testing.T) {
	tree := New[int]()
	assert.Equal(t, 0, tree.TotalWordCount())
	assert.Equal(t, 0, tree.WordCount(nil))
	assert.Equal(t, 0, tree.LongestWord())

	insertAll(tree, map[string]int{"romane": 1, "romanus": 2, "romulus": 3, "rubens": 4, "ruber": 5, "rubicon": 6, "rubicundus": 7})
	checkInvariants(t, tree)

	tests := []struct {
		prefix string
		want   int
	}{
		{"", 7},
		{"r", 7},
		{"rom", 3},
		{"roma", 2},
		{"rub", 4},
		{"rubic", 2},
		{"rubicundus", 1},
		{"rubicundusx", 0},
		{"x", 0},
		{"ro", 3},
		{"romu", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tree.WordCount([]byte(tt.prefix)), "prefix %q", tt.prefix)
	}
	assert.Equal(t, len("rubicundus"), tree.LongestWord())
}

func TestTree_MutateReturnsInstalledValue(t *testing.T) {
	tree := New[int]()
	write(tree, func(w *window.Write) {
		v := tree.Mutate(w, []byte("key"), set(7))
		require.NotNil(t, v)
		assert.Equal(t, 7, *v)

		v = tree.Mutate(w, []byte("key"), func(old refcount.Ptr[int]) refcount.Ptr[int] {
			require.False(t, old.IsNil())
			n := *old.Get()
			old.Release()
			return refcount.Make(n + 1)
		})
		require.NotNil(t, v)
		assert.Equal(t, 8, *v)

		assert.Equal(t, 8, *tree.Lookup(w, []byte("key")))
		assert.Nil(t, tree.Lookup(w, []byte("ke")))
		assert.Nil(t, tree.Lookup(w, []byte("keys")))
	})
}

func TestTree_MutateAbsentSeesNil(t *testing.T) {
	tree := New[int]()
	write(tree, func(w *window.Write) {
		called := 0
		tree.Mutate(w, []byte("fresh"), func(old refcount.Ptr[int]) refcount.Ptr[int] {
			called++
			assert.True(t, old.IsNil())
			return old
		})
		assert.Equal(t, 1, called)
	})
	assert.Equal(t, 0, tree.TotalWordCount())
	checkInvariants(t, tree)
}

func TestTree_MutateEmptyWordPanics(t *testing.T) {
	tree := New[int]()
	w := window.BeginWrite()
	defer w.End()

	assert.PanicsWithError(t, "rax: Mutate: empty word", func() {
		tree.Mutate(w, nil, set(1))
	})
	assert.Panics(t, func() {
		tree.Mutate(w, []byte{}, set(1))
	})
}

func TestTree_MutateEndedWindowPanics(t *testing.T) {
	tree := New[int]()
	w := window.BeginWrite()
	w.End()

	assert.PanicsWithError(t, "window: write token used after its window ended", func() {
		tree.Mutate(w, []byte("a"), set(1))
	})
}

func TestTree_DeleteAbsent(t *testing.T) {
	tree := New[int]()
	insertAll(tree, map[string]int{"alpha": 1, "beta": 2})
	before := tree.MemoryUsage()

	write(tree, func(w *window.Write) {
		for _, word := range []string{"alp", "alphas", "gamma", "b"} {
			assert.Nil(t, tree.Mutate(w, []byte(word), remove[int]()))
		}
	})

	assert.Equal(t, 2, tree.TotalWordCount())
	assert.Equal(t, before, tree.MemoryUsage())
	assert.Equal(t, []string{"alpha", "beta"}, collect(t, tree, ""))
	checkInvariants(t, tree)
}

func TestTree_IdentityMutate(t *testing.T) {
	rng := testutil.NewRNG(3)
	words := rng.Words(200, "abcd", 8)

	tree := New[int]()
	write(tree, func(w *window.Write) {
		for i, word := range words {
			tree.Mutate(w, []byte(word), set(i))
		}
	})
	order := collect(t, tree, "")
	lines := tree.DebugTreeStrings()

	write(tree, func(w *window.Write) {
		for i, word := range words {
			v := tree.Mutate(w, []byte(word), identity[int]())
			require.NotNil(t, v)
			assert.Equal(t, i, *v)
		}
	})

	assert.Equal(t, len(words), tree.TotalWordCount())
	assert.Equal(t, order, collect(t, tree, ""))
	assert.Equal(t, lines, tree.DebugTreeStrings())
}

func TestTree_RoundTrip(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4} {
		rng := testutil.NewRNG(seed)
		words := rng.Words(500, "abcxyz", 12)
		ref := testutil.NewWordSet()
		tree := New[int]()

		write(tree, func(w *window.Write) {
			for i, word := range words {
				tree.Mutate(w, []byte(word), set(i))
				ref.Put(word, i)
			}
		})
		checkInvariants(t, tree)

		assert.Equal(t, ref.Sorted(), collect(t, tree, ""))
		assert.Equal(t, ref.Len(), tree.TotalWordCount())
		assert.Equal(t, ref.Longest(), tree.LongestWord())
		assert.Equal(t, memoryFromScratch(tree), tree.MemoryUsage())

		for _, p := range []string{"", "a", "ab", "abc", "x", "xy", "zzz", "cab"} {
			want := ref.WithPrefix(p)
			assert.Equal(t, want, collect(t, tree, p), "prefix %q", p)
			assert.Equal(t, len(want), tree.WordCount([]byte(p)), "prefix %q", p)
		}
		for i := 0; i < 50; i++ {
			word := words[rng.Intn(len(words))]
			p := word[:rng.Intn(len(word)+1)]
			assert.Equal(t, ref.WithPrefix(p), collect(t, tree, p), "prefix %q", p)
		}
	}
}

func TestTree_RandomInsertDelete(t *testing.T) {
	rng := testutil.NewRNG(11)
	words := rng.Words(400, "abc", 9)
	ref := testutil.NewWordSet()
	tree := New[int]()
	empty := tree.MemoryUsage()

	for round := 0; round < 6; round++ {
		words = rng.Shuffle(words)
		write(tree, func(w *window.Write) {
			for i, word := range words {
				if rng.Intn(3) == 0 {
					tree.Mutate(w, []byte(word), remove[int]())
					ref.Delete(word)
					continue
				}
				tree.Mutate(w, []byte(word), set(i))
				ref.Put(word, i)
			}
		})

		checkInvariants(t, tree)
		require.Equal(t, ref.Sorted(), collect(t, tree, ""), "round %d", round)
		require.Equal(t, ref.Longest(), tree.LongestWord(), "round %d", round)
		require.Equal(t, memoryFromScratch(tree), tree.MemoryUsage(), "round %d", round)

		r := window.BeginRead()
		for _, word := range ref.Sorted() {
			v, _ := ref.Get(word)
			got := tree.Lookup(r, []byte(word))
			require.NotNil(t, got, word)
			require.Equal(t, v, *got, word)
		}
		r.End()
	}

	write(tree, func(w *window.Write) {
		for _, word := range words {
			tree.Mutate(w, []byte(word), remove[int]())
		}
	})
	checkInvariants(t, tree)
	assert.Equal(t, 0, tree.TotalWordCount())
	assert.Equal(t, 0, tree.LongestWord())
	assert.Equal(t, empty, tree.MemoryUsage())
	assert.Empty(t, collect(t, tree, ""))
}

func TestTree_LongestWordShrinks(t *testing.T) {
	tree := New[int]()
	insertAll(tree, map[string]int{"a": 1, "abc": 2, "abcdefgh": 3, "b": 4})
	assert.Equal(t, 8, tree.LongestWord())

	write(tree, func(w *window.Write) {
		tree.Mutate(w, []byte("abcdefgh"), remove[int]())
	})
	assert.Equal(t, 3, tree.LongestWord())

	write(tree, func(w *window.Write) {
		tree.Mutate(w, []byte("abc"), remove[int]())
	})
	assert.Equal(t, 1, tree.LongestWord())
	checkInvariants(t, tree)
}

func TestTree_CompressedChainsMerge(t *testing.T) {
	tree := New[int]()
	insertAll(tree, map[string]int{"ab": 1, "abcd": 2})
	write(tree, func(w *window.Write) {
		tree.Mutate(w, []byte("ab"), remove[int]())
	})
	checkInvariants(t, tree)

	// A single word collapses into one compressed edge under the root.
	require.Equal(t, compressedNode, tree.root.kind)
	assert.Equal(t, []byte("abcd"), tree.root.label)
	assert.Equal(t, leafNode, tree.root.children[0].kind)
}

func TestTree_TargetsReleased(t *testing.T) {
	var destroyed atomic.Int32
	mk := func(v int) MutateFunc[payload] {
		return func(old refcount.Ptr[payload]) refcount.Ptr[payload] {
			old.Release()
			return refcount.Make(payload{v: v, destroyed: &destroyed})
		}
	}

	tree := New[payload]()
	write(tree, func(w *window.Write) {
		tree.Mutate(w, []byte("one"), mk(1))
		tree.Mutate(w, []byte("two"), mk(2))
		assert.Equal(t, int32(0), destroyed.Load())

		// Replacing releases the previous target.
		tree.Mutate(w, []byte("one"), mk(10))
		assert.Equal(t, int32(1), destroyed.Load())

		// Returning the same handle keeps the target alive.
		v := tree.Mutate(w, []byte("one"), identity[payload]())
		assert.Equal(t, 10, v.v)
		assert.Equal(t, int32(1), destroyed.Load())

		tree.Mutate(w, []byte("two"), remove[payload]())
		assert.Equal(t, int32(2), destroyed.Load())
	})

	// A reference taken through an iterator outlives the word.
	r := window.BeginRead()
	it := tree.WordIterator(r, []byte("one"))
	ref := it.TargetRef()
	r.End()

	write(tree, func(w *window.Write) {
		tree.Mutate(w, []byte("one"), remove[payload]())
	})
	assert.Equal(t, int32(2), destroyed.Load())
	assert.Equal(t, 10, ref.Get().v)

	ref.Release()
	assert.Equal(t, int32(3), destroyed.Load())
}

func TestTree_SuffixMode(t *testing.T) {
	tree := New[int](WithSuffixMode())
	require.True(t, tree.SuffixMode())
	insertAll(tree, map[string]int{"ring": 1, "sing": 2, "testing": 3, "song": 4, "sang": 5})
	checkInvariants(t, tree)

	// Queries select by ending; words come back in their original order.
	assert.Equal(t, []string{"ring", "sing", "testing"}, collect(t, tree, "ing"))
	assert.Equal(t, 3, tree.WordCount([]byte("ing")))
	assert.Equal(t, 5, tree.WordCount([]byte("g")))
	assert.Equal(t, 1, tree.WordCount([]byte("ang")))
	assert.Equal(t, 0, tree.WordCount([]byte("sin")))

	r := window.BeginRead()
	assert.Equal(t, 3, *tree.Lookup(r, []byte("testing")))
	assert.Nil(t, tree.Lookup(r, []byte("gnitset")))
	r.End()
}

// TestTree_SuffixModeAgainstReversedTree checks both readings of a suffix
// query: passing s to a suffix tree equals passing reverse(s) to a forward
// tree holding reversed words.
func TestTree_SuffixModeAgainstReversedTree(t *testing.T) {
	rng := testutil.NewRNG(21)
	words := rng.Words(300, "abcd", 8)
	ref := testutil.NewWordSet()

	suffix := New[int](WithSuffixMode())
	forward := New[int]()
	write(suffix, func(w *window.Write) {
		for i, word := range words {
			suffix.Mutate(w, []byte(word), set(i))
			forward.Mutate(w, []byte(reverse(word)), set(i))
			ref.Put(word, i)
		}
	})
	checkInvariants(t, suffix)

	for i := 0; i < 60; i++ {
		word := words[rng.Intn(len(words))]
		s := word[rng.Intn(len(word)+1):]

		got := collect(t, suffix, s)
		assert.Equal(t, ref.WithSuffix(s), got, "suffix %q", s)
		assert.Equal(t, len(got), suffix.WordCount([]byte(s)))

		rev := collect(t, forward, reverse(s))
		require.Len(t, rev, len(got))
		for j := range rev {
			assert.Equal(t, got[j], reverse(rev[j]))
		}
		assert.Equal(t, forward.WordCount([]byte(reverse(s))), suffix.WordCount([]byte(s)))
	}

	// Internal keys are reversed, so the dumps of both trees match.
	assert.Equal(t, forward.DebugTreeStrings()[1:], suffix.DebugTreeStrings()[1:])
}

func TestTree_DebugPrintTree(t *testing.T) {
	tree := New[int]()
	insertAll(tree, map[string]int{"apple": 1, "app": 2, "application": 3})

	lines := tree.DebugTreeStrings()
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "tree words=3 longest=11"))
	assert.Contains(t, lines[1], `[compressed "app"]`)
	assert.Len(t, lines, 7)

	var buf bytes.Buffer
	tree.DebugPrintTree(&buf, "scenario")
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== scenario ===\n"))
	assert.Contains(t, out, `"e" -> [leaf] +word`)
	assert.Contains(t, out, `[compressed "cation"]`)
}
