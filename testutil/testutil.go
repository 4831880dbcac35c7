package testutil

import (
	"bytes"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Word returns a random word of length [1, maxLen] over alphabet.
func (r *RNG) Word(alphabet string, maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wordLocked(alphabet, maxLen)
}

func (r *RNG) wordLocked(alphabet string, maxLen int) string {
	n := 1 + r.rand.Intn(maxLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Words returns up to n unique random words over alphabet, each at most
// maxLen bytes long. A small alphabet produces many shared prefixes, which
// exercises node splitting and merging.
func (r *RNG) Words(n int, alphabet string, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The number of distinct words is bounded by the alphabet.
	limit := 0.0
	for l := 1; l <= maxLen; l++ {
		limit += math.Pow(float64(len(alphabet)), float64(l))
		if limit > float64(n) {
			break
		}
	}
	if float64(n) > limit {
		n = int(limit)
	}

	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		w := r.wordLocked(alphabet, maxLen)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Shuffle returns a shuffled copy of words.
func (r *RNG) Shuffle(words []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(words)
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, larger s gives a heavier head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Sentence joins length words drawn from vocabulary with a Zipfian skew, so
// a few words repeat often the way they do in natural text.
func (r *RNG) Sentence(vocabulary []string, length int) string {
	parts := make([]string, length)
	for i := range parts {
		parts[i] = vocabulary[r.Zipf(len(vocabulary), 1.1)]
	}
	return strings.Join(parts, " ")
}

// WordSet is a brute-force reference model of a word dictionary.
type WordSet struct {
	words map[string]int
}

// NewWordSet creates a set holding words, each mapped to its insertion index.
func NewWordSet(words ...string) *WordSet {
	s := &WordSet{words: make(map[string]int, len(words))}
	for i, w := range words {
		s.words[w] = i
	}
	return s
}

// Put stores word with value v.
func (s *WordSet) Put(word string, v int) {
	s.words[word] = v
}

// Delete removes word and reports whether it was present.
func (s *WordSet) Delete(word string) bool {
	_, ok := s.words[word]
	delete(s.words, word)
	return ok
}

// Get returns the value of word.
func (s *WordSet) Get(word string) (int, bool) {
	v, ok := s.words[word]
	return v, ok
}

// Len returns the number of words.
func (s *WordSet) Len() int {
	return len(s.words)
}

// Sorted returns every word in ascending byte order.
func (s *WordSet) Sorted() []string {
	return s.WithPrefix("")
}

// WithPrefix returns the words starting with prefix in ascending byte order.
func (s *WordSet) WithPrefix(prefix string) []string {
	out := make([]string, 0)
	for w := range s.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// WithSuffix returns the words ending with suffix, ordered by their reversed
// bytes. This is the order a suffix tree enumerates them in.
func (s *WordSet) WithSuffix(suffix string) []string {
	out := make([]string, 0)
	for w := range s.words {
		if strings.HasSuffix(w, suffix) {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return bytes.Compare(Reverse([]byte(a)), Reverse([]byte(b)))
	})
	return out
}

// Longest returns the length of the longest word, or zero.
func (s *WordSet) Longest() int {
	longest := 0
	for w := range s.words {
		longest = max(longest, len(w))
	}
	return longest
}

// Reverse returns a reversed copy of b.
func Reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// Levenshtein returns the edit distance between a and b, counted in bytes.
func Levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
