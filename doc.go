// Package textidx provides an embeddable in-memory inverted text index for Go
// built on a compressed radix tree.
//
// Every indexed word maps to the postings of the documents containing it.
// The words are kept in a prefix tree, and optionally in a suffix tree that
// shares the same postings, so term expansion queries cost time proportional
// to the matching words rather than to the vocabulary.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, _ := textidx.New(textidx.WithSuffixTree())
//	defer idx.Close()
//
//	_ = idx.Add(ctx, 1, "The quick brown fox")
//	_ = idx.Add(ctx, 2, "Jumps over the lazy dog")
//
//	pks, _ := idx.PrefixSearch(ctx, "qu")   // [1]
//	pks, _ = idx.SuffixSearch(ctx, "og")    // [2]
//	hits, _ := idx.FuzzySearch(ctx, "lazzy", 1)
//
// # Text Processing
//
// Text is split at whitespace, control bytes and ASCII punctuation, then
// normalized to NFC and lower-cased. Stop words are dropped. With
// WithStemming, words are reduced to their English stems.
//
// # Concurrency
//
// The index coordinates access to its trees with a read-write mutex. Adds,
// updates, deletes and defrag steps run in exclusive write windows; queries
// run in shared read windows and may proceed in parallel.
//
// # Memory
//
// Tree nodes, postings and the stem cache are accounted against the limit
// set with WithMemoryLimit. Defrag compacts nodes and postings in place,
// paced by WithDefragRate.
//
// # Key Features
//
//   - Prefix, suffix and fuzzy (Levenshtein) term expansion
//   - Exact per-subtree word counts
//   - Roaring bitmap postings shared between trees
//   - Incremental, rate-limited defragmentation
//   - Structured logging and pluggable metrics
package textidx
