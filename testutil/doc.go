// Package testutil provides testing utilities for textidx.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random words with shared prefixes and
// a reference word set that answers the same questions as a rax.Tree by
// brute force.
//
// # Random Word Generation
//
//	rng := testutil.NewRNG(seed)
//	words := rng.Words(1000, "abc", 12)     // unique words over a small alphabet
//	doc := rng.Sentence(words, 20)          // space separated text
//
// # Reference Model
//
//	ref := testutil.NewWordSet(words...)
//	ref.WithPrefix("ab")  // sorted words starting with "ab"
//	ref.WithSuffix("ca")  // sorted (by reversed bytes) words ending with "ca"
package testutil
