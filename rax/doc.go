// Package rax implements a compressed radix tree that maps byte-string words
// to reference-counted targets.
//
// # Node Kinds
//
// Every node is one of three kinds:
//
//   - Leaf: holds a target and has no children. The root of an empty tree is
//     the only target-less leaf.
//   - Branching: two or more children, one per distinct next byte, and an
//     optional target.
//   - Compressed: exactly one child reached through a label of one or more
//     bytes, and an optional target. The child of a compressed node is never
//     a target-less compressed node; such chains are merged.
//
// For example, the words "testing" and "team" are stored as:
//
//	               [compressed]
//	               "te" |
//	                [branching]
//	             "s" /     \ "a"
//	       [compressed]   [compressed]
//	       "ting" /           \ "m"
//	Target <- [leaf]           [leaf] -> Target
//
// Each node keeps the number of words in its subtree and the length of the
// longest word suffix below it, so WordCount(prefix) costs O(len(prefix)) and
// LongestWord is exact even after deletions.
//
// # Windows
//
// A Tree is designed for read-mostly workloads under an external coordinator
// that alternates exclusive write windows with shared read windows. Mutate
// requires a *window.Write; iterator constructors require a window.Reader.
// Nothing in this package takes a lock. Iterators panic when their window
// has ended.
//
// # Suffix Mode
//
// A tree built WithSuffixMode reverses every word internally. Callers always
// pass and receive words in their original order; prefixes given to
// WordCount, WordIterator and PathIterator select words by their ending.
//
// # Targets
//
// Targets are refcount.Ptr handles. The node slot stores the handle's raw
// pointer and owns one reference.
package rax
