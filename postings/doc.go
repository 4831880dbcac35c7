// Package postings implements the payload stored for every indexed word: the
// set of rows containing the word and how often the word occurs in each.
//
// Row sets are 32-bit roaring bitmaps. Frequencies are kept only for rows
// where the word occurs more than once, which is the minority in natural
// text.
//
// A Postings is not safe for concurrent mutation. Inside a textidx index it
// is mutated only within a write window and read only within read windows.
package postings
