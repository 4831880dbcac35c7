// Package lexer turns raw document text into the normalized word keys stored
// in a textidx tree.
//
// Tokenize validates that text is UTF-8, splits it on whitespace, control
// bytes and a configurable punctuation set, normalizes each word to NFC and
// lower case, drops stop words and optionally applies the English Snowball
// stemmer to words of at least MinStemSize bytes.
//
// A Lexer is safe for concurrent use. Stems are memoized in a shared LRU.
package lexer
