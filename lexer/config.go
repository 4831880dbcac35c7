package lexer

import (
	"golang.org/x/text/language"

	"github.com/hupe1980/textidx/internal/resource"
)

// DefaultPunctuation is the set of ASCII bytes that separate words in
// addition to whitespace and control bytes.
const DefaultPunctuation = ",.<>{}[]\"':;!@#$%^&*()-+=~/\\|?`"

// DefaultMinStemSize is the shortest word, in bytes, that is stemmed.
const DefaultMinStemSize = 4

// DefaultStemCacheSize is the default stem cache capacity in bytes.
const DefaultStemCacheSize = 1 << 20

// DefaultStopWords returns the default English stop word list.
func DefaultStopWords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"if", "in", "into", "is", "it", "no", "not", "of", "on", "or",
		"such", "that", "the", "their", "then", "there", "these", "they",
		"this", "to", "was", "will", "with",
	}
}

// Config configures a Lexer.
type Config struct {
	// Punctuation lists the separator bytes. Non-ASCII runes are ignored so a
	// multi-byte sequence is never split.
	Punctuation string

	// StopWords are dropped after lower-casing. Nil means DefaultStopWords;
	// an empty non-nil slice disables stop words.
	StopWords []string

	// MinStemSize is the shortest word in bytes that is stemmed.
	// If 0, DefaultMinStemSize is used.
	MinStemSize int

	// Language selects the case mapping. Stemming is English only.
	// The zero value means language.English.
	Language language.Tag

	// StemCacheSize bounds the stem cache in bytes. Negative disables it;
	// 0 means DefaultStemCacheSize.
	StemCacheSize int64

	// Resources accounts stem cache memory. Optional.
	Resources *resource.Controller
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Punctuation:   DefaultPunctuation,
		StopWords:     DefaultStopWords(),
		MinStemSize:   DefaultMinStemSize,
		Language:      language.English,
		StemCacheSize: DefaultStemCacheSize,
	}
}
