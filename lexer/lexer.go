package lexer

import (
	"sync"
	"unicode/utf8"

	"github.com/bits-and-blooms/bitset"
	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hupe1980/textidx/internal/cache"
)

// Lexer splits and normalizes text into word tokens.
type Lexer struct {
	punct       *bitset.BitSet
	stopWords   map[string]struct{}
	minStemSize int
	lang        language.Tag
	// asciiFold enables the ASCII fast path; Turkic languages map 'I'
	// differently.
	asciiFold bool

	// casers holds cases.Caser values, which are not safe for concurrent use.
	casers sync.Pool
	stems  *cache.ShardedLRU
}

// New creates a Lexer. Zero fields of cfg take their defaults.
func New(cfg Config) *Lexer {
	if cfg.MinStemSize <= 0 {
		cfg.MinStemSize = DefaultMinStemSize
	}
	if cfg.StopWords == nil {
		cfg.StopWords = DefaultStopWords()
	}
	if cfg.Language == language.Und {
		cfg.Language = language.English
	}
	if cfg.StemCacheSize == 0 {
		cfg.StemCacheSize = DefaultStemCacheSize
	}

	l := &Lexer{
		punct:       punctuationSet(cfg.Punctuation),
		stopWords:   make(map[string]struct{}, len(cfg.StopWords)),
		minStemSize: cfg.MinStemSize,
		lang:        cfg.Language,
	}
	base, _ := cfg.Language.Base()
	l.asciiFold = base.String() != "tr" && base.String() != "az"
	l.casers.New = func() any {
		c := cases.Lower(l.lang)
		return &c
	}
	for _, w := range cfg.StopWords {
		l.stopWords[l.lower(w)] = struct{}{}
	}
	if cfg.StemCacheSize > 0 {
		l.stems = cache.NewShardedLRU(cfg.StemCacheSize, cfg.Resources)
	}
	return l
}

// punctuationSet marks every whitespace and control byte plus the ASCII
// bytes of punctuation.
func punctuationSet(punctuation string) *bitset.BitSet {
	set := bitset.New(256)
	for c := 0; c < utf8.RuneSelf; c++ {
		if isSpaceOrControl(byte(c)) {
			set.Set(uint(c))
		}
	}
	for i := 0; i < len(punctuation); i++ {
		if c := punctuation[i]; c < utf8.RuneSelf {
			set.Set(uint(c))
		}
	}
	return set
}

func isSpaceOrControl(c byte) bool {
	return c <= ' ' || c == 0x7f
}

// IsPunctuation reports whether c separates words.
func (l *Lexer) IsPunctuation(c byte) bool {
	return l.punct.Test(uint(c))
}

// IsStopWord reports whether word, after lower-casing, is a stop word.
func (l *Lexer) IsStopWord(word string) bool {
	_, ok := l.stopWords[l.lower(word)]
	return ok
}

// Tokenize returns the normalized words of text in order of appearance,
// including duplicates. When stemming is set, words of at least MinStemSize
// bytes are reduced to their stems.
//
// Invalid UTF-8 yields an *InvalidUTF8Error and no tokens.
func (l *Lexer) Tokenize(text string, stemming bool) ([]string, error) {
	if off := invalidOffset(text); off >= 0 {
		return nil, &InvalidUTF8Error{Offset: off}
	}

	tokens := make([]string, 0, len(text)/6+1)
	pos := 0
	for pos < len(text) {
		for pos < len(text) && l.IsPunctuation(text[pos]) {
			pos++
		}
		start := pos
		for pos < len(text) && !l.IsPunctuation(text[pos]) {
			pos++
		}
		if pos == start {
			continue
		}

		word := l.lower(text[start:pos])
		if _, stop := l.stopWords[word]; stop {
			continue
		}
		if stemming {
			word = l.Stem(word)
		}
		tokens = append(tokens, word)
	}
	return tokens, nil
}

// Normalize validates word and applies the case mapping of Tokenize without
// splitting, stop word removal or stemming. Query words and prefixes go
// through Normalize so they match indexed tokens.
func (l *Lexer) Normalize(word string) (string, error) {
	if off := invalidOffset(word); off >= 0 {
		return "", &InvalidUTF8Error{Offset: off}
	}
	return l.lower(word), nil
}

// Stem returns the English stem of a lower-case word, or the word itself
// when it is shorter than MinStemSize.
func (l *Lexer) Stem(word string) string {
	if len(word) < l.minStemSize {
		return word
	}
	if l.stems != nil {
		if s, ok := l.stems.Get(word); ok {
			return s
		}
	}
	s := english.Stem(word, true)
	if s == "" {
		s = word
	}
	if l.stems != nil {
		l.stems.Set(word, s)
	}
	return s
}

// StemCacheStats returns stem cache hits and misses.
func (l *Lexer) StemCacheStats() (hits, misses int64) {
	if l.stems == nil {
		return 0, 0
	}
	return l.stems.Stats()
}

// lower normalizes word to NFC and lower case. ASCII words skip the Unicode
// machinery unless the language is Turkic.
func (l *Lexer) lower(word string) string {
	ascii, upper := true, false
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
		if 'A' <= c && c <= 'Z' {
			upper = true
		}
	}
	if ascii && l.asciiFold {
		if !upper {
			return word
		}
		b := []byte(word)
		for i, c := range b {
			if 'A' <= c && c <= 'Z' {
				b[i] = c + 'a' - 'A'
			}
		}
		return string(b)
	}

	c := l.casers.Get().(*cases.Caser)
	defer l.casers.Put(c)
	return c.String(norm.NFC.String(word))
}

// invalidOffset returns the byte offset of the first invalid UTF-8 sequence
// in s, or -1.
func invalidOffset(s string) int {
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
