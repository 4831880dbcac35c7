package textidx

import (
	"log/slog"

	"golang.org/x/text/language"

	"github.com/hupe1980/textidx/lexer"
)

// DefaultDefragRate is the default defrag pace in nodes per second.
const DefaultDefragRate = 100_000

type options struct {
	metricsCollector  MetricsCollector
	logger            *Logger
	suffixTree        bool
	stemming          bool
	minStemSize       int
	stopWords         []string
	punctuation       string
	language          language.Tag
	memoryLimit       int64
	defragRate        int64
	backgroundWorkers int64
	stemCacheSize     int64
}

// Option configures an Index at construction.
type Option func(*options)

// WithSuffixTree additionally indexes every word in a suffix tree, enabling
// SuffixSearch. Both trees share one postings object per word.
func WithSuffixTree() Option {
	return func(o *options) {
		o.suffixTree = true
	}
}

// WithStemming enables English stemming of indexed words that are at least
// minStemSize bytes long. If minStemSize <= 0, lexer.DefaultMinStemSize is
// used.
//
// Fuzzy and exact-term queries are stemmed the same way. Prefix and suffix
// queries are only lower-cased and match against the stored stems.
func WithStemming(minStemSize int) Option {
	return func(o *options) {
		o.stemming = true
		if minStemSize > 0 {
			o.minStemSize = minStemSize
		}
	}
}

// WithStopWords replaces the default stop word list. An empty list disables
// stop word removal.
func WithStopWords(words ...string) Option {
	return func(o *options) {
		o.stopWords = append([]string{}, words...)
	}
}

// WithPunctuation replaces the ASCII separator set used by the lexer.
// Whitespace and control bytes always separate words.
func WithPunctuation(punctuation string) Option {
	return func(o *options) {
		o.punctuation = punctuation
	}
}

// WithLanguage selects the case mapping used for indexed and query words.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.language = tag
	}
}

// WithMemoryLimit caps the bytes accounted to trees, postings and the stem
// cache. Adds that would exceed it fail with ErrMemoryLimitExceeded.
// If limit <= 0, memory is tracked but not limited.
func WithMemoryLimit(limit int64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// WithDefragRate sets how many tree positions Defrag visits per second.
// If nodesPerSec <= 0, Defrag is not paced.
func WithDefragRate(nodesPerSec int64) Option {
	return func(o *options) {
		o.defragRate = nodesPerSec
	}
}

// WithBackgroundWorkers sets the number of goroutines BatchAdd uses to
// tokenize documents.
func WithBackgroundWorkers(n int64) Option {
	return func(o *options) {
		o.backgroundWorkers = n
	}
}

// WithStemCacheSize bounds the stem cache in bytes. A negative size
// disables the cache.
func WithStemCacheSize(bytes int64) Option {
	return func(o *options) {
		o.stemCacheSize = bytes
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &textidx.BasicMetricsCollector{}
//	idx, _ := textidx.New(textidx.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Avg latency: %dns\n", stats.AddCount, stats.AddAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := textidx.NewJSONLogger(slog.LevelInfo)
//	idx, _ := textidx.New(textidx.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		minStemSize:      lexer.DefaultMinStemSize,
		punctuation:      lexer.DefaultPunctuation,
		language:         language.English,
		defragRate:       DefaultDefragRate,
		stemCacheSize:    lexer.DefaultStemCacheSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
