package textidx

import (
	"errors"
	"fmt"

	"github.com/hupe1980/textidx/internal/conv"
	"github.com/hupe1980/textidx/internal/resource"
	"github.com/hupe1980/textidx/lexer"
)

var (
	// ErrClosed is returned when the index has been closed.
	ErrClosed = errors.New("index closed")

	// ErrNotFound is returned when a document is not found.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when adding a document whose primary key is
	// already indexed.
	ErrDuplicateKey = errors.New("duplicate primary key")

	// ErrEmptyText is returned when text yields no indexable words.
	ErrEmptyText = errors.New("text contains no indexable words")

	// ErrInvalidText is returned when text is not valid UTF-8. The wrapped
	// *lexer.InvalidUTF8Error carries the offset.
	ErrInvalidText = errors.New("invalid text")

	// ErrMemoryLimitExceeded is returned when an add would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrSuffixTreeDisabled is returned by suffix queries on an index built
	// without WithSuffixTree.
	ErrSuffixTreeDisabled = errors.New("suffix tree disabled")

	// ErrRowsExhausted is returned when the 32-bit row id space is used up.
	ErrRowsExhausted = errors.New("row id space exhausted")
)

// MaxFuzzyEdits is the largest edit distance FuzzySearch accepts.
const MaxFuzzyEdits = 4

// ErrInvalidMaxEdits indicates an edit distance outside [0, MaxFuzzyEdits].
type ErrInvalidMaxEdits struct {
	MaxEdits int
}

func (e *ErrInvalidMaxEdits) Error() string {
	return fmt.Sprintf("invalid max edits: %d (allowed 0..%d)", e.MaxEdits, MaxFuzzyEdits)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var invalid *lexer.InvalidUTF8Error
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %w", ErrInvalidText, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}
	if errors.Is(err, conv.ErrOverflow) {
		return fmt.Errorf("%w: %w", ErrRowsExhausted, err)
	}

	return err
}
