package lexical

import (
	"context"

	"github.com/hupe1980/textidx/model"
)

// Index is the interface for a term expansion text index.
type Index interface {
	// Add indexes a document.
	Add(ctx context.Context, pk model.PrimaryKey, text string) error
	// Delete removes a document from the index.
	Delete(ctx context.Context, pk model.PrimaryKey) error
	// PrefixSearch returns the documents containing a word starting with prefix.
	PrefixSearch(ctx context.Context, prefix string) ([]model.PrimaryKey, error)
	// SuffixSearch returns the documents containing a word ending with suffix.
	SuffixSearch(ctx context.Context, suffix string) ([]model.PrimaryKey, error)
	// FuzzySearch returns the documents containing a word within maxEdits of word.
	FuzzySearch(ctx context.Context, word string, maxEdits int) ([]model.Candidate, error)
	// Close closes the index.
	Close() error
}
