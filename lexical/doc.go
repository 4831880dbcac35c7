// Package lexical defines the interface for term expansion text indexes.
//
// A term expansion index maps words to the documents containing them and
// answers queries by expanding a pattern into the matching words. The root
// textidx.Index is the built-in implementation:
//
//	var idx lexical.Index
//	idx, _ = textidx.New(textidx.WithSuffixTree())
//
// # Custom Implementations
//
// Implement the Index interface to substitute another index, for example a
// remote one or a test double:
//
//	type Index interface {
//	    Add(ctx context.Context, pk model.PrimaryKey, text string) error
//	    Delete(ctx context.Context, pk model.PrimaryKey) error
//	    PrefixSearch(ctx context.Context, prefix string) ([]model.PrimaryKey, error)
//	    SuffixSearch(ctx context.Context, suffix string) ([]model.PrimaryKey, error)
//	    FuzzySearch(ctx context.Context, word string, maxEdits int) ([]model.Candidate, error)
//	    Close() error
//	}
package lexical
