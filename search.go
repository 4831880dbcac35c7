package textidx

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/textidx/internal/pool"
	"github.com/hupe1980/textidx/model"
	"github.com/hupe1980/textidx/window"
)

// ctxCheckInterval is how many terms a query expands between context checks.
const ctxCheckInterval = 1024

// PrefixSearch returns the keys of all documents containing a word that
// starts with prefix, in ascending order. The prefix is lower-cased like
// indexed words but never stemmed; an empty prefix matches every document.
func (idx *Index) PrefixSearch(ctx context.Context, prefix string) ([]model.PrimaryKey, error) {
	return idx.expand(ctx, QueryPrefix, prefix)
}

// SuffixSearch returns the keys of all documents containing a word that
// ends with suffix, in ascending order. It requires WithSuffixTree.
func (idx *Index) SuffixSearch(ctx context.Context, suffix string) ([]model.PrimaryKey, error) {
	return idx.expand(ctx, QuerySuffix, suffix)
}

func (idx *Index) expand(ctx context.Context, kind QueryKind, query string) ([]model.PrimaryKey, error) {
	start := time.Now()
	terms, pks, err := idx.expandTerms(ctx, kind, query)
	err = translateError(err)
	idx.metrics.RecordExpand(kind, terms, time.Since(start), err)
	idx.logger.LogExpand(ctx, kind, query, terms, len(pks), err)
	return pks, err
}

// expandTerms unions the postings of every word matching query.
func (idx *Index) expandTerms(ctx context.Context, kind QueryKind, query string) (int, []model.PrimaryKey, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	key, err := idx.lexer.Normalize(query)
	if err != nil {
		return 0, nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return 0, nil, ErrClosed
	}

	t := idx.prefix
	if kind == QuerySuffix {
		if idx.suffix == nil {
			return 0, nil, ErrSuffixTreeDisabled
		}
		t = idx.suffix
	}

	r := window.BeginRead()
	defer r.End()

	sc := pool.Get()
	defer pool.Put(sc)

	rows := sc.Union
	terms := 0
	for it := t.WordIterator(r, []byte(key)); !it.Done(); it.Next() {
		it.Target().OrInto(rows)
		terms++
		if terms%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return terms, nil, err
			}
		}
	}
	return terms, idx.keysLocked(rows), nil
}

// keysLocked maps rows to their primary keys in ascending key order.
func (idx *Index) keysLocked(rows *roaring.Bitmap) []model.PrimaryKey {
	out := make([]model.PrimaryKey, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		out = append(out, idx.rows[model.RowID(it.Next())])
	}
	slices.Sort(out)
	return out
}

// Terms lists indexed terms starting with prefix in ascending byte order.
// Listing resumes after the term after when it is non-empty, which makes
// Terms usable for paging. A limit <= 0 returns all remaining terms.
func (idx *Index) Terms(ctx context.Context, prefix, after string, limit int) ([]string, error) {
	start := time.Now()
	out, err := idx.terms(ctx, prefix, after, limit)
	err = translateError(err)
	idx.metrics.RecordExpand(QueryTerms, len(out), time.Since(start), err)
	idx.logger.LogExpand(ctx, QueryTerms, prefix, len(out), len(out), err)
	return out, err
}

func (idx *Index) terms(ctx context.Context, prefix, after string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := idx.lexer.Normalize(prefix)
	if err != nil {
		return nil, err
	}
	if after != "" {
		if after, err = idx.lexer.Normalize(after); err != nil {
			return nil, err
		}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return nil, ErrClosed
	}

	r := window.BeginRead()
	defer r.End()

	out := []string{}
	it := idx.prefix.WordIterator(r, []byte(key))
	switch {
	case after == "" || after < key:
	case strings.HasPrefix(after, key):
		if it.SeekForward([]byte(after)) {
			it.Next()
		}
	default:
		return out, nil
	}

	for ; !it.Done(); it.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, string(it.Word()))
	}
	return out, nil
}

// DocumentFrequency returns the number of documents containing term. The
// term is normalized and stemmed like indexed words.
func (idx *Index) DocumentFrequency(ctx context.Context, term string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	key, err := idx.queryTerm(term)
	if err != nil {
		return 0, translateError(err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return 0, ErrClosed
	}

	r := window.BeginRead()
	defer r.End()

	p := idx.prefix.Lookup(r, []byte(key))
	if p == nil {
		return 0, nil
	}
	return p.Cardinality(), nil
}

// WordCount returns the number of distinct indexed terms starting with
// prefix.
func (idx *Index) WordCount(prefix string) (int, error) {
	key, err := idx.lexer.Normalize(prefix)
	if err != nil {
		return 0, translateError(err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return 0, ErrClosed
	}
	return idx.prefix.WordCount([]byte(key)), nil
}

// queryTerm normalizes a single query word the way Add indexes it.
func (idx *Index) queryTerm(word string) (string, error) {
	key, err := idx.lexer.Normalize(word)
	if err != nil {
		return "", err
	}
	if idx.opts.stemming && key != "" {
		key = idx.lexer.Stem(key)
	}
	return key, nil
}
