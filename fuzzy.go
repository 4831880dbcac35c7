package textidx

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/hupe1980/textidx/internal/pool"
	"github.com/hupe1980/textidx/model"
	"github.com/hupe1980/textidx/postings"
	"github.com/hupe1980/textidx/rax"
	"github.com/hupe1980/textidx/window"
)

// FuzzySearch returns the documents containing a word within maxEdits
// Levenshtein edits of word, measured in bytes. Each document is reported
// once with its closest word; results are ordered by distance, then key.
//
// The word is normalized and stemmed like indexed words. maxEdits must lie
// in [0, MaxFuzzyEdits].
func (idx *Index) FuzzySearch(ctx context.Context, word string, maxEdits int) ([]model.Candidate, error) {
	start := time.Now()
	terms, out, err := idx.fuzzy(ctx, word, maxEdits)
	err = translateError(err)
	idx.metrics.RecordExpand(QueryFuzzy, terms, time.Since(start), err)
	idx.logger.LogExpand(ctx, QueryFuzzy, word, terms, len(out), err)
	return out, err
}

func (idx *Index) fuzzy(ctx context.Context, word string, maxEdits int) (int, []model.Candidate, error) {
	if maxEdits < 0 || maxEdits > MaxFuzzyEdits {
		return 0, nil, &ErrInvalidMaxEdits{MaxEdits: maxEdits}
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	key, err := idx.queryTerm(word)
	if err != nil {
		return 0, nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return 0, nil, ErrClosed
	}

	r := window.BeginRead()
	defer r.End()

	sc := pool.Get()
	defer pool.Put(sc)

	m := &fuzzyMatcher{
		ctx:      ctx,
		query:    []byte(key),
		maxEdits: maxEdits,
		best:     make(map[model.RowID]model.Candidate),
	}
	m.rows = sc.EditRows(idx.prefix.LongestWord()+1, len(m.query)+1)
	for j := range m.rows[0] {
		m.rows[0][j] = j
	}

	if err := m.walk(idx.prefix.PathIterator(r, nil), 0); err != nil {
		return m.terms, nil, err
	}

	out := make([]model.Candidate, 0, len(m.best))
	for row, c := range m.best {
		c.PK = idx.rows[row]
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Candidate) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), cmp.Compare(a.PK, b.PK))
	})
	return m.terms, out, nil
}

// fuzzyMatcher walks the tree depth first while maintaining one row of the
// Levenshtein matrix per depth. A subtree is pruned when every entry of its
// row exceeds maxEdits, since distances never shrink along a path.
type fuzzyMatcher struct {
	ctx      context.Context
	query    []byte
	maxEdits int
	rows     [][]int
	best     map[model.RowID]model.Candidate
	terms    int
	visited  int
}

func (m *fuzzyMatcher) walk(it *rax.PathIterator[postings.Postings], depth int) error {
	m.visited++
	if m.visited%ctxCheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return err
		}
	}

	row := m.rows[depth]
	if dist := row[len(m.query)]; it.IsWord() && dist <= m.maxEdits {
		m.collect(string(it.Path()), it.Target(), dist)
	}

	next := m.rows[depth+1:]
	for ; !it.Done(); it.Next() {
		if len(next) == 0 {
			break
		}
		c := it.Byte()
		child := next[0]
		child[0] = row[0] + 1
		lowest := child[0]
		for j := 1; j <= len(m.query); j++ {
			cost := 1
			if m.query[j-1] == c {
				cost = 0
			}
			child[j] = min(row[j]+1, child[j-1]+1, row[j-1]+cost)
			lowest = min(lowest, child[j])
		}
		if lowest > m.maxEdits {
			continue
		}
		if err := m.walk(it.DescendNew(), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// collect records term for every row of p unless the row already has a
// match at least as close. The walk is in ascending term order, so ties keep
// the smallest term.
func (m *fuzzyMatcher) collect(term string, p *postings.Postings, dist int) {
	m.terms++
	for row := range p.Rows() {
		if c, ok := m.best[row]; ok && c.Distance <= dist {
			continue
		}
		m.best[row] = model.Candidate{Row: row, Term: term, Distance: dist}
	}
}
