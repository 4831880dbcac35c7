package textidx

import (
	"context"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/textidx/internal/conv"
	"github.com/hupe1980/textidx/internal/resource"
	"github.com/hupe1980/textidx/lexer"
	"github.com/hupe1980/textidx/lexical"
	"github.com/hupe1980/textidx/model"
	"github.com/hupe1980/textidx/postings"
	"github.com/hupe1980/textidx/rax"
	"github.com/hupe1980/textidx/refcount"
	"github.com/hupe1980/textidx/window"
)

const (
	// newTermEstimate approximates the bytes a new term adds to a tree and
	// its postings, beyond the term bytes themselves.
	newTermEstimate = 256
	// existingTermEstimate approximates the bytes a posting adds to an
	// existing term.
	existingTermEstimate = 24
)

type tree = rax.Tree[postings.Postings]

var _ lexical.Index = (*Index)(nil)

type document struct {
	row   model.RowID
	terms []string
}

// Index is an in-memory inverted text index. Words are kept in a compressed
// radix tree that maps each term to the postings of the documents containing
// it, and optionally in a second suffix tree sharing the same postings.
//
// Index is the window coordinator for its trees: writers hold the write lock
// for the duration of a write window and readers hold the read lock for a
// read window. All methods are safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	closed bool

	opts    options
	logger  *Logger
	metrics MetricsCollector
	lexer   *lexer.Lexer
	rc      *resource.Controller

	prefix *tree
	suffix *tree // nil without WithSuffixTree

	docs    map[model.PrimaryKey]*document
	rows    map[model.RowID]model.PrimaryKey
	nextRow uint64

	// postingsBytes is the summed size of all live postings.
	postingsBytes int64
	// accounted is the tree and postings memory reported to rc.
	accounted int64
}

// New creates an empty Index.
func New(optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     o.memoryLimit,
		MaxBackgroundWorkers: o.backgroundWorkers,
		DefragNodesPerSec:    o.defragRate,
	})

	idx := &Index{
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
		lexer: lexer.New(lexer.Config{
			Punctuation:   o.punctuation,
			StopWords:     o.stopWords,
			MinStemSize:   o.minStemSize,
			Language:      o.language,
			StemCacheSize: o.stemCacheSize,
			Resources:     rc,
		}),
		rc:     rc,
		prefix: rax.New[postings.Postings](),
		docs:   make(map[model.PrimaryKey]*document),
		rows:   make(map[model.RowID]model.PrimaryKey),
	}
	if o.suffixTree {
		idx.suffix = rax.New[postings.Postings](rax.WithSuffixMode())
	}

	idx.accounted = idx.memoryLocked()
	if err := rc.AcquireMemory(idx.accounted); err != nil {
		return nil, translateError(err)
	}

	idx.logger.Debug("index created",
		"suffix_tree", o.suffixTree,
		"stemming", o.stemming,
		"memory_limit", o.memoryLimit,
	)
	return idx, nil
}

// Add indexes text under pk. It fails with ErrDuplicateKey if pk is already
// indexed, ErrEmptyText if text has no indexable words and ErrInvalidText if
// text is not valid UTF-8.
func (idx *Index) Add(ctx context.Context, pk model.PrimaryKey, text string) error {
	start := time.Now()
	terms, err := idx.add(ctx, pk, text)
	err = translateError(err)
	idx.metrics.RecordAdd(terms, time.Since(start), err)
	idx.logger.LogAdd(ctx, pk, terms, err)
	return err
}

func (idx *Index) add(ctx context.Context, pk model.PrimaryKey, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	freq, err := idx.analyze(text)
	if err != nil {
		return 0, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, ErrClosed
	}

	w := window.BeginWrite()
	defer w.End()
	if err := idx.addLocked(w, pk, freq); err != nil {
		return 0, err
	}
	return len(freq), nil
}

// Update replaces the text indexed under pk. The document keeps its row.
func (idx *Index) Update(ctx context.Context, pk model.PrimaryKey, text string) error {
	start := time.Now()
	terms, err := idx.update(ctx, pk, text)
	err = translateError(err)
	idx.metrics.RecordAdd(terms, time.Since(start), err)
	idx.logger.LogUpdate(ctx, pk, terms, err)
	return err
}

func (idx *Index) update(ctx context.Context, pk model.PrimaryKey, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	freq, err := idx.analyze(text)
	if err != nil {
		return 0, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, ErrClosed
	}
	doc, ok := idx.docs[pk]
	if !ok {
		return 0, ErrNotFound
	}

	w := window.BeginWrite()
	defer w.End()

	terms := slices.Sorted(maps.Keys(freq))
	reserved := idx.estimate(w, terms)
	if err := idx.rc.AcquireMemory(reserved); err != nil {
		return 0, err
	}

	for _, term := range doc.terms {
		idx.removeTerm(w, term, doc.row)
	}
	for _, term := range terms {
		idx.addTerm(w, term, doc.row, freq[term])
	}
	doc.terms = terms
	idx.settle(reserved)
	return len(terms), nil
}

// BatchAddResult reports the outcome of BatchAdd.
type BatchAddResult struct {
	Added  []model.PrimaryKey         // Keys indexed, ascending
	Errors map[model.PrimaryKey]error // Failures by key
}

// BatchAdd indexes many documents. Texts are tokenized in parallel by the
// background workers, then inserted in ascending key order within a single
// write window. A failing document does not stop the others.
func (idx *Index) BatchAdd(ctx context.Context, docs map[model.PrimaryKey]string) BatchAddResult {
	start := time.Now()
	keys := slices.Sorted(maps.Keys(docs))
	result := BatchAddResult{
		Added:  make([]model.PrimaryKey, 0, len(keys)),
		Errors: make(map[model.PrimaryKey]error),
	}

	prepared, err := idx.analyzeAll(ctx, keys, docs)
	if err == nil {
		err = idx.batchAddLocked(keys, prepared, &result)
	}
	if err != nil {
		err = translateError(err)
		result.Added = result.Added[:0]
		for _, pk := range keys {
			result.Errors[pk] = err
		}
	}

	failed := len(result.Errors)
	idx.metrics.RecordBatchAdd(len(keys), failed, time.Since(start))
	idx.logger.LogBatchAdd(ctx, len(keys), failed)
	return result
}

type analyzed struct {
	freq map[string]uint32
	err  error
}

// analyzeAll tokenizes docs on the background workers. Only cancellation is
// returned as an error; tokenization failures are kept per document.
func (idx *Index) analyzeAll(ctx context.Context, keys []model.PrimaryKey, docs map[model.PrimaryKey]string) ([]analyzed, error) {
	out := make([]analyzed, len(keys))
	workers := idx.rc.BackgroundWorkers()

	g, gctx := errgroup.WithContext(ctx)
	for worker := range workers {
		g.Go(func() error {
			if err := idx.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer idx.rc.ReleaseBackground()

			for i := worker; i < len(keys); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i].freq, out[i].err = idx.analyze(docs[keys[i]])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (idx *Index) batchAddLocked(keys []model.PrimaryKey, docs []analyzed, result *BatchAddResult) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return ErrClosed
	}

	w := window.BeginWrite()
	defer w.End()
	for i, pk := range keys {
		err := docs[i].err
		if err == nil {
			err = idx.addLocked(w, pk, docs[i].freq)
		}
		if err != nil {
			result.Errors[pk] = translateError(err)
			continue
		}
		result.Added = append(result.Added, pk)
	}
	return nil
}

// Delete removes the document indexed under pk.
func (idx *Index) Delete(ctx context.Context, pk model.PrimaryKey) error {
	start := time.Now()
	err := translateError(idx.delete(ctx, pk))
	idx.metrics.RecordDelete(time.Since(start), err)
	idx.logger.LogDelete(ctx, pk, err)
	return err
}

func (idx *Index) delete(ctx context.Context, pk model.PrimaryKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return ErrClosed
	}
	doc, ok := idx.docs[pk]
	if !ok {
		return ErrNotFound
	}

	w := window.BeginWrite()
	for _, term := range doc.terms {
		idx.removeTerm(w, term, doc.row)
	}
	w.End()

	delete(idx.docs, pk)
	delete(idx.rows, doc.row)
	idx.settle(0)
	return nil
}

// Contains reports whether pk is indexed.
func (idx *Index) Contains(pk model.PrimaryKey) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.docs[pk]
	return ok
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Close releases every postings object and the accounted memory. Further
// calls return ErrClosed; closing twice is a no-op.
func (idx *Index) Close() error {
	if idx == nil {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil
	}
	idx.closed = true

	w := window.BeginWrite()
	clearTree(w, idx.suffix)
	clearTree(w, idx.prefix)
	w.End()

	idx.docs = nil
	idx.rows = nil
	idx.postingsBytes = 0
	idx.rc.ReleaseMemory(idx.accounted)
	idx.accounted = 0

	idx.logger.Debug("index closed")
	return nil
}

// analyze tokenizes text and counts term frequencies.
func (idx *Index) analyze(text string) (map[string]uint32, error) {
	tokens, err := idx.lexer.Tokenize(text, idx.opts.stemming)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyText
	}
	freq := make(map[string]uint32, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq, nil
}

// addLocked indexes a new document inside the write window w.
func (idx *Index) addLocked(w *window.Write, pk model.PrimaryKey, freq map[string]uint32) error {
	if _, ok := idx.docs[pk]; ok {
		return ErrDuplicateKey
	}
	row, err := conv.RowID(idx.nextRow)
	if err != nil {
		return err
	}

	terms := slices.Sorted(maps.Keys(freq))
	reserved := idx.estimate(w, terms)
	if err := idx.rc.AcquireMemory(reserved); err != nil {
		return err
	}

	for _, term := range terms {
		idx.addTerm(w, term, row, freq[term])
	}

	idx.nextRow++
	idx.docs[pk] = &document{row: row, terms: terms}
	idx.rows[row] = pk
	idx.settle(reserved)
	return nil
}

// estimate returns the bytes to reserve before indexing terms.
func (idx *Index) estimate(r window.Reader, terms []string) int64 {
	trees := int64(1)
	if idx.suffix != nil {
		trees = 2
	}
	var total int64
	for _, term := range terms {
		if idx.prefix.Lookup(r, []byte(term)) != nil {
			total += existingTermEstimate
			continue
		}
		total += trees * (newTermEstimate + int64(len(term)))
	}
	return total
}

// addTerm records row in the postings of term, creating them in both trees
// when the term is new. The suffix tree holds a second reference to the
// postings object of the prefix tree.
func (idx *Index) addTerm(w *window.Write, term string, row model.RowID, freq uint32) {
	var shared refcount.Ptr[postings.Postings]
	idx.prefix.Mutate(w, []byte(term), func(old refcount.Ptr[postings.Postings]) refcount.Ptr[postings.Postings] {
		if old.IsNil() {
			old = postings.Make()
			if idx.suffix != nil {
				shared = old.Copy()
			}
		} else {
			idx.postingsBytes -= sizeOf(old.Get())
		}
		old.Get().Add(row, freq)
		idx.postingsBytes += sizeOf(old.Get())
		return old
	})
	if shared.IsNil() {
		return
	}
	idx.suffix.Mutate(w, []byte(term), func(old refcount.Ptr[postings.Postings]) refcount.Ptr[postings.Postings] {
		if !old.IsNil() {
			shared.Release()
			return old
		}
		return shared
	})
}

// removeTerm drops row from the postings of term and removes the term from
// both trees once no row is left.
func (idx *Index) removeTerm(w *window.Write, term string, row model.RowID) {
	empty := false
	idx.prefix.Mutate(w, []byte(term), func(old refcount.Ptr[postings.Postings]) refcount.Ptr[postings.Postings] {
		if old.IsNil() {
			return old
		}
		p := old.Get()
		idx.postingsBytes -= sizeOf(p)
		p.Remove(row)
		if p.IsEmpty() {
			empty = true
			old.Release()
			return refcount.Ptr[postings.Postings]{}
		}
		idx.postingsBytes += sizeOf(p)
		return old
	})
	if empty && idx.suffix != nil {
		idx.suffix.Mutate(w, []byte(term), dropTarget)
	}
}

func dropTarget(old refcount.Ptr[postings.Postings]) refcount.Ptr[postings.Postings] {
	old.Release()
	return refcount.Ptr[postings.Postings]{}
}

// clearTree removes every word of t, releasing its targets.
func clearTree(w *window.Write, t *tree) {
	if t == nil {
		return
	}
	words := make([][]byte, 0, t.TotalWordCount())
	for it := t.WordIterator(w, nil); !it.Done(); it.Next() {
		words = append(words, slices.Clone(it.Word()))
	}
	for _, word := range words {
		t.Mutate(w, word, dropTarget)
	}
}

// settle reports the memory change since the last settle to rc, replacing
// the reservation made for it.
func (idx *Index) settle(reserved int64) {
	now := idx.memoryLocked()
	idx.rc.Settle(reserved, now-idx.accounted)
	idx.accounted = now
}

func (idx *Index) memoryLocked() int64 {
	total := idx.prefix.MemoryUsage() + idx.postingsBytes
	if idx.suffix != nil {
		total += idx.suffix.MemoryUsage()
	}
	return total
}

func sizeOf(p *postings.Postings) int64 {
	n, err := conv.Uint64ToInt64(p.SizeInBytes())
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// Stats is a point-in-time summary of an Index.
type Stats struct {
	Documents       int
	Terms           int
	LongestTerm     int
	TreeBytes       int64
	SuffixTreeBytes int64
	PostingsBytes   int64
	MemoryUsage     int64 // Trees, postings and stem cache
	MemoryLimit     int64
	StemCacheHits   int64
	StemCacheMisses int64
}

// Stats returns index statistics.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits, misses := idx.lexer.StemCacheStats()
	s := Stats{
		Documents:       len(idx.docs),
		Terms:           idx.prefix.TotalWordCount(),
		LongestTerm:     idx.prefix.LongestWord(),
		TreeBytes:       idx.prefix.MemoryUsage(),
		PostingsBytes:   idx.postingsBytes,
		MemoryUsage:     idx.rc.MemoryUsage(),
		MemoryLimit:     idx.rc.MemoryLimit(),
		StemCacheHits:   hits,
		StemCacheMisses: misses,
	}
	if idx.suffix != nil {
		s.SuffixTreeBytes = idx.suffix.MemoryUsage()
	}
	return s
}
