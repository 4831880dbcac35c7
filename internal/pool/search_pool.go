// Package pool provides object pools for low-allocation term expansion queries.
// Uses sync.Pool for automatic memory reuse of row unions and edit distance rows.
package pool

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultEditCells is the default capacity of the edit distance matrix,
// enough for 64-byte words against 32-byte queries.
const DefaultEditCells = 64 * 33

// SearchContext contains pre-allocated buffers for one query.
// All fields are reusable across multiple queries to eliminate allocations.
type SearchContext struct {
	// Union collects the rows of all expanded terms.
	Union *roaring.Bitmap

	cells []int
	rows  [][]int
}

var searchContextPool = sync.Pool{
	New: func() any {
		return &SearchContext{
			Union: roaring.New(),
			cells: make([]int, 0, DefaultEditCells),
		}
	},
}

// Get retrieves a SearchContext from the pool.
func Get() *SearchContext {
	sc := searchContextPool.Get().(*SearchContext)
	sc.Reset()
	return sc
}

// Put returns a SearchContext to the pool for reuse. An oversized edit
// matrix is dropped so one long query does not pin its memory.
func Put(sc *SearchContext) {
	if cap(sc.cells) > DefaultEditCells*16 {
		sc.cells = make([]int, 0, DefaultEditCells)
	}
	searchContextPool.Put(sc)
}

// Reset clears the SearchContext for reuse.
func (sc *SearchContext) Reset() {
	sc.Union.Clear()
	sc.cells = sc.cells[:0]
	sc.rows = sc.rows[:0]
}

// EditRows returns depth rows of width cells each, backed by one reused
// slice. The contents are unspecified.
func (sc *SearchContext) EditRows(depth, width int) [][]int {
	n := depth * width
	if cap(sc.cells) < n {
		sc.cells = make([]int, n)
	}
	sc.cells = sc.cells[:n]
	sc.rows = sc.rows[:0]
	for i := range depth {
		sc.rows = append(sc.rows, sc.cells[i*width:(i+1)*width:(i+1)*width])
	}
	return sc.rows
}
