package postings

import (
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/textidx/model"
	"github.com/hupe1980/textidx/refcount"
)

// freqEntrySize approximates the bytes one frequency map entry occupies.
const freqEntrySize = 16

// bitmapPool reuses roaring bitmaps released by destroyed postings.
var bitmapPool = sync.Pool{
	New: func() any {
		return roaring.New()
	},
}

// Postings is the set of rows a word occurs in.
type Postings struct {
	rows *roaring.Bitmap
	// freq holds occurrence counts above one.
	freq map[model.RowID]uint32
}

// New creates an empty Postings.
func New() *Postings {
	rb := bitmapPool.Get().(*roaring.Bitmap)
	rb.Clear()
	return &Postings{rows: rb}
}

// Make creates an empty Postings behind a reference-counted handle, ready to
// be installed as a tree target.
func Make() refcount.Ptr[Postings] {
	return refcount.Make(*New())
}

// Add records that the word occurs freq times in row. Adding a row again
// replaces its frequency. A freq of zero is treated as one.
func (p *Postings) Add(row model.RowID, freq uint32) {
	p.rows.Add(uint32(row))
	if freq <= 1 {
		delete(p.freq, row)
		return
	}
	if p.freq == nil {
		p.freq = make(map[model.RowID]uint32)
	}
	p.freq[row] = freq
}

// Remove deletes row and reports whether it was present.
func (p *Postings) Remove(row model.RowID) bool {
	delete(p.freq, row)
	return p.rows.CheckedRemove(uint32(row))
}

// Contains reports whether row is present.
func (p *Postings) Contains(row model.RowID) bool {
	return p.rows.Contains(uint32(row))
}

// Cardinality returns the number of rows.
func (p *Postings) Cardinality() int {
	return int(p.rows.GetCardinality())
}

// IsEmpty reports whether no row is present.
func (p *Postings) IsEmpty() bool {
	return p.rows.IsEmpty()
}

// Freq returns how often the word occurs in row, or zero if row is absent.
func (p *Postings) Freq(row model.RowID) uint32 {
	if !p.rows.Contains(uint32(row)) {
		return 0
	}
	if f, ok := p.freq[row]; ok {
		return f
	}
	return 1
}

// Rows iterates the rows in ascending order.
func (p *Postings) Rows() iter.Seq[model.RowID] {
	return func(yield func(model.RowID) bool) {
		it := p.rows.Iterator()
		for it.HasNext() {
			if !yield(model.RowID(it.Next())) {
				return
			}
		}
	}
}

// OrInto adds every row to dst.
func (p *Postings) OrInto(dst *roaring.Bitmap) {
	dst.Or(p.rows)
}

// SizeInBytes estimates the memory held by the postings.
func (p *Postings) SizeInBytes() uint64 {
	return p.rows.GetSizeInBytes() + uint64(len(p.freq))*freqEntrySize
}

// Defrag converts bitmap containers to run encoding where that is smaller
// and rebuilds the frequency map, which does not shrink on delete.
func (p *Postings) Defrag() {
	p.rows.RunOptimize()
	if len(p.freq) == 0 {
		p.freq = nil
		return
	}
	freq := make(map[model.RowID]uint32, len(p.freq))
	for row, f := range p.freq {
		freq[row] = f
	}
	p.freq = freq
}

// Destroy returns the bitmap to the pool. It is called when the last
// reference to a tree target is released; p must not be used afterwards.
func (p *Postings) Destroy() {
	if p.rows == nil {
		return
	}
	p.rows.Clear()
	bitmapPool.Put(p.rows)
	p.rows = nil
	p.freq = nil
}
