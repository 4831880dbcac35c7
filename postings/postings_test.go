package postings

import (
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/textidx/model"
)

func TestPostings_AddRemove(t *testing.T) {
	p := New()
	assert.True(t, p.IsEmpty())

	p.Add(3, 1)
	p.Add(1, 4)
	p.Add(7, 0)

	assert.Equal(t, 3, p.Cardinality())
	assert.True(t, p.Contains(1))
	assert.False(t, p.Contains(2))
	assert.Equal(t, uint32(4), p.Freq(1))
	assert.Equal(t, uint32(1), p.Freq(3))
	assert.Equal(t, uint32(1), p.Freq(7))
	assert.Equal(t, uint32(0), p.Freq(2))

	// Re-adding replaces the frequency.
	p.Add(1, 1)
	assert.Equal(t, uint32(1), p.Freq(1))

	assert.True(t, p.Remove(3))
	assert.False(t, p.Remove(3))
	assert.Equal(t, []model.RowID{1, 7}, slices.Collect(p.Rows()))
}

func TestPostings_RowsStopsEarly(t *testing.T) {
	p := New()
	for i := model.RowID(0); i < 10; i++ {
		p.Add(i, 1)
	}

	var seen []model.RowID
	for row := range p.Rows() {
		seen = append(seen, row)
		if row == 2 {
			break
		}
	}
	assert.Equal(t, []model.RowID{0, 1, 2}, seen)
}

func TestPostings_OrInto(t *testing.T) {
	a, b := New(), New()
	a.Add(1, 1)
	a.Add(2, 1)
	b.Add(2, 3)
	b.Add(9, 1)

	dst := roaring.New()
	a.OrInto(dst)
	b.OrInto(dst)
	assert.Equal(t, []uint32{1, 2, 9}, dst.ToArray())
}

func TestPostings_Defrag(t *testing.T) {
	p := New()
	for i := model.RowID(0); i < 10000; i++ {
		p.Add(i, uint32(i%3))
	}
	for i := model.RowID(0); i < 10000; i += 2 {
		p.Remove(i)
	}
	before := p.SizeInBytes()
	want := slices.Collect(p.Rows())

	p.Defrag()

	assert.LessOrEqual(t, p.SizeInBytes(), before)
	assert.Equal(t, want, slices.Collect(p.Rows()))
	assert.Equal(t, uint32(2), p.Freq(5))
	assert.Equal(t, uint32(1), p.Freq(7))

	// Dense runs compress well.
	dense := New()
	for i := model.RowID(0); i < 50000; i++ {
		dense.Add(i, 1)
	}
	size := dense.SizeInBytes()
	dense.Defrag()
	assert.Less(t, dense.SizeInBytes(), size)
}

func TestPostings_MakeDestroy(t *testing.T) {
	ref := Make()
	require.False(t, ref.IsNil())
	ref.Get().Add(5, 2)
	assert.Equal(t, 1, ref.Get().Cardinality())

	other := ref.Copy()
	ref.Release()
	require.NotNil(t, other.Get().rows, "destroyed while referenced")

	p := other.Get()
	other.Release()
	assert.Nil(t, p.rows)
	assert.Nil(t, p.freq)

	// A second Destroy is harmless.
	p.Destroy()

	fresh := New()
	assert.True(t, fresh.IsEmpty())
}
