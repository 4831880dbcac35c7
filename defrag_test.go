package textidx

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/textidx/model"
)

func TestDefrag(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	idx := newIndex(t, WithSuffixTree(), WithDefragRate(0), WithMetricsCollector(metrics))
	ctx := t.Context()

	for pk := model.PrimaryKey(0); pk < 300; pk++ {
		require.NoError(t, idx.Add(ctx, pk, fmt.Sprintf("item%03d group%d", pk, pk%7)))
	}
	for pk := model.PrimaryKey(0); pk < 300; pk += 2 {
		require.NoError(t, idx.Delete(ctx, pk))
	}
	before, err := idx.PrefixSearch(ctx, "group3")
	require.NoError(t, err)

	stats, err := idx.Defrag(ctx)
	require.NoError(t, err)

	s := idx.Stats()
	assert.Positive(t, stats.Nodes)
	// Postings are shared by both trees and compacted once per word.
	assert.Equal(t, s.Terms, stats.Words)
	assert.LessOrEqual(t, stats.BytesAfter, stats.BytesBefore)
	assert.Equal(t, stats.BytesBefore-stats.BytesAfter, stats.Reclaimed())
	assert.Equal(t, s.TreeBytes+s.SuffixTreeBytes+s.PostingsBytes, stats.BytesAfter)
	checkAccounting(t, idx)

	after, err := idx.PrefixSearch(ctx, "group3")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	m := metrics.GetStats()
	assert.Equal(t, int64(1), m.DefragCount)
	assert.Equal(t, int64(stats.Nodes), m.DefragNodes)
}

func TestDefrag_Empty(t *testing.T) {
	idx := newIndex(t)
	stats, err := idx.Defrag(t.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Words)
	assert.Equal(t, stats.BytesBefore, stats.BytesAfter)
}

func TestDefrag_Cancelled(t *testing.T) {
	idx := newIndex(t)
	addAll(t, idx, animals)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := idx.Defrag(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefrag_Paced(t *testing.T) {
	idx := newIndex(t, WithDefragRate(1_000_000))
	addAll(t, idx, animals)

	stats, err := idx.Defrag(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Words)
	checkAccounting(t, idx)
}
