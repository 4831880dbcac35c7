package textidx

import (
	"context"
	"time"

	"github.com/hupe1980/textidx/postings"
	"github.com/hupe1980/textidx/rax"
	"github.com/hupe1980/textidx/window"
)

// DefragStats summarizes a Defrag pass.
type DefragStats struct {
	Nodes       int   // Tree positions visited
	Words       int   // Distinct words whose postings were compacted
	BytesBefore int64 // Tree and postings bytes before the pass
	BytesAfter  int64 // Tree and postings bytes after the pass
}

// Reclaimed returns the bytes freed by the pass. It is negative when
// concurrent adds grew the index more than the pass reclaimed.
func (s DefragStats) Reclaimed() int64 {
	return s.BytesBefore - s.BytesAfter
}

// defragJob is one unit of work done under a single write window: either the
// root node alone or the subtree below one first byte.
type defragJob struct {
	tree  *tree
	first byte
	root  bool
	// nodesOnly leaves the postings alone; set for the suffix tree, whose
	// postings are the prefix tree's.
	nodesOnly bool
}

// Defrag compacts tree nodes and postings in place. The trees are processed
// one first-byte subtree at a time, each in its own write window, so queries
// and writes interleave with the pass. Between subtrees the pass waits for
// the defrag rate configured with WithDefragRate.
func (idx *Index) Defrag(ctx context.Context) (DefragStats, error) {
	start := time.Now()
	stats, err := idx.defrag(ctx)
	err = translateError(err)
	idx.metrics.RecordDefrag(stats.Nodes, stats.Reclaimed(), time.Since(start))
	idx.logger.LogDefrag(ctx, stats, err)
	return stats, err
}

func (idx *Index) defrag(ctx context.Context) (stats DefragStats, err error) {
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	idx.mu.RLock()
	if idx.closed {
		idx.mu.RUnlock()
		return stats, ErrClosed
	}
	stats.BytesBefore = idx.memoryLocked()
	jobs := idx.defragJobsLocked()
	idx.mu.RUnlock()

	defer func() {
		idx.mu.RLock()
		if !idx.closed {
			stats.BytesAfter = idx.memoryLocked()
		}
		idx.mu.RUnlock()
	}()

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		nodes, words, err := idx.defragJob(job)
		if err != nil {
			return stats, err
		}
		stats.Nodes += nodes
		stats.Words += words
		if err := idx.rc.WaitDefrag(ctx, nodes); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (idx *Index) defragJobsLocked() []defragJob {
	r := window.BeginRead()
	defer r.End()

	var jobs []defragJob
	for _, t := range []*tree{idx.prefix, idx.suffix} {
		if t == nil {
			continue
		}
		nodesOnly := t == idx.suffix
		jobs = append(jobs, defragJob{tree: t, root: true, nodesOnly: nodesOnly})
		for it := t.PathIterator(r, nil); !it.Done(); it.Next() {
			jobs = append(jobs, defragJob{tree: t, first: it.Byte(), nodesOnly: nodesOnly})
		}
	}
	return jobs
}

func (idx *Index) defragJob(job defragJob) (nodes, words int, err error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return 0, 0, ErrClosed
	}

	w := window.BeginWrite()
	defer w.End()

	if job.root {
		idx.defragPosition(w, job, job.tree.PathIterator(w, nil), &nodes, &words)
	} else {
		idx.defragSubtree(w, job, job.tree.PathIterator(w, []byte{job.first}), &nodes, &words)
	}
	idx.settle(0)
	return nodes, words, nil
}

func (idx *Index) defragSubtree(w *window.Write, job defragJob, it *rax.PathIterator[postings.Postings], nodes, words *int) {
	idx.defragPosition(w, job, it, nodes, words)
	for ; !it.Done(); it.Next() {
		idx.defragSubtree(w, job, it.DescendNew(), nodes, words)
	}
}

// defragPosition compacts the node at it and, unless the job is nodesOnly,
// the postings of its word, keeping postingsBytes exact.
func (idx *Index) defragPosition(w *window.Write, job defragJob, it *rax.PathIterator[postings.Postings], nodes, words *int) {
	*nodes++
	if job.nodesOnly {
		it.DefragNode(w)
		return
	}
	if !it.IsWord() {
		it.Defrag(w)
		return
	}
	p := it.Target()
	before := sizeOf(p)
	it.Defrag(w)
	idx.postingsBytes += sizeOf(p) - before
	*words++
}
