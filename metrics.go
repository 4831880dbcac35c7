package textidx

import (
	"sync/atomic"
	"time"
)

// QueryKind names a term expansion query.
type QueryKind string

// Query kinds reported to MetricsCollector and Logger.
const (
	QueryPrefix QueryKind = "prefix"
	QuerySuffix QueryKind = "suffix"
	QueryFuzzy  QueryKind = "fuzzy"
	QueryTerms  QueryKind = "terms"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    addCounter      prometheus.Counter
//	    expandHistogram *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordAdd(terms int, duration time.Duration, err error) {
//	    p.addCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordAdd is called after each add or update.
	// terms is the number of distinct terms indexed, err is nil if successful.
	RecordAdd(terms int, duration time.Duration, err error)

	// RecordBatchAdd is called after each batch add.
	// count is the number of documents attempted, failed is the number that failed.
	RecordBatchAdd(count, failed int, duration time.Duration)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordExpand is called after each term expansion query.
	// terms is the number of matching terms.
	RecordExpand(kind QueryKind, terms int, duration time.Duration, err error)

	// RecordDefrag is called after each defragmentation pass.
	// reclaimed is the number of bytes freed.
	RecordDefrag(nodes int, reclaimed int64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)               {}
func (NoopMetricsCollector) RecordBatchAdd(int, int, time.Duration)            {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)                 {}
func (NoopMetricsCollector) RecordExpand(QueryKind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDefrag(int, int64, time.Duration)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTerms         atomic.Int64
	AddTotalNanos    atomic.Int64
	BatchAddCount    atomic.Int64
	BatchAddItems    atomic.Int64
	BatchAddFailed   atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	ExpandCount      atomic.Int64
	ExpandErrors     atomic.Int64
	ExpandTerms      atomic.Int64
	ExpandTotalNanos atomic.Int64
	DefragCount      atomic.Int64
	DefragNodes      atomic.Int64
	DefragReclaimed  atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(terms int, duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
		return
	}
	b.AddTerms.Add(int64(terms))
}

// RecordBatchAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchAdd(count, failed int, duration time.Duration) {
	b.BatchAddCount.Add(1)
	b.BatchAddItems.Add(int64(count))
	b.BatchAddFailed.Add(int64(failed))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordExpand implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExpand(kind QueryKind, terms int, duration time.Duration, err error) {
	b.ExpandCount.Add(1)
	b.ExpandTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ExpandErrors.Add(1)
		return
	}
	b.ExpandTerms.Add(int64(terms))
}

// RecordDefrag implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDefrag(nodes int, reclaimed int64, duration time.Duration) {
	b.DefragCount.Add(1)
	b.DefragNodes.Add(int64(nodes))
	b.DefragReclaimed.Add(reclaimed)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:        b.AddCount.Load(),
		AddErrors:       b.AddErrors.Load(),
		AddTerms:        b.AddTerms.Load(),
		AddAvgNanos:     avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		BatchAddCount:   b.BatchAddCount.Load(),
		BatchAddItems:   b.BatchAddItems.Load(),
		BatchAddFailed:  b.BatchAddFailed.Load(),
		DeleteCount:     b.DeleteCount.Load(),
		DeleteErrors:    b.DeleteErrors.Load(),
		ExpandCount:     b.ExpandCount.Load(),
		ExpandErrors:    b.ExpandErrors.Load(),
		ExpandTerms:     b.ExpandTerms.Load(),
		ExpandAvgNanos:  avg(b.ExpandTotalNanos.Load(), b.ExpandCount.Load()),
		DefragCount:     b.DefragCount.Load(),
		DefragNodes:     b.DefragNodes.Load(),
		DefragReclaimed: b.DefragReclaimed.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount        int64
	AddErrors       int64
	AddTerms        int64
	AddAvgNanos     int64
	BatchAddCount   int64
	BatchAddItems   int64
	BatchAddFailed  int64
	DeleteCount     int64
	DeleteErrors    int64
	ExpandCount     int64
	ExpandErrors    int64
	ExpandTerms     int64
	ExpandAvgNanos  int64
	DefragCount     int64
	DefragNodes     int64
	DefragReclaimed int64
}
