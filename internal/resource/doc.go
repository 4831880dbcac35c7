// Package resource implements the Controller for global limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Track and limit memory used by trees, postings and caches (non-blocking, fail-fast)
//   - Concurrency: Limit background workers (batch tokenization)
//   - Defrag: Rate-limit defragmentation walks so they yield to queries
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Background     │  Defrag Rate Limiter    │
//	│  (fail-fast)    │  Workers (sem)  │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireBack-   │  WaitDefrag             │
//	│  ForceAcquire   │  ground         │                         │
//	│  Settle         │                 │                         │
//	│  ReleaseMemory  │  Release        │                         │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory Management
//
// Memory tracking uses an atomic counter checked against the limit.
// AcquireMemory is non-blocking and returns immediately with
// ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(estimate); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	actual := mutate()
//	rc.Settle(estimate, actual)
//
// Tree growth is only known after a mutation, so callers reserve an
// estimate up front and settle it against the measured delta afterwards.
// Settle may push usage past the limit; the next reservation then fails.
//
// # Background Worker Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxBackgroundWorkers: 4,
//	})
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
// # Defrag Pacing
//
//	rc := resource.NewController(resource.Config{
//	    DefragNodesPerSec: 50_000,
//	})
//
//	if err := rc.WaitDefrag(ctx, visited); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
