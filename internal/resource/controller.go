package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxBackgroundWorkers is the maximum number of concurrent background jobs.
	// If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// DefragNodesPerSec paces defragmentation walks.
	// If 0, unlimited.
	DefragNodesPerSec int64
}

// Controller manages global resources (memory, concurrency, defrag pacing).
type Controller struct {
	cfg Config

	// Memory
	memUsed atomic.Int64

	// Concurrency
	bgSem *semaphore.Weighted

	// Defrag
	defragLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}

	if cfg.DefragNodesPerSec > 0 {
		c.defragLimiter = rate.NewLimiter(rate.Limit(cfg.DefragNodesPerSec), int(cfg.DefragNodesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// TryAcquireMemory reserves memory if the limit allows it.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	limit := c.cfg.MemoryLimitBytes
	for {
		used := c.memUsed.Load()
		if limit > 0 && used+bytes > limit {
			return false
		}
		if c.memUsed.CompareAndSwap(used, used+bytes) {
			return true
		}
	}
}

// ForceAcquireMemory records memory that is already in use, even past the
// limit. Later AcquireMemory calls fail until enough is released.
func (c *Controller) ForceAcquireMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.memUsed.Add(bytes)
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.memUsed.Add(-bytes)
}

// Settle replaces a reservation with the memory actually consumed.
func (c *Controller) Settle(reserved, actual int64) {
	switch {
	case actual > reserved:
		c.ForceAcquireMemory(actual - reserved)
	case actual < reserved:
		c.ReleaseMemory(reserved - actual)
	}
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireBackground attempts to reserve a background worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// ReleaseBackground releases a background worker slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// BackgroundWorkers returns the number of background worker slots.
func (c *Controller) BackgroundWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxBackgroundWorkers)
}

// WaitDefrag waits until the defrag pace allows visiting n more nodes.
// Requests larger than one second's budget are split.
func (c *Controller) WaitDefrag(ctx context.Context, n int) error {
	if c == nil || c.defragLimiter == nil {
		return nil
	}
	burst := c.defragLimiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := c.defragLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

