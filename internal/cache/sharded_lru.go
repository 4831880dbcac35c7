package cache

import (
	"hash/maphash"

	"github.com/hupe1980/textidx/internal/resource"
)

const numShards = 16

// ShardedLRU is a sharded LRU cache for high-concurrency workloads.
// It distributes entries across 16 shards to reduce lock contention.
type ShardedLRU struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewShardedLRU creates a new sharded LRU cache.
// The capacity is divided evenly across all shards.
func NewShardedLRU(capacity int64, rc *resource.Controller) *ShardedLRU {
	shardCapacity := capacity / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &ShardedLRU{
		seed: maphash.MakeSeed(),
	}

	for i := range numShards {
		s.shards[i] = NewLRU(shardCapacity, rc)
	}

	return s
}

// shard returns the shard for a given key.
func (s *ShardedLRU) shard(key string) *LRU {
	return s.shards[maphash.String(s.seed, key)%numShards]
}

// Get returns a cached value.
func (s *ShardedLRU) Get(key string) (string, bool) {
	return s.shard(key).Get(key)
}

// Set caches a value.
func (s *ShardedLRU) Set(key, value string) {
	s.shard(key).Set(key, value)
}

// Purge removes every entry from every shard.
func (s *ShardedLRU) Purge() {
	for i := range numShards {
		s.shards[i].Purge()
	}
}

// Stats returns aggregated hit/miss statistics.
func (s *ShardedLRU) Stats() (hits, misses int64) {
	for i := range numShards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the total size across all shards.
func (s *ShardedLRU) Size() int64 {
	var total int64
	for i := range numShards {
		total += s.shards[i].Size()
	}
	return total
}

// Len returns the number of entries across all shards.
func (s *ShardedLRU) Len() int {
	total := 0
	for i := range numShards {
		total += s.shards[i].Len()
	}
	return total
}
