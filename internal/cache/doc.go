// Package cache provides LRU caching for derived strings such as word stems.
//
// # LRU
//
// LRU is a single-mutex cache bounded by the bytes of its keys and values.
//
// # Sharded LRU
//
// ShardedLRU spreads entries across 16 shards by a maphash of the key so
// concurrent tokenizers rarely contend.
//
// Key features:
//   - Per-shard mutex for minimal contention
//   - Integrated with resource.Controller for memory limits
//   - Hit/miss statistics
package cache
