// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow when
// converting between signed/unsigned and different bit-width integer types.
// Every error wraps ErrOverflow.
//
// Use cases:
//   - Allocating 32-bit row ids from a 64-bit counter
//   - Converting unsigned postings byte sizes to signed memory accounting
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
