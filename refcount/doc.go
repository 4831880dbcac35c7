// Package refcount provides Ptr, a pointer-sized reference-counted handle.
//
// A Ptr owns one reference to a single heap block that holds both the atomic
// reference count and the managed value, so no separate control block is
// allocated and a nil handle needs no extra presence flag.
//
// # Ownership
//
//	p := refcount.Make(NewPayload()) // count = 1
//	q := p.Copy()                    // count = 2
//	q.Release()                      // count = 1
//	p.Release()                      // count = 0, Destroy() runs if implemented
//
// Go has no destructors, so every reference must be released explicitly.
// If *T implements Destroyer, Destroy is invoked exactly once by the goroutine
// whose release observes the count reaching zero.
//
// # Raw Pointers
//
// Storage that only understands untyped pointers (such as the target slot of
// a rax node) crosses the boundary with three operations:
//
//   - IntoRaw hands the handle's reference to the caller as an unsafe.Pointer
//     without touching the count.
//   - AdoptRaw rebuilds a handle from a pointer that already carries one
//     reference, without touching the count.
//   - CopyRaw rebuilds a handle from a pointer whose reference belongs to
//     someone else, adding a new reference.
//
// Every IntoRaw must be paired with exactly one AdoptRaw. Using CopyRaw in its
// place leaks a reference; adopting twice releases one reference too many.
//
// # Thread Safety
//
// Copy and Release may be called concurrently on handles that share a block.
// A single Ptr value is not itself safe for concurrent mutation.
package refcount
