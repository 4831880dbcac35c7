package refcount

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Destroyer is implemented by values that release resources when the last
// reference to them is dropped.
type Destroyer interface {
	Destroy()
}

// ContractViolation is the panic value raised on misuse of a handle.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("refcount: %s: %s", e.Op, e.Reason)
}

// block is the single allocation shared by all handles of one value.
type block[T any] struct {
	refs atomic.Uint32
	val  T
}

// Ptr is an owning handle to a reference-counted value.
// The zero value is a nil handle.
type Ptr[T any] struct {
	b *block[T]
}

// Make allocates a new block holding v with a reference count of 1.
func Make[T any](v T) Ptr[T] {
	b := &block[T]{val: v}
	b.refs.Store(1)
	return Ptr[T]{b: b}
}

// Copy returns a new handle sharing the same value.
//
// Only the numeric value of the count matters here; no memory is published
// by a bump.
func (p Ptr[T]) Copy() Ptr[T] {
	if p.b != nil {
		p.b.refs.Add(1)
	}
	return p
}

// Release drops the reference held by p and leaves p nil. The value is
// destroyed when the count reaches zero.
//
// sync/atomic operations are sequentially consistent, which subsumes the
// acquire-release ordering needed for the final owner to observe every write
// made through earlier owners.
func (p *Ptr[T]) Release() {
	b := p.b
	if b == nil {
		return
	}
	p.b = nil

	for {
		n := b.refs.Load()
		if n == 0 {
			panic(&ContractViolation{Op: "Release", Reason: "reference count already zero"})
		}
		if b.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				if d, ok := any(&b.val).(Destroyer); ok {
					d.Destroy()
				}
			}
			return
		}
	}
}

// Clear is Release under the name used when a handle slot is reset.
func (p *Ptr[T]) Clear() {
	p.Release()
}

// Get returns a pointer to the managed value, or nil for a nil handle.
// The pointer is valid while at least one reference is held.
func (p Ptr[T]) Get() *T {
	if p.b == nil {
		return nil
	}
	return &p.b.val
}

// IsNil reports whether p holds no value.
func (p Ptr[T]) IsNil() bool {
	return p.b == nil
}

// Same reports whether p and other share a block.
func (p Ptr[T]) Same(other Ptr[T]) bool {
	return p.b == other.b
}

// RefCount returns the current count. Intended for tests and diagnostics.
func (p Ptr[T]) RefCount() uint32 {
	if p.b == nil {
		return 0
	}
	return p.b.refs.Load()
}

// IntoRaw transfers p's reference to the caller as an untyped pointer and
// leaves p nil. The count is not changed. The result must later be passed to
// AdoptRaw exactly once.
func (p *Ptr[T]) IntoRaw() unsafe.Pointer {
	b := p.b
	p.b = nil
	return unsafe.Pointer(b) //nolint:gosec // raw slot hand-off
}

// AdoptRaw rebuilds a handle from a pointer produced by IntoRaw, taking over
// the reference it carries. The count is not changed.
func AdoptRaw[T any](raw unsafe.Pointer) Ptr[T] {
	return Ptr[T]{b: (*block[T])(raw)}
}

// CopyRaw rebuilds a handle from a pointer whose reference is owned
// elsewhere, adding a reference for the returned handle.
func CopyRaw[T any](raw unsafe.Pointer) Ptr[T] {
	if raw == nil {
		return Ptr[T]{}
	}
	b := (*block[T])(raw)
	b.refs.Add(1)
	return Ptr[T]{b: b}
}

// ValueFromRaw returns the value behind a raw pointer without touching the
// count. The caller must hold, directly or through the slot, a live reference.
func ValueFromRaw[T any](raw unsafe.Pointer) *T {
	if raw == nil {
		return nil
	}
	return &(*block[T])(raw).val
}
