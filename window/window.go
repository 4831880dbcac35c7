package window

import (
	"fmt"
	"sync/atomic"
)

// Kind distinguishes the two window types.
type Kind uint8

const (
	KindRead Kind = iota
	KindWrite
)

func (k Kind) String() string {
	if k == KindWrite {
		return "write"
	}
	return "read"
}

// ContractViolation is the panic value raised when a token is nil or used
// after its window ended.
type ContractViolation struct {
	Kind   Kind
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("window: %s token %s", e.Kind, e.Reason)
}

// Reader is satisfied by any token that permits non-mutating operations.
// Both *Read and *Write implement it: the single writer may read the
// structure it is mutating.
type Reader interface {
	// CheckRead panics unless the token's window is still open.
	CheckRead()
	// Open reports whether the token's window is still open.
	Open() bool
}

// Write is the capability held by the single mutator of a write window.
type Write struct {
	ended atomic.Bool
}

// BeginWrite mints a token for a newly opened write window.
func BeginWrite() *Write {
	return &Write{}
}

// End closes the window. Further use of w panics.
func (w *Write) End() {
	w.ended.Store(true)
}

// Open reports whether the window is still open.
func (w *Write) Open() bool {
	return w != nil && !w.ended.Load()
}

// CheckWrite panics unless w is an open write token.
func (w *Write) CheckWrite() {
	if w == nil {
		panic(&ContractViolation{Kind: KindWrite, Reason: "is nil"})
	}
	if w.ended.Load() {
		panic(&ContractViolation{Kind: KindWrite, Reason: "used after its window ended"})
	}
}

// CheckRead implements Reader.
func (w *Write) CheckRead() {
	w.CheckWrite()
}

// Read is the capability held by every participant of a read window.
// A single token may be shared by any number of goroutines.
type Read struct {
	ended atomic.Bool
}

// BeginRead mints a token for a newly opened read window.
func BeginRead() *Read {
	return &Read{}
}

// End closes the window. Further use of r panics.
func (r *Read) End() {
	r.ended.Store(true)
}

// Open reports whether the window is still open.
func (r *Read) Open() bool {
	return r != nil && !r.ended.Load()
}

// CheckRead implements Reader.
func (r *Read) CheckRead() {
	if r == nil {
		panic(&ContractViolation{Kind: KindRead, Reason: "is nil"})
	}
	if r.ended.Load() {
		panic(&ContractViolation{Kind: KindRead, Reason: "used after its window ended"})
	}
}

var (
	_ Reader = (*Read)(nil)
	_ Reader = (*Write)(nil)
)
