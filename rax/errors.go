package rax

import "fmt"

// ContractViolation is the panic value raised when a caller breaks the
// contract of an operation, such as mutating the empty word or reading from
// an exhausted iterator.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("rax: %s: %s", e.Op, e.Reason)
}

func violate(op, reason string) {
	panic(&ContractViolation{Op: op, Reason: reason})
}
