package longjump

import (
	"errors"
	"fmt"
)

// ErrContractViolation matches every *ContractViolation with errors.Is.
var ErrContractViolation = errors.New("longjump: contract violation")

// ContractViolation describes a misuse of recovery scopes or of the resource
// stack: jumping through a scope that is not the active one, touching a
// thread from a goroutine that does not own it, releasing resources out of
// order. These are programming defects; the bookkeeping of the thread cannot
// be trusted after one was detected, so they are raised as panics that no
// landing point recovers.
type ContractViolation struct {
	// Op is the operation that detected the violation, e.g. "Scope.Jump".
	Op string
	// Thread is the name of the thread the operation was applied to.
	Thread string
	// Reason is a human readable description of the broken precondition.
	Reason string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("longjump.%s: %s (thread %s)", v.Op, v.Reason, v.Thread)
}

func (v *ContractViolation) Is(err error) bool {
	return err == ErrContractViolation
}

func (t *Thread) fatal(op, reason string) {
	v := &ContractViolation{Op: op, Thread: t.name, Reason: reason}
	t.log.Error("longjump: contract violation",
		"op", op,
		"thread", t.name,
		"reason", reason)
	if t.onFatal != nil {
		t.onFatal(v)
	}
	panic(v)
}
