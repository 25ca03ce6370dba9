// Package longjump implements non-local error propagation for interpreters
// and runtimes written in Go.
//
// Deeply nested execution (interpreter loops, compiler passes, native helper
// calls) aborts to a recovery point established further up the call stack,
// carrying an error value, without threading the failure through every
// intermediate return. Scoped resources acquired between the recovery point
// and the failure site are registered on a per-thread resource stack and
// released deterministically, in reverse acquisition order, before control
// reaches the recovery point.
//
// The state lives in a Thread, owned by exactly one goroutine. Recovery
// scopes (Scope) form a chain rooted at the thread, the innermost one being
// the target of jumps. Resources (StackResource) form a second chain, unwound
// by jumps down to the marker each scope saved when it was created.
//
// Misuses of the mechanism, such as jumping through a scope that is not the
// active one or from a goroutine that does not own the thread, are reported as
// *ContractViolation panics and are not meant to be recovered.
package longjump
