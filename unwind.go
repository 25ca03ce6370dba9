package longjump

// jump is the panic value carrying control from Scope.Jump to the landing
// point of the target scope. Only the Set call of that scope recovers it;
// every other recover site sees a foreign value and must re-panic.
type jump struct {
	scope  *Scope
	status int
}

// Jumping reports whether a jump is taking place. It should be called inside
// a defer and given the value returned by recover(). Code that recovers a
// value for which Jumping returns true must re-panic it, or the landing
// point is never reached and the thread is left with its bookkeeping already
// rewound to the target scope.
func Jumping(v any) bool {
	_, ok := v.(*jump)
	return ok
}
