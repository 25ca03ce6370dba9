package longjump

// Scope is a recovery scope: a landing point for non-local transfers of
// control on a thread.
//
// Scopes nest with stack discipline. Creating a scope makes it the active
// scope of its thread, closing it restores the scope that was active before.
// The chain of scopes is formed by the back-link each one keeps to its
// predecessor.
//
// The typical use is:
//
//	s := longjump.NewScope(t)
//	defer s.Close()
//
//	if status := s.Set(func() {
//		// fallible work, which may call s.Jump or t.Jump
//	}); status != 0 {
//		err := t.StickyError()
//		// recover from err
//	}
//
// A scope must never outlive the function that created it, and must never be
// used from a goroutine other than the owner of its thread.
type Scope struct {
	thread *Thread
	top    *StackResource
	base   *Scope
	armed  bool
	closed bool
}

// NewScope establishes a recovery scope on t and makes it the active scope.
// The scope records the current top of the resource stack; a jump to the
// scope releases every resource acquired after this point.
func NewScope(t *Thread) *Scope {
	t.checkOwner("NewScope")
	s := &Scope{
		thread: t,
		top:    t.resources.top,
		base:   t.base,
	}
	t.base = s
	return s
}

// Thread returns the thread the scope was established on.
func (s *Scope) Thread() *Thread { return s.thread }

// Previous returns the scope that was active when s was created.
func (s *Scope) Previous() *Scope { return s.base }

// SavedTop returns the top of the resource stack at the time s was created.
func (s *Scope) SavedTop() *StackResource { return s.top }

// Close ends the scope on the normal exit path, restoring the previously
// active scope of the thread. The scope must be the active one: every scope
// created after it must have been closed already.
//
// Close does not touch the resource stack. Resources acquired within the
// region are expected to have been released by their own exit paths.
func (s *Scope) Close() {
	t := s.thread
	t.checkOwner("Scope.Close")
	if s.closed {
		t.fatal("Scope.Close", "scope was already closed")
	}
	if t.base != s {
		t.fatal("Scope.Close", "scope is not the active recovery scope")
	}
	t.base = s.base
	s.closed = true
}

// IsSafeToJump reports whether Jump may be called on s from the calling
// goroutine: the goroutine owns the thread, s is its active scope and the
// landing point of s is set.
func (s *Scope) IsSafeToJump() bool {
	t := s.thread
	return t.Owned() && !s.closed && s.armed && t.base == s && t.resources.contains(s.top)
}

// Set marks the landing point of the scope and runs body under it.
//
// Set returns zero when body returns normally, and the status passed to Jump
// when body, or anything it calls, jumps to s. The error carried by the jump
// is available from the thread's StickyError.
//
// Set must be called exactly once per scope, before any fallible work of the
// protected region begins. Calling it more than once, or after the scope was
// closed, is a misuse with undefined results; it is not checked at runtime
// (the scopecheck analyzer reports it statically).
//
// Panics other than jumps to s propagate through Set unchanged.
//
// On landing, s is the active scope and the resource stack is back at the
// top saved when s was created. Deferred calls run while the jump is in
// flight must not break this: one that acquires a resource or leaves a scope
// open is a contract violation reported by Set.
func (s *Scope) Set(body func()) (status int) {
	t := s.thread
	t.checkOwner("Scope.Set")
	s.armed = true
	defer func() {
		s.armed = false
		if v := recover(); v != nil {
			j, ok := v.(*jump)
			if !ok || j.scope != s {
				panic(v)
			}
			if t.base != s {
				t.fatal("Scope.Set", "a scope created while the jump was in flight is still active")
			}
			if t.resources.top != s.top {
				t.fatal("Scope.Set", "resource stack changed while the jump was in flight")
			}
			status = j.status
			t.log.Debug("longjump: landed",
				"thread", t.name,
				"status", status)
		}
	}()
	body()
	return 0
}

// Jump releases every resource acquired on the thread since s was created,
// most recently acquired first, stores status and err in the thread's sticky
// error slot, and transfers control to the landing point of s, where Set
// returns status. Jump never returns.
//
// The status must be non-zero, zero being reserved for the normal flow. The
// error is relayed by identity and never inspected.
//
// s must be the active scope of its thread, its landing point must be set,
// and the call must happen on the goroutine owning the thread. Violations of
// these preconditions are fatal: the jump is never redirected to another
// scope.
//
// The transfer is a panic recovered by Set, so deferred calls between the
// jump site and the landing point do run. By the time they do, the resource
// stack is already rewound: a deferred StackResource.Release of an unwound
// resource is a no-op. Deferred calls must not recover the jump; see Jumping.
func (s *Scope) Jump(status int, err error) {
	t := s.thread
	t.checkOwner("Scope.Jump")
	switch {
	case status == 0:
		t.fatal("Scope.Jump", "status must be non-zero")
	case s.closed:
		t.fatal("Scope.Jump", "scope was already closed")
	case t.base != s:
		t.fatal("Scope.Jump", "scope is not the active recovery scope")
	case !s.armed:
		t.fatal("Scope.Jump", "landing point of the scope is not set")
	case !t.resources.contains(s.top):
		t.fatal("Scope.Jump", "resource stack was unwound below the scope's saved top")
	}

	n := t.resources.UnwindTo(s.top)
	t.status, t.stickyError = status, err

	t.log.Debug("longjump: jump",
		"thread", t.name,
		"status", status,
		"released", n)

	panic(&jump{scope: s, status: status})
}

// Protect runs body under a new recovery scope of t. It returns zero and a
// nil error when body returns normally, and the status and error of the jump
// when body jumps to the scope. The sticky error of the thread is cleared
// before Protect returns.
func Protect(t *Thread, body func()) (status int, err error) {
	s := NewScope(t)
	defer s.Close()

	if status = s.Set(body); status != 0 {
		err = t.StickyError()
		t.ClearStickyError()
	}
	return status, err
}
