package longjump

import (
	"context"
	"log/slog"

	"github.com/stealthrocket/longjump/internal/gls"
)

// Thread is the execution context owning a stack of recovery scopes and a
// stack of scoped resources.
//
// A Thread belongs to the goroutine that created it. Every operation on the
// thread, its scopes and its resources must happen on that goroutine; calls
// from any other goroutine are contract violations. Concurrent programs give
// each goroutine its own Thread (see Group).
type Thread struct {
	// The g address is compared first since it is cheap to load; the id
	// confirms a match, the runtime recycling g structs of exited goroutines.
	owner   gls.G
	ownerID uint64
	name    string
	log     *slog.Logger

	onFatal func(*ContractViolation)

	// base is the active recovery scope, the head of the chain linked
	// through Scope.base.
	base      *Scope
	resources ResourceStack

	// Slot written by Jump and read at the landing point.
	status      int
	stickyError error
}

// NewThread creates a Thread owned by the calling goroutine. The thread is
// not attached to the goroutine local storage; use Attach or Run for code
// that needs to retrieve it with Current.
func NewThread(opts ...Option) *Thread {
	c := newConfig(opts)
	return &Thread{
		owner:   gls.Context(),
		ownerID: gls.ID(),
		name:    c.name,
		log:     c.logger,
		onFatal: c.onFatal,
	}
}

// Name returns the name the thread was configured with.
func (t *Thread) Name() string { return t.name }

// LongJumpBase returns the active recovery scope of the thread, or nil if
// no scope is established.
func (t *Thread) LongJumpBase() *Scope { return t.base }

// Resources returns the resource stack of the thread.
func (t *Thread) Resources() *ResourceStack { return &t.resources }

// StickyError returns the error carried by the last jump that landed on
// this thread, until it is cleared.
func (t *Thread) StickyError() error { return t.stickyError }

// Status returns the status of the last jump that landed on this thread, or
// zero if none did since the sticky error was last cleared.
func (t *Thread) Status() int { return t.status }

// ClearStickyError resets the slot written by Jump.
func (t *Thread) ClearStickyError() {
	t.status, t.stickyError = 0, nil
}

// Owned reports whether the calling goroutine owns t. Once the goroutine that
// created t exits, no goroutine owns it.
func (t *Thread) Owned() bool {
	return gls.Context() == t.owner && gls.ID() == t.ownerID
}

// Jump transfers control to the landing point of the active recovery scope.
// Calling it when no scope is established is a contract violation.
//
// See Scope.Jump for the details of the transfer.
func (t *Thread) Jump(status int, err error) {
	t.checkOwner("Thread.Jump")
	if t.base == nil {
		t.fatal("Thread.Jump", "no recovery scope is established")
	}
	t.base.Jump(status, err)
}

func (t *Thread) checkOwner(op string) {
	if !t.Owned() {
		t.fatal(op, "called from a goroutine that does not own the thread")
	}
}

func (t *Thread) checkQuiescent(op string) {
	if t.base != nil {
		t.fatal(op, "recovery scopes are still active")
	}
	if n := t.resources.Len(); n != 0 {
		t.fatal(op, "resources are still live on the resource stack")
	}
}

// Current returns the thread attached to the calling goroutine, or nil if
// there are none.
func Current() *Thread {
	switch t := gls.Context().Load().(type) {
	case *Thread:
		return t
	case nil:
		return nil
	default:
		panic("longjump.Current: goroutine local storage holds a foreign value")
	}
}

// Attach creates a thread owned by the calling goroutine and stores it in
// the goroutine local storage, where Current finds it. The function panics
// if a thread is already attached.
//
// The goroutine must call Detach before it exits.
func Attach(opts ...Option) *Thread {
	g := gls.Context()
	if g.Load() != nil {
		panic("longjump.Attach: a thread is already attached to the goroutine")
	}
	t := NewThread(opts...)
	g.Store(t)
	return t
}

// Detach removes the thread attached to the calling goroutine.
func Detach() {
	gls.Context().Clear()
}

// Run calls f with a thread attached to the calling goroutine for the
// duration of the call. When f returns, the thread must have no active
// recovery scope and no live resource left.
func Run(f func(*Thread), opts ...Option) {
	t := Attach(opts...)
	defer Detach()
	f(t)
	t.checkQuiescent("Run")
}

type threadKey struct{}

// NewContext returns a copy of ctx carrying t.
func NewContext(ctx context.Context, t *Thread) context.Context {
	return context.WithValue(ctx, threadKey{}, t)
}

// FromContext returns the thread carried by ctx, if any.
func FromContext(ctx context.Context) (*Thread, bool) {
	t, ok := ctx.Value(threadKey{}).(*Thread)
	return t, ok
}
