package longjump

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// JumpError is the error reported for a task whose execution ended with a
// jump to its outermost recovery scope.
type JumpError struct {
	Status int
	Err    error
}

func (e *JumpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("longjump: jump with status %d", e.Status)
	}
	return fmt.Sprintf("longjump: jump with status %d: %v", e.Status, e.Err)
}

func (e *JumpError) Unwrap() error { return e.Err }

// Group runs tasks on separate goroutines. Each task gets its own thread,
// attached to the goroutine running it, and an outermost recovery scope.
//
// The first task to fail cancels the context of the group. A task fails when
// it returns a non-nil error, or when a jump lands in its outermost scope, in
// which case the failure is reported as a *JumpError.
type Group struct {
	group *errgroup.Group
	ctx   context.Context
	opts  []Option
}

// NewGroup returns a new group and a derived context, canceled when a task
// fails or when Wait returns. The options configure the thread of every task.
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	return &Group{group: group, ctx: ctx, opts: opts}, ctx
}

// SetLimit limits the number of tasks running concurrently. It must not be
// modified while tasks are running.
func (g *Group) SetLimit(n int) {
	g.group.SetLimit(n)
}

// Go starts f on a new goroutine. The context passed to f carries the thread
// of the task (see FromContext).
//
// When f returns, the thread must have no live resource left.
func (g *Group) Go(f func(ctx context.Context, t *Thread) error) {
	g.group.Go(func() (err error) {
		Run(func(t *Thread) {
			ctx := NewContext(g.ctx, t)
			status, carried := Protect(t, func() {
				err = f(ctx, t)
			})
			if status != 0 {
				err = &JumpError{Status: status, Err: carried}
			}
		}, g.opts...)
		return err
	})
}

// Wait blocks until every task returned, then returns the first failure.
func (g *Group) Wait() error {
	return g.group.Wait()
}
