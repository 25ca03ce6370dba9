package longjump

// Resource is an object whose release must happen when the region that
// acquired it exits, whether it exits normally or through a jump.
type Resource interface {
	Release()
}

// ResourceFunc adapts a function to the Resource interface.
type ResourceFunc func()

// Release calls f.
func (f ResourceFunc) Release() {
	if f != nil {
		f()
	}
}

// StackResource is the entry of a resource on the resource stack of its
// thread. Entries link to the one acquired immediately before them.
//
// A StackResource is released exactly once: either by its Release method on
// the normal exit path, or by a jump unwinding the stack through it. Calling
// Release after a jump already released the resource has no effect, which
// lets code register releases with defer.
type StackResource struct {
	thread   *Thread
	previous *StackResource
	resource Resource
	released bool
}

// Thread returns the thread the resource was acquired on.
func (r *StackResource) Thread() *Thread { return r.thread }

// Previous returns the resource acquired immediately before r.
func (r *StackResource) Previous() *StackResource { return r.previous }

// Released reports whether the resource was released.
func (r *StackResource) Released() bool { return r.released }

// Release pops r from the resource stack and releases it. The resource must
// be the top of the stack.
func (r *StackResource) Release() {
	t := r.thread
	t.checkOwner("StackResource.Release")
	if r.released {
		return
	}
	if t.resources.top != r {
		t.fatal("StackResource.Release", "resource is not the top of the resource stack")
	}
	t.resources.pop().resource.Release()
}

// Acquire pushes r on the resource stack of t and returns its entry.
func (t *Thread) Acquire(r Resource) *StackResource {
	t.checkOwner("Thread.Acquire")
	if r == nil {
		r = ResourceFunc(nil)
	}
	e := &StackResource{thread: t, resource: r}
	t.resources.push(e)
	return e
}

// ResourceStack is the stack of live resources of a thread, ordered by
// acquisition time.
type ResourceStack struct {
	top   *StackResource
	depth int
}

// Top returns the most recently acquired live resource, or nil if the stack
// is empty.
func (s *ResourceStack) Top() *StackResource { return s.top }

// Len returns the number of live resources.
func (s *ResourceStack) Len() int { return s.depth }

func (s *ResourceStack) push(r *StackResource) {
	r.previous = s.top
	s.top = r
	s.depth++
}

// pop unlinks the top resource and marks it released, leaving the stack
// consistent before the caller runs the release logic.
func (s *ResourceStack) pop() *StackResource {
	r := s.top
	if r == nil {
		panic("pop on empty resource stack")
	}
	s.top = r.previous
	s.depth--
	r.released = true
	return r
}

// contains reports whether marker is live on the stack. The nil marker is
// the bottom of every stack.
func (s *ResourceStack) contains(marker *StackResource) bool {
	for r := s.top; r != nil; r = r.previous {
		if r == marker {
			return true
		}
	}
	return marker == nil
}

// UnwindTo releases every resource acquired after marker, most recently
// acquired first, and returns how many were released. The marker itself
// stays live. A nil marker releases the whole stack.
//
// The method panics if marker is not on the stack.
func (s *ResourceStack) UnwindTo(marker *StackResource) int {
	if !s.contains(marker) {
		panic("unwind to a resource that is not on the stack")
	}
	n := 0
	for s.top != marker {
		s.pop().resource.Release()
		n++
	}
	return n
}
