package a

import "github.com/stealthrocket/longjump"

func good(t *longjump.Thread) {
	s := longjump.NewScope(t)
	defer s.Close()

	if s.Set(func() {}) != 0 {
		return
	}
}

func neverClosed(t *longjump.Thread) {
	s := longjump.NewScope(t) // want `scope s is never closed`
	s.Set(func() {})
}

func notDeferred(t *longjump.Thread) {
	s := longjump.NewScope(t) // want `scope s is not closed with defer`
	s.Set(func() {})
	s.Close()
}

func setTwice(t *longjump.Thread) {
	s := longjump.NewScope(t)
	defer s.Close()

	s.Set(func() {})
	s.Set(func() {}) // want `Set called more than once on scope s`
}

func setInLoop(t *longjump.Thread, n int) {
	s := longjump.NewScope(t)
	defer s.Close()

	for i := 0; i < n; i++ {
		s.Set(func() {}) // want `Set called more than once on scope s`
	}
}

func setInRange(t *longjump.Thread, steps []func()) {
	s := longjump.NewScope(t)
	defer s.Close()

	for _, step := range steps {
		if s.Set(step) != 0 { // want `Set called more than once on scope s`
			return
		}
	}
}

func scopePerIteration(t *longjump.Thread, steps []func()) {
	for _, step := range steps {
		func() {
			s := longjump.NewScope(t)
			defer s.Close()
			s.Set(step)
		}()
	}
}

func varDecl(t *longjump.Thread) {
	var s = longjump.NewScope(t) // want `scope s is never closed`
	_ = s
}

func foreignGoroutine(t *longjump.Thread) {
	s := longjump.NewScope(t)
	defer s.Close()

	s.Set(func() {
		go func() {
			s.Jump(1, nil) // want `scope s is used from another goroutine`
		}()
	})
}

func foreignGoroutineCall(t *longjump.Thread) {
	s := longjump.NewScope(t)
	defer s.Close()

	go s.Jump(1, nil) // want `scope s is used from another goroutine`
}

func nested(t *longjump.Thread) {
	outer := longjump.NewScope(t)
	defer outer.Close()

	outer.Set(func() {
		inner := longjump.NewScope(t) // want `scope inner is not closed with defer`
		inner.Set(func() {})
		inner.Close()
	})
}

func ownGoroutine() {
	go func() {
		t := longjump.NewThread()
		s := longjump.NewScope(t)
		defer s.Close()
		s.Set(func() {})
	}()
}
