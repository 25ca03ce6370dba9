package longjump

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	if Current() != nil {
		t.Fatal("test goroutine has a thread attached")
	}

	var inside *Thread
	Run(func(th *Thread) {
		inside = Current()
		if inside != th {
			t.Error("Current does not return the thread attached by Run")
		}
		if th.Name() != "worker" {
			t.Errorf("wrong thread name: %q", th.Name())
		}
	}, WithName("worker"), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	if inside == nil {
		t.Error("Run did not attach a thread")
	}
	if Current() != nil {
		t.Error("thread is still attached after Run returned")
	}
}

func TestCurrentIsPerGoroutine(t *testing.T) {
	th := Attach()
	defer Detach()

	done := make(chan *Thread)
	go func() { done <- Current() }()
	if <-done != nil {
		t.Error("thread attached to a goroutine is visible from another")
	}
	if Current() != th {
		t.Error("Current does not return the attached thread")
	}
}

func TestOwnerExited(t *testing.T) {
	created := make(chan *Thread)
	go func() { created <- newTestThread(t) }()
	th := <-created

	for i := 0; i < 100; i++ {
		owned := make(chan bool)
		go func() { owned <- th.Owned() }()
		if <-owned {
			t.Fatal("thread is owned by a goroutine other than its creator")
		}
	}

	ch := make(chan any)
	go func() {
		defer func() { ch <- recover() }()
		NewScope(th)
	}()
	if v, ok := (<-ch).(*ContractViolation); !ok || v.Op != "NewScope" {
		t.Errorf("scope created after the owner exited was not reported: %v", v)
	}
}

func TestAttachTwice(t *testing.T) {
	Attach()
	defer Detach()

	defer func() {
		if recover() == nil {
			t.Error("attaching a second thread did not panic")
		}
	}()
	Attach()
}

func TestRunRequiresQuiescentThread(t *testing.T) {
	expectViolation(t, "Run", func() {
		Run(func(th *Thread) {
			th.Acquire(nil)
		}, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	})
	if Current() != nil {
		t.Error("thread is still attached after Run panicked")
	}
}

func TestThreadContext(t *testing.T) {
	th := newTestThread(t)
	ctx := NewContext(context.Background(), th)

	got, ok := FromContext(ctx)
	if !ok || got != th {
		t.Error("context does not carry the thread")
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context carries a thread")
	}
}

func TestJumpLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	th := NewThread(
		WithName("logged"),
		WithLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	Protect(th, func() {
		th.Acquire(nil)
		th.Jump(7, errors.New("logged error"))
	})

	out := buf.String()
	for _, want := range []string{
		`msg="longjump: jump"`,
		`msg="longjump: landed"`,
		"thread=logged",
		"status=7",
		"released=1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output does not contain %q:\n%s", want, out)
		}
	}
}

func TestViolationLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	th := NewThread(WithName("broken"), WithLogger(slog.New(slog.NewTextHandler(buf, nil))))

	v := expectViolation(t, "Thread.Jump", func() { th.Jump(1, nil) })

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "op=Thread.Jump") {
		t.Errorf("violation was not logged at error level:\n%s", out)
	}
	if want := "longjump.Thread.Jump: no recovery scope is established (thread broken)"; v.Error() != want {
		t.Errorf("wrong violation message:\nwant: %s\n got: %s", want, v.Error())
	}
}
