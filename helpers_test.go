package longjump

import (
	"io"
	"log/slog"
	"testing"
)

func newTestThread(t *testing.T, opts ...Option) *Thread {
	t.Helper()
	return NewThread(append([]Option{
		WithName(t.Name()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)...)
}

// recorder tracks the order in which test resources are released.
type recorder struct {
	released []string
}

func (r *recorder) resource(name string) Resource {
	return ResourceFunc(func() { r.released = append(r.released, name) })
}

func expectViolation(t *testing.T, op string, f func()) *ContractViolation {
	t.Helper()
	var v *ContractViolation
	func() {
		defer func() {
			switch r := recover().(type) {
			case *ContractViolation:
				v = r
			case nil:
			default:
				panic(r)
			}
		}()
		f()
	}()
	if v == nil {
		t.Fatalf("%s: expected a contract violation", op)
	}
	if v.Op != op {
		t.Fatalf("contract violation reported by the wrong operation: want=%q got=%q (%v)", op, v.Op, v)
	}
	return v
}
