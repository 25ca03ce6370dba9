package gls

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID returns the id of the calling goroutine, as printed in the header of
// its stack trace. Unlike the address of the g struct, the runtime never
// hands the same id to two goroutines of a process, so it tells apart a
// goroutine from one that exited before it and left its g to be recycled.
//
// ID formats a stack trace header on every call; callers on hot paths should
// compare Context values first and use ID to confirm a match.
func ID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic("gls.ID: cannot parse goroutine id: " + err.Error())
	}
	return id
}
