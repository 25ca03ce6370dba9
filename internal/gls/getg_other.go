//go:build !amd64 && !arm64

package gls

// getg falls back to the goroutine id on architectures where the g register
// is not read directly. It is orders of magnitude slower but yields a value
// that is unique among live goroutines, which is all the callers rely on.
func getg() uintptr { return uintptr(ID()) }
