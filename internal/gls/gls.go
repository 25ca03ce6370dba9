// Package gls implements goroutine local storage for the execution contexts
// that own recovery scopes.
//
// Values are keyed by the address of the runtime g struct of the goroutine.
// The runtime recycles g structs, so a goroutine must Clear its entry before
// it exits or the next goroutine reusing the struct observes a stale value.
package gls

import "sync"

// The storage is sharded over 64 buckets selected by masking the g address,
// each bucket guarded by its own mutex. Goroutines started on the same worker
// rarely collide on a bucket, and a sync.Mutex is cheaper than a RWMutex for
// the short critical sections involved.
const (
	shardBits  = 6
	shardCount = 1 << shardBits
	shardMask  = shardCount - 1
)

type shard struct {
	mutex sync.Mutex
	state map[G]any
	_     [48]byte // pad to a cache line
}

var shards [shardCount]shard

// G is a reference to a goroutine, and provides a way
// to load, store and clear a goroutine local context.
type G uintptr

// Context retrieves the goroutine local storage for the calling goroutine.
func Context() G {
	return G(getg())
}

func (g G) shard() *shard {
	// g structs are at least 8 byte aligned, drop the low bits which are
	// always zero so consecutive goroutines spread over the buckets.
	return &shards[(uintptr(g)>>3)&shardMask]
}

// Load loads the goroutine local context.
func (g G) Load() any {
	s := g.shard()
	s.mutex.Lock()
	v := s.state[g]
	s.mutex.Unlock()
	return v
}

// Store stores the goroutine local context.
func (g G) Store(c any) {
	s := g.shard()
	s.mutex.Lock()
	if s.state == nil {
		s.state = make(map[G]any)
	}
	s.state[g] = c
	s.mutex.Unlock()
}

// Clear clears the goroutine local context.
func (g G) Clear() {
	s := g.shard()
	s.mutex.Lock()
	delete(s.state, g)
	s.mutex.Unlock()
}
