// Package flight coalesces concurrent fetches for the same asset key: the
// first caller starts the underlying operation and every caller that arrives
// before it settles receives the identical outcome. The registration is
// dropped unconditionally on settlement, success or failure, so a later call
// starts fresh.
package flight

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group wraps a singleflight group with an in-flight registry so callers can
// skip keys that already have an outstanding fetch (the prefetch path relies
// on this).
type Group struct {
	mu      sync.Mutex
	pending map[string]int
	group   singleflight.Group
}

// New constructs an empty group.
func New() *Group {
	return &Group{pending: make(map[string]int)}
}

// Do runs fn for key, or joins an operation already in flight for the same
// key. shared is true when the result was produced by another caller's fn.
func (g *Group) Do(key string, fn func() ([]byte, error)) (data []byte, err error, shared bool) {
	g.enter(key)
	defer g.leave(key)

	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if v != nil {
		data = v.([]byte)
	}
	return data, err, shared
}

// InFlight reports whether an operation for key is currently outstanding.
// Best-effort: the answer can be stale by the time the caller acts on it,
// which is fine for duplicate-work avoidance.
func (g *Group) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[key] > 0
}

// Pending returns the number of keys with an outstanding operation.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Group) enter(key string) {
	g.mu.Lock()
	g.pending[key]++
	g.mu.Unlock()
}

func (g *Group) leave(key string) {
	g.mu.Lock()
	if g.pending[key] <= 1 {
		delete(g.pending, key)
	} else {
		g.pending[key]--
	}
	g.mu.Unlock()
}
