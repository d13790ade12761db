package delivery

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate admits one generate-and-deliver flow at a time. A caller that fails
// to Begin must not proceed; callers never wait.
type Gate struct {
	sem  *semaphore.Weighted
	busy atomic.Bool
}

// NewGate returns an idle gate.
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Begin marks the gate busy. It reports false when a flow already holds it.
func (g *Gate) Begin() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.busy.Store(true)
	return true
}

// End releases the gate. Ending an idle gate is a no-op.
func (g *Gate) End() {
	if g.busy.CompareAndSwap(true, false) {
		g.sem.Release(1)
	}
}

// Busy reports whether a flow holds the gate.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
