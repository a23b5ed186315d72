package ecs

import "github.com/plus3/archon/internal/assert"

// Lock defers structural changes (spawn placement, add, remove, despawn) until
// the matching Unlock. Locking is reentrant: only the outermost Unlock drains
// the deferral log. Stream runners call Lock/Unlock around every invocation so
// actions may freely request structural changes without invalidating the
// archetype set they're currently iterating.
func (w *World) Lock() {
	w.lockDepth++
}

// Unlock releases one level of locking. On the outermost release it drains the
// structural deferral log in FIFO order.
func (w *World) Unlock() {
	assert.That(w.lockDepth > 0, "world: Unlock called without a matching Lock")
	w.lockDepth--
	if w.lockDepth == 0 {
		w.drain()
	}
}

// Locked reports whether the world lock is currently held at any depth.
func (w *World) Locked() bool { return w.lockDepth > 0 }
