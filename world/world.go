package world

import (
	"maps"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/sasha-s/go-deadlock"
)

// World is the mutable body registry that snapshots are taken from. It is safe for concurrent use.
type World struct {
	bodies map[BodyID]Body
	nextID BodyID

	deadlock.RWMutex
}

func New() *World {
	return &World{bodies: make(map[BodyID]Body)}
}

// Add adds a body to the world and returns its ID. If b.ID is zero a fresh ID is assigned, otherwise the given ID is
// used and must not already be in use.
func (w *World) Add(b Body) (BodyID, error) {
	w.Lock()
	defer w.Unlock()

	if b.ID == 0 {
		w.nextID++
		for w.bodies[w.nextID].ID != 0 {
			w.nextID++
		}
		b.ID = w.nextID
	} else if _, ok := w.bodies[b.ID]; ok {
		return 0, oerror.Newk(oerror.KindConflict, "world: body %d already exists", b.ID)
	}
	if b.Transform.Rotation == (mgl32.Quat{}) {
		b.Transform.Rotation = mgl32.QuatIdent()
	}
	w.bodies[b.ID] = b
	return b.ID, nil
}

// Remove removes the body with the given ID. It reports whether the body existed.
func (w *World) Remove(id BodyID) bool {
	w.Lock()
	defer w.Unlock()

	_, ok := w.bodies[id]
	delete(w.bodies, id)
	return ok
}

// Move updates the transform and platform velocity of a body. It reports whether the body exists.
func (w *World) Move(id BodyID, t Transform, velocity mgl32.Vec3) bool {
	w.Lock()
	defer w.Unlock()

	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	b.Transform, b.Velocity = t, velocity
	w.bodies[id] = b
	return true
}

// Body returns the body with the given ID.
func (w *World) Body(id BodyID) (Body, bool) {
	w.RLock()
	b, ok := w.bodies[id]
	w.RUnlock()

	return b, ok
}

// Len returns the number of bodies in the world.
func (w *World) Len() int {
	w.RLock()
	defer w.RUnlock()
	return len(w.bodies)
}

// Snapshot returns an immutable copy of the world that can be queried concurrently while the world keeps changing.
func (w *World) Snapshot() *Snapshot {
	w.RLock()
	bodies := make([]Body, 0, len(w.bodies))
	for b := range maps.Values(w.bodies) {
		bodies = append(bodies, b)
	}
	snap := NewSnapshot(bodies)
	w.RUnlock()
	return snap
}
