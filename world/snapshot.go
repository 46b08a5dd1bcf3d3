package world

import (
	"cmp"
	"slices"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is a read-only view of the collision world taken at the start of a tick. Bodies are kept sorted by ID so
// that every query visits them in the same order.
type Snapshot struct {
	bodies  []Body
	boxes   []cube.BBox
	bounded []bool
	index   map[BodyID]int
}

// NewSnapshot builds a snapshot from the given bodies. The slice and every climb path are copied, so the caller may
// keep editing them while the snapshot is in use.
func NewSnapshot(bodies []Body) *Snapshot {
	s := &Snapshot{
		bodies:  slices.Clone(bodies),
		boxes:   make([]cube.BBox, len(bodies)),
		bounded: make([]bool, len(bodies)),
		index:   make(map[BodyID]int, len(bodies)),
	}
	slices.SortFunc(s.bodies, func(a, b Body) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Transform.Rotation == (mgl32.Quat{}) {
			b.Transform.Rotation = mgl32.QuatIdent()
		}
		b.Path = b.Path.Clone()
		s.boxes[i], s.bounded[i] = b.Collider.bounds(b.Transform)
		s.index[b.ID] = i
	}
	return s
}

// Body returns the body with the given ID.
func (s *Snapshot) Body(id BodyID) (Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return Body{}, false
	}
	return s.bodies[i], true
}

// Path returns the climb path of the body with the given ID, if it has one.
func (s *Snapshot) Path(id BodyID) (*Path, Transform, bool) {
	i, ok := s.index[id]
	if !ok || s.bodies[i].Path.Len() == 0 {
		return nil, Transform{}, false
	}
	return s.bodies[i].Path, s.bodies[i].Transform, true
}

// Len returns the number of bodies in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.bodies)
}

// Bodies returns the bodies of the snapshot in ascending ID order. The slice must not be modified.
func (s *Snapshot) Bodies() []Body {
	return s.bodies
}

// candidates calls f with every body selected by mask, other than exclude, whose bounds intersect bb.
func (s *Snapshot) candidates(bb cube.BBox, mask Layer, exclude BodyID, f func(b *Body)) {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.ID == exclude || !b.Filter.Matches(mask) {
			continue
		}
		if s.bounded[i] && !s.boxes[i].IntersectsWith(bb) {
			continue
		}
		f(b)
	}
}
