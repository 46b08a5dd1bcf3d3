package world

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyID identifies a body in a World. The zero ID is never assigned and is used to mean "no body".
type BodyID uint32

// Body is a rigid body of the collision world.
type Body struct {
	ID        BodyID
	Collider  Collider
	Transform Transform
	Filter    Filter
	// Velocity is the linear velocity of a moving platform. Agents standing on the body inherit it as their surface
	// velocity.
	Velocity mgl32.Vec3
	// Path is the climb path of a climbable body, or nil.
	Path *Path
}

// Path is an ordered list of points in the local space of the body that owns it. Climbing agents are attracted to
// the path with the given suction.
type Path struct {
	Points  []mgl32.Vec3
	Suction float32
}

// Len returns the number of points of the path. A nil path has no points.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Points)
}

// Clone returns a copy of the path that shares no memory with p.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	return &Path{Points: slices.Clone(p.Points), Suction: p.Suction}
}
