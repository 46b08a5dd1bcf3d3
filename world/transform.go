package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

// Transform is a rigid world transform. Rotation must be a unit quaternion.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// At returns an unrotated transform at pos.
func At(pos mgl32.Vec3) Transform {
	return Transform{Position: pos, Rotation: mgl32.QuatIdent()}
}

// Apply transforms a local point into world space.
func (t Transform) Apply(local mgl32.Vec3) mgl32.Vec3 {
	return t.Position.Add(omath.Rotate(t.Rotation, local))
}

// ApplyDir rotates a local direction into world space.
func (t Transform) ApplyDir(local mgl32.Vec3) mgl32.Vec3 {
	return omath.Rotate(t.Rotation, local)
}

// InverseApply transforms a world point into local space.
func (t Transform) InverseApply(world mgl32.Vec3) mgl32.Vec3 {
	return omath.InverseRotate(t.Rotation, world.Sub(t.Position))
}

// InverseApplyDir rotates a world direction into local space.
func (t Transform) InverseApplyDir(world mgl32.Vec3) mgl32.Vec3 {
	return omath.InverseRotate(t.Rotation, world)
}

// Up returns the local up axis of the transform in world space.
func (t Transform) Up() mgl32.Vec3 {
	return omath.Rotate(t.Rotation, omath.Up)
}
