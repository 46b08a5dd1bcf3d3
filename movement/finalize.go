package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
)

// Transform is the final placement of an agent for a tick.
type Transform struct {
	Position        mgl32.Vec3
	Orientation     mgl32.Quat
	SurfaceRotation mgl32.Quat
	// AngularVelocity is expressed in the agent's local frame.
	AngularVelocity mgl32.Vec3
}

type finalizeInput struct {
	Class  Classification
	Params *settings.Params
	Up     mgl32.Vec3
	// Centre is the collider centre after integration.
	Centre       mgl32.Vec3
	Yaw          float32
	Previous     mgl32.Quat
	PrevSurface  mgl32.Quat
	CenterOfMass mgl32.Vec3
	DT           float32
}

// finalize turns the agent towards its yaw and, with SurfaceUp, tilts it onto the surface normal. The tilt is rate
// limited by AngularSpeed. The pivot is placed so that the centre of mass stays where integration put it.
func finalize(in finalizeInput) Transform {
	p := in.Params
	step := float32(p.AngularSpeed * in.DT)

	desired := mgl32.QuatIdent()
	if p.Flags.SurfaceUp && aligns(in.Class) {
		desired = omath.QuatBetween(in.Up, omath.Normalize(in.Class.Normal, in.Up))
	}
	surface := omath.RotateTowards(omath.QuatNormalize(in.PrevSurface), desired, step)

	yaw := omath.YawQuat(in.Yaw)
	orientation := yaw
	if p.Flags.SurfaceUp {
		orientation = omath.QuatNormalize(omath.QuatMul(surface, yaw))
	}
	if p.Flags.RotateAll {
		orientation = omath.RotateTowards(omath.QuatNormalize(in.Previous), orientation, step)
	}

	return Transform{
		Position:        in.Centre.Sub(omath.Rotate(orientation, in.CenterOfMass)),
		Orientation:     orientation,
		SurfaceRotation: surface,
		AngularVelocity: omath.InverseRotate(orientation, omath.AngularVelocity(in.Previous, orientation, in.DT)),
	}
}

// aligns reports whether the classification gives a surface to align with.
func aligns(c Classification) bool {
	return c.Area == entity.AreaClimbing || c.Status.Grounded() || c.Status == entity.StatusSliding
}
