package entity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/world"
)

// Agent is the persistent movement state of one character.
type Agent struct {
	Handle    Handle
	Archetype string
	// Body is the rigid body that carries the agent's collider in the collision world.
	Body world.BodyID

	// Position is the pivot of the agent, at its feet.
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	// Yaw is the facing angle around the world up axis in radians. Yaw 0 faces +Z.
	Yaw             float32
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	// CenterOfMass is the offset of the collider centre from the pivot, in the agent's local frame.
	CenterOfMass mgl32.Vec3

	Surface Surface
	// ContactHint is the number of contacts found last tick and is only used to size buffers.
	ContactHint int
}

// NewAgent returns an agent standing at position and facing yaw.
func NewAgent(archetype string, body world.BodyID, position mgl32.Vec3, yaw float32, com mgl32.Vec3) Agent {
	yaw = omath.WrapAngle(yaw)
	return Agent{
		Archetype:    archetype,
		Body:         body,
		Position:     position,
		Orientation:  omath.YawQuat(yaw),
		Yaw:          yaw,
		CenterOfMass: com,
		Surface:      DefaultSurface(),
	}
}

// Centre returns the world position of the agent's centre of mass.
func (a *Agent) Centre() mgl32.Vec3 {
	return a.Position.Add(omath.Rotate(a.Orientation, a.CenterOfMass))
}

// Forward returns the horizontal direction the agent faces.
func (a *Agent) Forward() mgl32.Vec3 {
	return omath.YawDirection(a.Yaw)
}
