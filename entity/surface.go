package entity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/world"
)

// Area is the coarse environment an agent is in.
type Area uint8

const (
	AreaNormal Area = iota
	AreaWater
	AreaAir
	// AreaFixed is used while an agent rests against a near-vertical obstruction it is moving into.
	AreaFixed
	AreaClimbing
)

func (a Area) String() string {
	switch a {
	case AreaNormal:
		return "normal"
	case AreaWater:
		return "water"
	case AreaAir:
		return "air"
	case AreaFixed:
		return "fixed"
	case AreaClimbing:
		return "climbing"
	}
	return "unknown"
}

// Status is the support classification of an agent within its Area.
type Status uint8

const (
	StatusUnsupported Status = iota
	StatusSupported
	StatusSliding
	// StatusContacting is set when the ground is within step range but not touching, so the agent snaps to it.
	StatusContacting
	// StatusFirming is set when the agent is touching walkable ground within the contact tolerance.
	StatusFirming
	StatusNone
)

func (s Status) String() string {
	switch s {
	case StatusUnsupported:
		return "unsupported"
	case StatusSupported:
		return "supported"
	case StatusSliding:
		return "sliding"
	case StatusContacting:
		return "contacting"
	case StatusFirming:
		return "firming"
	case StatusNone:
		return "none"
	}
	return "unknown"
}

// Grounded reports whether the status gives the agent footing.
func (s Status) Grounded() bool {
	return s == StatusSupported || s == StatusContacting || s == StatusFirming
}

// Surface is the persistent surface state of an agent. It is the only classification state carried between ticks.
type Surface struct {
	Area   Area
	Status Status
	// Normal is the supporting surface normal.
	Normal mgl32.Vec3
	// Velocity is the tangential velocity of the supporting surface.
	Velocity mgl32.Vec3
	// Rotation is the smoothed surface alignment rotation.
	Rotation mgl32.Quat
	// Contacting is set when the agent was in contact with its support at the end of the tick.
	Contacting    bool
	WaterDistance float32
	// Fraction is the fraction of the vertical probe at which the support was found.
	Fraction float32
	Layers   world.Layer
	Body     world.BodyID
}

// DefaultSurface returns the surface state of a freshly spawned agent: airborne with no support.
func DefaultSurface() Surface {
	return Surface{
		Area:     AreaAir,
		Status:   StatusUnsupported,
		Normal:   omath.Up,
		Rotation: mgl32.QuatIdent(),
		Fraction: 1,
	}
}
