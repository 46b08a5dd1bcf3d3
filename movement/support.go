package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// Support is the result of CheckSupport.
type Support struct {
	Status   entity.Status
	Normal   mgl32.Vec3
	Velocity mgl32.Vec3
	Body     world.BodyID
	// Gap is the separation of the deciding contact. It is negative when the agent overlaps it.
	Gap float32
}

// CheckSupport moves the agent by its half-step velocity for dt plus ContactTolerance along gravity and looks for
// contacts that block the move. The most upward-facing blocking contact decides the result: Supported if it is
// walkable, Sliding if it is too steep. Without a blocking contact the agent is Unsupported. Equal normals keep the
// earlier contact, so the nearest one wins.
func CheckSupport(contacts []world.Contact, velocity, up mgl32.Vec3, p *settings.Params, dt float32) Support {
	out := Support{Status: entity.StatusUnsupported, Normal: up}
	probe := omath.MulAdd(velocity.Mul(dt), up, -p.ContactTolerance)

	best := float32(-2)
	found := false
	for _, c := range contacts {
		if c.Distance+omath.Dot(probe, c.Normal) >= 0 {
			continue
		}
		if d := omath.Dot(c.Normal, up); d > best {
			best = d
			out.Normal = c.Normal
			out.Velocity = c.Velocity
			out.Body = c.Body
			out.Gap = c.Distance
			found = true
		}
	}
	if !found {
		return out
	}
	if walkable(out.Normal, up, p.StepSlope) {
		out.Status = entity.StatusSupported
	} else {
		out.Status = entity.StatusSliding
	}
	return out
}
