package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

const (
	tick      = float32(1) / 60
	agentBody = world.BodyID(100)
)

var gravity = mgl32.Vec3{0, -9.8, 0}

func approx(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

func body(id world.BodyID, layer world.Layer, c world.Collider, t world.Transform) world.Body {
	return world.Body{ID: id, Collider: c, Transform: t, Filter: world.Filter{Belongs: layer, Collides: world.LayerAll}}
}

func ground() world.Body {
	return body(1, world.LayerTerrain, world.NewPlane(), world.Identity())
}

// humanoid returns a capsule agent with its feet at feet, together with its body.
func humanoid(feet mgl32.Vec3) (entity.Agent, world.Body) {
	c := world.NewCapsule(0.5, 0.4)
	com := mgl32.Vec3{0, c.Extent(), 0}
	a := entity.NewAgent("humanoid", agentBody, feet, 0, com)
	b := body(agentBody, world.LayerAgent, c, world.At(feet.Add(com)))
	return a, b
}

func frame(snap *world.Snapshot, p settings.Params) Frame {
	return Frame{World: snap, Params: p, Gravity: gravity, DT: tick}
}

func standingSurface() entity.Surface {
	s := entity.DefaultSurface()
	s.Area = entity.AreaNormal
	s.Status = entity.StatusSupported
	s.Contacting = true
	s.Fraction = 0
	return s
}
