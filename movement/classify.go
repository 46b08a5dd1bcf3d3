package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// wallThreshold is the largest |dot(n, up)| of a contact that counts as a near-vertical obstruction.
const wallThreshold = 0.1

// ClassifyInput is everything the surface classifier looks at.
type ClassifyInput struct {
	World    *world.Snapshot
	Params   *settings.Params
	Contacts []world.Contact
	Previous entity.Surface
	// Velocity is the agent velocity half way through the tick, gravity included.
	Velocity mgl32.Vec3
	// Desired is the world-space velocity the agent asks for this tick.
	Desired mgl32.Vec3
	// Forward is the horizontal direction the agent faces.
	Forward mgl32.Vec3
	Up      mgl32.Vec3
	// Centre is the collider centre and Feet the pivot at the bottom of the collider.
	Centre mgl32.Vec3
	Feet   mgl32.Vec3
	Radius float32
	// Extent is the distance from the centre to the bottom of the collider.
	Extent float32
	Body   world.BodyID
	DT     float32
}

// ClimbTarget is the climbable body the agent attaches to and the closest point on its path.
type ClimbTarget struct {
	Body    world.BodyID
	Contact world.Contact
	Point   PathPoint
	// HasPath is false when the body has no path and Point holds the default frame.
	HasPath bool
	Suction float32
}

// Classification is the output of the surface classifier.
type Classification struct {
	Area   entity.Area
	Status entity.Status
	// Normal is the support normal used to build the movement frame.
	Normal          mgl32.Vec3
	SurfaceVelocity mgl32.Vec3
	// Fraction is the fraction of the support probe at which ground was found, 1 when nothing was hit.
	Fraction float32
	// Gap is the distance between the bottom of the collider and the ground found by the support probe. It is
	// negative when the ground is above the bottom of the collider.
	Gap           float32
	Layers        world.Layer
	WaterDistance float32
	Climb         *ClimbTarget
	// Obstruction is the normal of the near-vertical contact when Area is AreaFixed.
	Obstruction mgl32.Vec3
	Body        world.BodyID
	Contacting  bool
}

// Touching reports whether the agent rests on its support rather than hanging above it.
func (c Classification) Touching(p *settings.Params) bool {
	if c.Area != entity.AreaNormal && c.Area != entity.AreaFixed {
		return false
	}
	switch c.Status {
	case entity.StatusFirming:
		return true
	case entity.StatusSupported, entity.StatusSliding:
		return c.Gap <= p.ContactTolerance
	}
	return false
}

// Classify derives the area and status of an agent from its contacts and a set of probes. The first rule that
// applies wins:
//
//  1. fly-only agents are always in the air with no status,
//  2. climbable contacts attach the agent to the climbable body,
//  3. fast upward motion out of water counts as a jump,
//  4. solid contacts and the vertical probe decide the support,
//  5. the forward probe corrects the support at steps and ledges,
//  6. an agent without footing that can swim looks for water.
func Classify(in ClassifyInput) Classification {
	p := in.Params
	out := Classification{
		Area:     entity.AreaAir,
		Status:   entity.StatusUnsupported,
		Normal:   in.Up,
		Fraction: 1,
	}
	if p.Flags.FlyOnly {
		out.Status = entity.StatusNone
		return out
	}

	if climb, ok := climbTarget(in); ok {
		out.Area = entity.AreaClimbing
		out.Status = entity.StatusSupported
		out.Normal = climb.Point.Normal
		out.SurfaceVelocity = climb.Contact.Velocity
		out.Layers = climb.Contact.Layers
		out.Body = climb.Body
		out.Climb = &climb
		out.Fraction = 0
		out.Contacting = true
		return out
	}

	// Buoyancy lifts swimmers faster than a jump would, which is not an ascent.
	if in.Previous.Area != entity.AreaWater && omath.Dot(in.Velocity, in.Up) > p.AscendSpeed {
		out.Status = entity.StatusFirming
		return out
	}

	solid := footing(in)
	for _, c := range solid {
		out.Layers |= c.Layers
	}

	support := CheckSupport(solid, in.Velocity, in.Up, p, in.DT)
	if support.Status != entity.StatusUnsupported {
		out.Area = entity.AreaNormal
		out.Status = support.Status
		out.Normal = support.Normal
		out.SurfaceVelocity = support.Velocity
		out.Body = support.Body
		out.Gap = support.Gap
		out.Fraction = omath.ClampFloat(support.Gap/p.RaycastLength, 0, 1)
	} else {
		verticalProbe(in, &out)
	}

	forwardProbe(in, solid, &out)

	if !out.Status.Grounded() && out.Status != entity.StatusSliding && (p.Flags.CanSwim || p.Buoyancy > 0) {
		waterProbe(in, &out)
	}
	out.Contacting = out.Status.Grounded()
	return out
}

// footing returns the solid, non-climbable contacts that may support the agent. Terrain contacts lying more than
// FootHeight below the feet are ground clutter and are dropped.
func footing(in ClassifyInput) []world.Contact {
	p := in.Params
	solid := make([]world.Contact, 0, len(in.Contacts))
	for _, c := range in.Contacts {
		if c.Layers.Has(p.Masks.Climb) || !c.Layers.Has(p.Masks.Terrain|p.Masks.Dynamic) {
			continue
		}
		if c.Layers.Has(p.Masks.Terrain) && omath.Dot(c.Position.Sub(in.Feet), in.Up) < -p.FootHeight {
			continue
		}
		solid = append(solid, c)
	}
	return solid
}

// verticalProbe casts a ray down from the collider centre and classifies the ground below by the fraction of
// RaycastLength between the bottom of the collider and the hit.
func verticalProbe(in ClassifyInput, out *Classification) {
	p := in.Params
	hit, ok := in.World.Raycast(in.Centre, in.Up.Mul(-1), in.Extent+p.RaycastLength, p.Masks.Terrain|p.Masks.Dynamic, in.Body)
	if !ok {
		return
	}
	gap := hit.Distance - in.Extent
	f := omath.ClampFloat(gap/p.RaycastLength, 0, 1)

	out.Fraction = f
	out.Gap = gap
	out.Layers |= hit.Layers
	if f > p.SupportFraction {
		return
	}

	out.Area = entity.AreaNormal
	out.Normal = hit.Normal
	out.Body = hit.Body
	if b, ok := in.World.Body(hit.Body); ok {
		out.SurfaceVelocity = b.Velocity
	}
	switch {
	case f > p.StepFraction:
		out.Status = entity.StatusSupported
	case !walkable(hit.Normal, in.Up, p.StepSlope):
		out.Status = entity.StatusSliding
	case math32.Abs(gap) <= p.ContactTolerance:
		out.Status = entity.StatusFirming
	default:
		out.Status = entity.StatusContacting
	}
}

// forwardProbe looks at the ground just beyond the collider radius ahead of the agent in the direction it moves. It
// keeps agents from flickering between Sliding and Contacting on rounded ledges and pins agents that walk into walls.
//
// These rules are tuned by play rather than derived, and are covered by tuning tests.
func forwardProbe(in ClassifyInput, solid []world.Contact, out *Classification) {
	p := in.Params
	heading := omath.Normalize(omath.Horizontal(in.Desired, in.Up), mgl32.Vec3{})
	if heading == (mgl32.Vec3{}) {
		return
	}
	if out.Status != entity.StatusSliding && !out.Status.Grounded() {
		return
	}

	slopeHeight := float32(0)
	if p.StepSlope > omath.MinNormal {
		slopeHeight = in.Radius * math32.Sqrt(math32.Max(1-float32(p.StepSlope*p.StepSlope), 0)) / p.StepSlope
	}
	stepRange := p.StepFraction * p.RaycastLength
	origin := omath.MulAdd(omath.MulAdd(in.Centre, heading, in.Radius+p.ContactTolerance), in.Up, slopeHeight)

	hit, ok := in.World.Raycast(origin, in.Up.Mul(-1), slopeHeight+in.Extent+stepRange, p.Masks.Terrain|p.Masks.Dynamic, in.Body)
	// raised is set when the ground ahead is a walkable step above the feet, which the agent may climb rather than
	// being stopped by.
	raised := false
	if ok {
		gap := hit.Distance - slopeHeight - in.Extent
		ahead := walkable(hit.Normal, in.Up, p.StepSlope)
		stepAhead := ahead && math32.Abs(gap) <= stepRange
		raised = stepAhead && gap < -p.ContactTolerance
		switch {
		case out.Status == entity.StatusSliding && in.Previous.Contacting && stepAhead:
			out.Status = entity.StatusContacting
			out.Normal = hit.Normal
			out.Gap = gap
		case out.Status == entity.StatusContacting && !ahead && math32.Abs(gap) <= stepRange:
			out.Status = entity.StatusSliding
		}
	}

	if raised || !out.Status.Grounded() {
		return
	}
	for _, c := range solid {
		if c.Distance > p.ContactTolerance {
			continue
		}
		if math32.Abs(omath.Dot(c.Normal, in.Up)) < wallThreshold && omath.Dot(heading, c.Normal) < 0 {
			out.Area = entity.AreaFixed
			out.Obstruction = c.Normal
			return
		}
	}
}

// waterProbe casts a ray down from WaterDepth above the feet against water bodies. The water distance is the depth
// of the feet below the water surface.
func waterProbe(in ClassifyInput, out *Classification) {
	p := in.Params
	origin := omath.MulAdd(in.Feet, in.Up, p.WaterDepth)
	hit, ok := in.World.Raycast(origin, in.Up.Mul(-1), p.WaterDepth-p.WaterMinHeight, p.Masks.Water, in.Body)
	if !ok {
		return
	}
	out.Area = entity.AreaWater
	out.WaterDistance = p.WaterDepth - hit.Distance
	out.Normal = in.Up
	out.Layers |= hit.Layers
	if b, ok := in.World.Body(hit.Body); ok {
		out.Normal = omath.Normalize(b.Transform.Up(), in.Up)
		out.SurfaceVelocity = b.Velocity
	}
}

// walkable reports whether a surface with normal n can be stood on. A normal exactly at the slope limit is walkable.
func walkable(n, up mgl32.Vec3, slope float32) bool {
	return omath.Dot(n, up) >= slope
}
