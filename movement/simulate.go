package movement

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/assert"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// Frame is the read-only state shared by every agent of a tick.
type Frame struct {
	World  *world.Snapshot
	Params settings.Params
	// Gravity is the world gravity acceleration. Up is taken as its opposite.
	Gravity mgl32.Vec3
	DT      float32
	// Trace enables the per-agent trace fields of the result.
	Trace bool
}

// Outcome tells how a tick went for an agent.
type Outcome uint8

const (
	OutcomeNormal Outcome = iota
	// OutcomeStatic is returned when the agent rested on its support and only followed the surface.
	OutcomeStatic
	// OutcomeMissingBody is returned when the agent's body is not in the world. Nothing was simulated.
	OutcomeMissingBody
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNormal:
		return "normal"
	case OutcomeStatic:
		return "static"
	case OutcomeMissingBody:
		return "missing_body"
	}
	return "unknown"
}

// Result is the new state of an agent after a tick. It is only written back by Apply.
type Result struct {
	Outcome         Outcome
	Position        mgl32.Vec3
	Orientation     mgl32.Quat
	Yaw             float32
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Surface         entity.Surface
	// Nav holds the actions to apply to the head of the navigation queue, in order.
	Nav        []NavAction
	Iterations int
	Contacts   int
	Trace      *orderedmap.OrderedMap[string, any]
}

// Apply commits the result to the agent and consumes the input of the tick.
func (r Result) Apply(agent *entity.Agent, input *entity.Input, dt float32) {
	if r.Outcome == OutcomeMissingBody {
		return
	}
	agent.Position = r.Position
	agent.Orientation = r.Orientation
	agent.Yaw = r.Yaw
	agent.Velocity = r.Velocity
	agent.AngularVelocity = r.AngularVelocity
	agent.Surface = r.Surface
	agent.ContactHint = r.Contacts
	if input != nil {
		applyNav(input.Navigation, r.Nav)
		input.Consume(dt)
	}
}

// Simulate runs one tick of movement for the agent. It reads the agent, its input and the frame and returns the new
// state without changing any of them, so agents can be simulated in parallel against the same frame.
func Simulate(agent *entity.Agent, input *entity.Input, frame Frame) (Result, error) {
	assert.IsTrue(frame.DT > 0, "movement: tick length must be positive, got %v", frame.DT)
	body, ok := frame.World.Body(agent.Body)
	if !ok {
		return Result{Outcome: OutcomeMissingBody}, oerror.Newk(oerror.KindMissingBody, "movement: body %d of agent %v is not in the world", agent.Body, agent.Handle)
	}
	if input == nil {
		input = &entity.Input{}
	}

	ctx := newCtx(&frame, agent.ContactHint)
	defer putCtx(ctx)
	if frame.Trace {
		ctx.fields = orderedmap.NewOrderedMap[string, any]()
	}

	p := ctx.params
	dt := frame.DT
	ctx.agent, ctx.input, ctx.body = agent, input, body
	ctx.up = omath.Normalize(frame.Gravity.Mul(-1), omath.Up)
	ctx.rotation = omath.QuatNormalize(agent.Orientation)
	ctx.centre = agent.Position.Add(omath.Rotate(ctx.rotation, agent.CenterOfMass))
	gravity := frame.Gravity.Mul(p.GravityFactor)
	radius, extent := ctx.geometry()

	ctx.query()
	contacts := len(ctx.contacts)
	ctx.note("contacts", contacts)

	ctx.intent = resolveIntent(input, agent.Yaw, omath.MulAdd(ctx.centre, ctx.up, -extent), ctx.up, p, dt)
	ctx.yaw = ctx.intent.yaw

	prev := agent.Surface
	ctx.class = Classify(ClassifyInput{
		World:    frame.World,
		Params:   p,
		Contacts: ctx.contacts,
		Previous: prev,
		Velocity: omath.MulAdd(agent.Velocity, gravity, dt*0.5),
		Desired:  ctx.intent.desired,
		Forward:  ctx.intent.forward,
		Up:       ctx.up,
		Centre:   ctx.centre,
		Feet:     omath.MulAdd(ctx.centre, ctx.up, -extent),
		Radius:   radius,
		Extent:   extent,
		Body:     body.ID,
		DT:       dt,
	})
	class := ctx.class
	ctx.note("area", class.Area.String())
	ctx.note("status", class.Status.String())
	ctx.note("normal", class.Normal)

	if resting(class, prev, p) && input.Idle() && !ctx.intent.turning {
		ctx.note("outcome", OutcomeStatic.String())
		surface := surfaceOf(class, prev.Rotation)
		return Result{
			Outcome:     OutcomeStatic,
			Position:    omath.MulAdd(agent.Position, class.SurfaceVelocity, dt),
			Orientation: agent.Orientation,
			Yaw:         agent.Yaw,
			Velocity:    class.SurfaceVelocity,
			Surface:     surface,
			Nav:         ctx.intent.nav.actions,
			Contacts:    contacts,
			Trace:       ctx.fields,
		}, nil
	}

	if c := class.Climb; c != nil && c.HasPath {
		suction := c.Suction
		if suction <= 0 || suction > 1 {
			suction = 1
		}
		target := omath.Lerp(ctx.centre, c.Point.Position, suction)
		sweep := ResolveClimb(frame.World, body.Collider, ctx.rotation, ctx.centre, target, c.Point.Tangent, p, p.Masks.Solid()&^p.Masks.Climb, body.ID)
		ctx.note("climb_corner", sweep.Corner)
		ctx.note("climb_fractions", sweep.Fractions)
		if sweep.Moved {
			ctx.centre = sweep.Position
			ctx.query()
			contacts = len(ctx.contacts)
		}
	}

	ctx.velocity = compose(class, composeInput{
		Velocity: agent.Velocity,
		Intent:   ctx.intent,
		Up:       ctx.up,
		Gravity:  gravity,
		Params:   p,
		DT:       dt,
	})
	if class.Area == entity.AreaWater {
		swim := float32(ctx.intent.local[1] * p.WaterDamping)
		ctx.velocity = applyBuoyancy(ctx.velocity, class.Normal, class.WaterDistance, swim, p, dt)
		ctx.note("water_distance", class.WaterDistance)
	}
	kick, push := splitImpulse(input.Indirect)
	ctx.velocity = ctx.velocity.Add(kick)

	mask := p.Masks.Solid()
	if input.Unstoppable {
		mask &^= p.Masks.Dynamic
	}
	integ := Integrate(IntegrateInput{
		World:       frame.World,
		Collider:    body.Collider,
		Rotation:    ctx.rotation,
		Centre:      ctx.centre,
		Velocity:    ctx.velocity,
		Drag:        input.Drag.Add(push),
		Params:      p,
		Mask:        mask,
		Exclude:     body.ID,
		Unstoppable: input.Unstoppable,
		DT:          dt,
		Contacts:    ctx.contacts,
	})
	ctx.iterations = integ.Iterations
	ctx.note("iterations", integ.Iterations)

	tr := finalize(finalizeInput{
		Class:        class,
		Params:       p,
		Up:           ctx.up,
		Centre:       integ.Centre,
		Yaw:          ctx.yaw,
		Previous:     ctx.rotation,
		PrevSurface:  prev.Rotation,
		CenterOfMass: agent.CenterOfMass,
		DT:           dt,
	})
	ctx.note("position", tr.Position)
	ctx.note("velocity", integ.Velocity)
	ctx.note("outcome", OutcomeNormal.String())

	return Result{
		Outcome:         OutcomeNormal,
		Position:        tr.Position,
		Orientation:     tr.Orientation,
		Yaw:             ctx.yaw,
		Velocity:        integ.Velocity,
		AngularVelocity: tr.AngularVelocity,
		Surface:         surfaceOf(class, tr.SurfaceRotation),
		Nav:             ctx.intent.nav.actions,
		Iterations:      integ.Iterations,
		Contacts:        contacts,
		Trace:           ctx.fields,
	}, nil
}

// resting reports whether the agent stood on walkable ground last tick and still does. Ground found by the probe
// further away than ContactTolerance does not count, since the agent still has to fall onto it.
func resting(c Classification, prev entity.Surface, p *settings.Params) bool {
	standing := func(a entity.Area, s entity.Status) bool {
		return a == entity.AreaNormal && (s == entity.StatusSupported || s == entity.StatusFirming)
	}
	if !standing(c.Area, c.Status) || !c.Touching(p) || !standing(prev.Area, prev.Status) {
		return false
	}
	return prev.Status == entity.StatusFirming || float32(prev.Fraction*p.RaycastLength) <= p.ContactTolerance
}

func surfaceOf(c Classification, rotation mgl32.Quat) entity.Surface {
	return entity.Surface{
		Area:          c.Area,
		Status:        c.Status,
		Normal:        c.Normal,
		Velocity:      c.SurfaceVelocity,
		Rotation:      rotation,
		Contacting:    c.Contacting,
		WaterDistance: c.WaterDistance,
		Fraction:      c.Fraction,
		Layers:        c.Layers,
		Body:          c.Body,
	}
}
