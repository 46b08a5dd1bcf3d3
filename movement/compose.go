package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
)

// intent is what the agent asks for this tick, before any surface is taken into account.
type intent struct {
	// local is the desired velocity in the agent frame: x right, y up, z forward.
	local mgl32.Vec3
	// desired is local expressed in world space.
	desired mgl32.Vec3
	forward mgl32.Vec3
	right   mgl32.Vec3

	yaw     float32
	turning bool
	nav     navigation
}

// resolveIntent turns the input of a tick into a desired velocity and a facing. A direct displacement wins over
// navigation. A facing request wins over the direction of navigation.
func resolveIntent(in *entity.Input, yaw float32, feet, up mgl32.Vec3, p *settings.Params, dt float32) intent {
	out := intent{yaw: yaw}
	out.nav = navigate(in.Navigation, feet, up, p, dt)

	if face := omath.Horizontal(in.Facing, up); in.Facing != (mgl32.Vec3{}) {
		if y, ok := omath.YawFromDirection(face); ok {
			out.yaw = y
		}
	} else if out.nav.active && in.Direct == (mgl32.Vec3{}) {
		if y, ok := omath.YawFromDirection(out.nav.velocity); ok {
			out.yaw = y
		}
	}
	out.turning = out.yaw != yaw

	out.forward = omath.Normalize(omath.Horizontal(omath.YawDirection(out.yaw), up), omath.Forward)
	out.right = omath.Cross(up, out.forward)

	switch {
	case in.Direct != (mgl32.Vec3{}):
		out.local = in.Direct.Mul(1 / dt)
	case out.nav.active:
		v := out.nav.velocity
		out.local = mgl32.Vec3{omath.Dot(v, out.right), omath.Dot(v, up), omath.Dot(v, out.forward)}
	}
	out.local = omath.ClampLen(out.local, p.MaxSpeed)
	out.desired = out.toWorld(out.local, up)
	return out
}

// toWorld maps a vector in the agent frame to world space.
func (i intent) toWorld(v, up mgl32.Vec3) mgl32.Vec3 {
	return omath.MulAdd(omath.MulAdd(i.right.Mul(v[0]), up, v[1]), i.forward, v[2])
}

// surfaceFrame is the tangent frame of a supporting surface. Local x maps onto binormal, y onto normal and z onto
// tangent, so walking forward on a slope follows the slope.
type surfaceFrame struct {
	binormal mgl32.Vec3
	normal   mgl32.Vec3
	tangent  mgl32.Vec3
}

func newSurfaceFrame(forward, up, normal mgl32.Vec3) surfaceFrame {
	right := omath.Cross(up, forward)
	tangent := omath.Normalize(omath.Cross(right, normal), forward)
	return surfaceFrame{
		binormal: omath.Cross(normal, tangent),
		normal:   normal,
		tangent:  tangent,
	}
}

func (f surfaceFrame) toFrame(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{omath.Dot(v, f.binormal), omath.Dot(v, f.normal), omath.Dot(v, f.tangent)}
}

func (f surfaceFrame) fromFrame(v mgl32.Vec3) mgl32.Vec3 {
	return omath.MulAdd(omath.MulAdd(f.binormal.Mul(v[0]), f.normal, v[1]), f.tangent, v[2])
}

// composeInput is everything the composer needs besides the classification.
type composeInput struct {
	Velocity mgl32.Vec3
	Intent   intent
	Up       mgl32.Vec3
	// Gravity is the gravity acceleration already scaled by GravityFactor.
	Gravity mgl32.Vec3
	Params  *settings.Params
	DT      float32
}

// compose produces the velocity of the agent for this tick from its current velocity, the classification and its
// intent. On a surface the velocity relative to the surface is split in the surface frame, the tangential part is
// replaced by the desired velocity and the normal part is kept. Only an agent touching its support loses the part
// of the normal speed that points into it.
func compose(c Classification, in composeInput) mgl32.Vec3 {
	p := in.Params
	v := in.Velocity
	local := in.Intent.local
	gravity := in.Gravity.Mul(in.DT)

	switch c.Area {
	case entity.AreaNormal, entity.AreaFixed:
		f := newSurfaceFrame(in.Intent.forward, in.Up, c.Normal)
		rel := f.toFrame(v.Sub(c.SurfaceVelocity))
		next := mgl32.Vec3{local[0], rel[1], local[2]}
		if local[1] > 0 {
			next[1] = max(rel[1], local[1])
		} else if c.Touching(p) {
			next[1] = max(rel[1], 0)
		}
		switch c.Status {
		case entity.StatusSliding:
			next[0] = rel[0] + float32((local[0]-rel[0])*p.AirDamping)
			next[2] = rel[2] + float32((local[2]-rel[2])*p.AirDamping)
		case entity.StatusContacting:
			if local[1] <= 0 {
				next[1] = -omath.SafeDiv(c.Gap, in.DT, 0)
			}
		}
		v = f.fromFrame(next).Add(c.SurfaceVelocity)
		if c.Status == entity.StatusSupported || c.Status == entity.StatusSliding {
			v = v.Add(gravity)
		}
		if c.Area == entity.AreaFixed {
			if d := omath.Dot(v, c.Obstruction); d < 0 {
				v = omath.MulAdd(v, c.Obstruction, -d)
			}
		}

	case entity.AreaWater:
		f := newSurfaceFrame(in.Intent.forward, in.Up, c.Normal)
		rel := f.toFrame(v.Sub(c.SurfaceVelocity))
		swim := local.Mul(p.WaterDamping)
		v = f.fromFrame(mgl32.Vec3{swim[0], rel[1], swim[2]}).Add(c.SurfaceVelocity)

	case entity.AreaClimbing:
		f := newSurfaceFrame(in.Intent.forward, in.Up, c.Normal)
		climb := local.Mul(p.ClimbDamping)
		v = f.fromFrame(mgl32.Vec3{climb[0], 0, climb[2]}).Add(c.SurfaceVelocity)

	default:
		switch {
		case p.Flags.FlyOnly || p.Flags.CanFly:
			v = in.Intent.desired
		case c.Status == entity.StatusFirming:
			// Ascending: keep the vertical speed, steer horizontally as on the ground.
			f := newSurfaceFrame(in.Intent.forward, in.Up, in.Up)
			rel := f.toFrame(v)
			v = f.fromFrame(mgl32.Vec3{local[0], rel[1], local[2]}).Add(gravity)
		default:
			v = v.Add(gravity)
			if desired := omath.Horizontal(in.Intent.desired, in.Up); desired != (mgl32.Vec3{}) {
				h := omath.Horizontal(v, in.Up)
				control := omath.ClampLen(omath.Lerp(h, desired, p.AirDamping), p.MaxSpeed)
				v = v.Sub(h).Add(control)
			}
		}
	}
	return v
}

// splitImpulse separates an impulse into the part that changes the velocity of the agent for good and the part that
// only pushes it during this tick. A timed impulse is a push for as long as it lasts, a one-shot impulse is a kick.
func splitImpulse(i entity.Impulse) (kick, push mgl32.Vec3) {
	if i.Duration > 0 {
		return mgl32.Vec3{}, i.Velocity
	}
	return i.Velocity, mgl32.Vec3{}
}
