package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// maxClipPlanes is the number of blocking planes remembered during one integration.
const maxClipPlanes = 5

// Integration is the outcome of moving an agent through the world.
type Integration struct {
	Centre   mgl32.Vec3
	Velocity mgl32.Vec3
	// Iterations is the number of sweeps performed.
	Iterations int
	// Planes is the number of blocking planes met.
	Planes int
	// Pushed is the total displacement applied to resolve overlaps at the start.
	Pushed mgl32.Vec3
	// Stopped is set when the agent came to a dead stop against the planes it met.
	Stopped bool
}

// IntegrateInput describes one collide-and-slide integration.
type IntegrateInput struct {
	World    *world.Snapshot
	Collider world.Collider
	Rotation mgl32.Quat
	Centre   mgl32.Vec3
	Velocity mgl32.Vec3
	// Drag moves the agent this tick without becoming part of its velocity.
	Drag    mgl32.Vec3
	Params  *settings.Params
	Mask    world.Layer
	Exclude world.BodyID
	// Unstoppable agents keep sliding along planes that turn them back against their original motion.
	Unstoppable bool
	DT          float32
	// Contacts is scratch space for overlap queries.
	Contacts []world.Contact
}

// Integrate moves the collider by (velocity + drag)·dt. Overlaps at the start are pushed out first, deepest
// contact first. The move is then swept; on a hit the agent advances to SkinWidth short of the obstacle and the
// remaining displacement and the velocity are clipped against every plane met so far. Two planes that disagree are
// followed along their crease. Whatever remains after MaxIterations sweeps is dropped.
func Integrate(in IntegrateInput) Integration {
	p := in.Params
	out := Integration{Centre: in.Centre, Velocity: in.Velocity}
	out.Centre, out.Velocity, out.Pushed = depenetrate(in, out.Centre, out.Velocity)

	disp := clipAgainst(out.Velocity.Add(in.Drag).Mul(in.DT), out.Pushed)
	primal := out.Velocity

	var (
		planes    [maxClipPlanes]mgl32.Vec3
		numPlanes int
	)
	for out.Iterations < p.MaxIterations {
		dir, length := omath.NormalizeLen(disp, mgl32.Vec3{})
		if length <= omath.MinNormal {
			break
		}
		out.Iterations++
		res := in.World.ShapeCast(in.Collider, out.Centre, out.Centre.Add(disp), in.Rotation, in.Mask, in.Exclude)
		if !res.Hit {
			out.Centre = out.Centre.Add(disp)
			disp = mgl32.Vec3{}
			break
		}
		if res.StartSolid {
			// The start overlaps although it was pushed out: the overlap is shallower than the skin, so only motion
			// into it is removed.
			disp = clip(disp, res.Normal)
			out.Velocity = clip(out.Velocity, res.Normal)
			if numPlanes < maxClipPlanes {
				planes[numPlanes] = res.Normal
				numPlanes++
			}
			continue
		}

		advance := max(float32(res.Fraction*length)-p.SkinWidth, 0)
		out.Centre = omath.MulAdd(out.Centre, dir, advance)
		disp = dir.Mul(length - advance)

		if numPlanes == maxClipPlanes {
			out.Velocity, disp, out.Stopped = mgl32.Vec3{}, mgl32.Vec3{}, true
			break
		}
		planes[numPlanes] = res.Normal
		numPlanes++

		i := slidePlane(out.Velocity, planes[:numPlanes])
		switch {
		case i >= 0:
			out.Velocity = clip(out.Velocity, planes[i])
			disp = clip(disp, planes[i])
			// The remaining displacement may still point into an earlier plane when the velocity does not.
			for _, n := range planes[:numPlanes] {
				disp = clip(disp, n)
			}
		case numPlanes == 2:
			crease := omath.Normalize(omath.Cross(planes[0], planes[1]), mgl32.Vec3{})
			out.Velocity = crease.Mul(omath.Dot(crease, out.Velocity))
			disp = crease.Mul(omath.Dot(crease, disp))
		default:
			out.Velocity, disp, out.Stopped = mgl32.Vec3{}, mgl32.Vec3{}, true
		}
		if out.Stopped {
			break
		}
		// Clipping against a plane whose normal is not exactly axis aligned leaves float residue, which must not
		// count as motion along the original direction.
		if !in.Unstoppable && primal != (mgl32.Vec3{}) && omath.Dot(out.Velocity, primal) <= omath.Epsilon*omath.LenSqr(primal) {
			out.Velocity, disp, out.Stopped = mgl32.Vec3{}, mgl32.Vec3{}, true
			break
		}
	}
	out.Planes = numPlanes
	return out
}

// depenetrate pushes the centre out of every overlapping body, deepest first, until nothing overlaps or
// MaxIterations pushes were made. Each push leaves SkinWidth of clearance. Velocity into a body pushed out of is
// removed.
func depenetrate(in IntegrateInput, centre, velocity mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	p := in.Params
	var pushed mgl32.Vec3
	contacts := in.Contacts[:0]
	for range p.MaxIterations {
		contacts = in.World.Query(in.Collider, world.Transform{Position: centre, Rotation: in.Rotation}, 0, in.Mask, in.Exclude, 1, contacts[:0])
		if len(contacts) == 0 || contacts[0].Distance >= 0 {
			break
		}
		c := contacts[0]
		push := c.Normal.Mul(p.SkinWidth - c.Distance)
		centre = centre.Add(push)
		pushed = pushed.Add(push)
		velocity = clip(velocity, c.Normal)
	}
	return centre, velocity, pushed
}

// slidePlane returns the index of the first plane whose clipped velocity does not run into any other plane, or -1.
func slidePlane(v mgl32.Vec3, planes []mgl32.Vec3) int {
	for i, n := range planes {
		clipped := clip(v, n)
		ok := true
		for j, m := range planes {
			if j != i && omath.Dot(clipped, m) < -omath.Epsilon {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// clipAgainst removes the part of v that points against the push direction.
func clipAgainst(v, push mgl32.Vec3) mgl32.Vec3 {
	n := omath.Normalize(push, mgl32.Vec3{})
	if n == (mgl32.Vec3{}) {
		return v
	}
	return clip(v, n)
}

// clip removes the component of v into the plane with unit normal n. Motion away from the plane is kept.
func clip(v, n mgl32.Vec3) mgl32.Vec3 {
	if d := omath.Dot(v, n); d < 0 {
		return omath.MulAdd(v, n, -d)
	}
	return v
}
