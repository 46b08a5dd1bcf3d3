package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// PathPoint is a point on a climb path together with the frame the climbing agent takes there.
type PathPoint struct {
	Position mgl32.Vec3
	// Tangent is the direction of travel along the path.
	Tangent mgl32.Vec3
	// Normal points from the path toward the agent and is perpendicular to Tangent.
	Normal mgl32.Vec3
	// Segment is the index of the first point of the segment Position lies on.
	Segment int
}

// ClosestOnPath returns the point of the path closest to point. Segments are scanned in order and only a strictly
// smaller squared distance replaces the current best, so the first of several equally close points is kept. The
// tangent follows the path direction, reversed when desired points against it. fallback is used as the normal when
// point lies on the path.
func ClosestOnPath(path *world.Path, t world.Transform, point, desired, fallback mgl32.Vec3) (PathPoint, bool) {
	n := path.Len()
	if n == 0 {
		return PathPoint{}, false
	}
	if n == 1 {
		p := t.Apply(path.Points[0])
		tangent := t.Up()
		return PathPoint{
			Position: p,
			Tangent:  tangent,
			Normal:   omath.Normalize(omath.ProjectOnPlane(point.Sub(p), tangent), fallback),
		}, true
	}

	var (
		best    PathPoint
		bestSqr float32
	)
	a := t.Apply(path.Points[0])
	for i := 1; i < n; i++ {
		b := t.Apply(path.Points[i])
		q := omath.Lerp(a, b, segmentT(a, b, point))
		if d := omath.LenSqr(point.Sub(q)); i == 1 || d < bestSqr {
			bestSqr = d
			best = PathPoint{Position: q, Tangent: omath.Normalize(b.Sub(a), t.Up()), Segment: i - 1}
		}
		a = b
	}
	if omath.Dot(desired, best.Tangent) < 0 {
		best.Tangent = best.Tangent.Mul(-1)
	}
	best.Normal = omath.Normalize(omath.ProjectOnPlane(point.Sub(best.Position), best.Tangent), fallback)
	return best, true
}

func segmentT(a, b, p mgl32.Vec3) float32 {
	d := b.Sub(a)
	l := omath.Dot(d, d)
	if l <= omath.MinNormal {
		return 0
	}
	return omath.ClampFloat(omath.Dot(p.Sub(a), d)/l, 0, 1)
}

// climbTarget picks the nearest climbable contact and locates the agent on its path. Bodies without a path get a
// default frame facing back along the agent's forward direction with the tangent pointing up.
func climbTarget(in ClassifyInput) (ClimbTarget, bool) {
	for _, c := range in.Contacts {
		if !c.Layers.Has(in.Params.Masks.Climb) {
			continue
		}
		fallback := omath.Normalize(in.Forward.Mul(-1), c.Normal)
		target := ClimbTarget{Body: c.Body, Contact: c}
		if path, t, ok := in.World.Path(c.Body); ok {
			if pt, ok := ClosestOnPath(path, t, in.Centre, in.Desired, fallback); ok {
				target.Point, target.HasPath, target.Suction = pt, true, path.Suction
				return target, true
			}
		}
		target.Point = PathPoint{Position: in.Centre, Tangent: in.Up, Normal: fallback}
		return target, true
	}
	return ClimbTarget{}, false
}

// ClimbSweep is the result of moving a climbing agent onto its path.
type ClimbSweep struct {
	Position mgl32.Vec3
	Corner   mgl32.Vec3
	// Fractions are the travelled fractions of the corner segment and the target segment.
	Fractions [2]float32
	Blocked   [2]bool
	// Direct is set when both segments started inside geometry and the agent was placed on the target.
	Direct bool
	Moved  bool
}

// ResolveClimb moves the collider from centre to target in two straight sweeps, first along the path tangent to a
// corner point level with the target and then across onto the target. A blocked sweep stops short of the obstacle by the skin
// width. If both sweeps start inside geometry the agent is placed on the target directly.
func ResolveClimb(snap *world.Snapshot, c world.Collider, rot mgl32.Quat, centre, target, tangent mgl32.Vec3, p *settings.Params, mask world.Layer, exclude world.BodyID) ClimbSweep {
	out := ClimbSweep{Position: centre, Corner: centre}
	if omath.Len(target.Sub(centre)) <= p.ContactTolerance {
		return out
	}
	out.Corner = omath.MulAdd(centre, tangent, omath.Dot(target.Sub(centre), tangent))

	first := sweep(snap, c, rot, centre, out.Corner, p.SkinWidth, mask, exclude)
	second := sweep(snap, c, rot, first.stop, target, p.SkinWidth, mask, exclude)
	out.Fractions = [2]float32{first.fraction, second.fraction}
	out.Blocked = [2]bool{first.blocked, second.blocked}

	if first.solid && second.solid {
		out.Position, out.Direct = target, true
	} else {
		out.Position = second.stop
	}
	out.Moved = out.Position != centre
	return out
}

type sweepResult struct {
	stop     mgl32.Vec3
	fraction float32
	blocked  bool
	solid    bool
}

func sweep(snap *world.Snapshot, c world.Collider, rot mgl32.Quat, from, to mgl32.Vec3, skin float32, mask world.Layer, exclude world.BodyID) sweepResult {
	dir, length := omath.NormalizeLen(to.Sub(from), mgl32.Vec3{})
	if length <= omath.MinNormal {
		return sweepResult{stop: to, fraction: 1}
	}
	res := snap.ShapeCast(c, from, to, rot, mask, exclude)
	switch {
	case !res.Hit:
		return sweepResult{stop: to, fraction: 1}
	case res.StartSolid:
		return sweepResult{stop: from, blocked: true, solid: true}
	}
	advance := max(float32(res.Fraction*length)-skin, 0)
	return sweepResult{
		stop:     omath.MulAdd(from, dir, advance),
		fraction: advance / length,
		blocked:  true,
	}
}
