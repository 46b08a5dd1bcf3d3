package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

// boxProjections is the number of alternating projections between the agent segment and a box.
const boxProjections = 12

// proximity is the result of a distance kernel. distance is the gap between the two surfaces and is negative when
// they overlap. point lies on the body surface and normal points from the body toward the agent.
type proximity struct {
	distance float32
	point    mgl32.Vec3
	normal   mgl32.Vec3
}

// distanceTo returns the proximity between the swept sphere s and the body b.
func distanceTo(s core, b *Body) proximity {
	switch b.Collider.Kind {
	case ColliderSphere:
		return distanceSphere(s, b.Transform.Position, b.Collider.Radius)
	case ColliderCapsule:
		return distanceCapsule(s, b.Collider.core(b.Transform))
	case ColliderBox:
		return distanceBox(s, b.Transform, b.Collider.HalfExtents)
	default:
		return distancePlane(s, b.Transform)
	}
}

func distanceSphere(s core, centre mgl32.Vec3, radius float32) proximity {
	q := omath.MulAdd(s.a, s.b.Sub(s.a), closestT(s.a, s.b, centre))
	n, l := omath.NormalizeLen(q.Sub(centre), omath.Up)
	return proximity{
		distance: l - radius - s.r,
		point:    omath.MulAdd(centre, n, radius),
		normal:   n,
	}
}

func distanceCapsule(s core, body core) proximity {
	p, q := closestSegments(s.a, s.b, body.a, body.b)
	n, l := omath.NormalizeLen(p.Sub(q), omath.Up)
	return proximity{
		distance: l - body.r - s.r,
		point:    omath.MulAdd(q, n, body.r),
		normal:   n,
	}
}

// distanceBox finds the closest pair between the segment and the box by alternating projections in box space. Both
// sets are convex, so the iteration converges to the closest pair when they are disjoint. When the segment reaches
// into the box the face axes are searched for the shallowest way out instead.
func distanceBox(s core, t Transform, he mgl32.Vec3) proximity {
	a, b := t.InverseApply(s.a), t.InverseApply(s.b)
	p := omath.Lerp(a, b, 0.5)
	q := clampBox(p, he)
	for range boxProjections {
		p = omath.MulAdd(a, b.Sub(a), closestT(a, b, q))
		q = clampBox(p, he)
	}

	if p != q {
		n, l := omath.NormalizeLen(p.Sub(q), omath.Up)
		return proximity{
			distance: l - s.r,
			point:    t.Apply(q),
			normal:   t.ApplyDir(n),
		}
	}

	// Penetrating: separate along the box face axis that needs the smallest push to clear the whole segment. Ties
	// keep the first axis in x, y, z order with the positive face first.
	best, axis, sign := float32(-math32.MaxFloat32), 0, float32(1)
	for i := range 3 {
		if gap := math32.Min(a[i], b[i]) - he[i] - s.r; gap > best {
			best, axis, sign = gap, i, 1
		}
		if gap := -he[i] - math32.Max(a[i], b[i]) - s.r; gap > best {
			best, axis, sign = gap, i, -1
		}
	}
	var n mgl32.Vec3
	n[axis] = sign
	q[axis] = sign * he[axis]
	return proximity{
		distance: best,
		point:    t.Apply(q),
		normal:   t.ApplyDir(n),
	}
}

func distancePlane(s core, t Transform) proximity {
	n := t.Up()
	sa := omath.Dot(s.a.Sub(t.Position), n)
	sb := omath.Dot(s.b.Sub(t.Position), n)
	p, d := s.a, sa
	if sb < sa {
		p, d = s.b, sb
	}
	return proximity{
		distance: d - s.r,
		point:    omath.MulAdd(p, n, -d),
		normal:   n,
	}
}

func clampBox(p, he mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		omath.ClampFloat(p[0], -he[0], he[0]),
		omath.ClampFloat(p[1], -he[1], he[1]),
		omath.ClampFloat(p[2], -he[2], he[2]),
	}
}

// closestT returns the parameter of the point on segment ab closest to p.
func closestT(a, b, p mgl32.Vec3) float32 {
	d := b.Sub(a)
	l := omath.Dot(d, d)
	if l <= omath.MinNormal {
		return 0
	}
	return omath.ClampFloat(omath.Dot(p.Sub(a), d)/l, 0, 1)
}

// closestSegments returns the closest points between segments p1q1 and p2q2.
func closestSegments(p1, q1, p2, q2 mgl32.Vec3) (c1, c2 mgl32.Vec3) {
	d1, d2, r := q1.Sub(p1), q2.Sub(p2), p1.Sub(p2)
	a, e, f := omath.Dot(d1, d1), omath.Dot(d2, d2), omath.Dot(d2, r)

	var s, t float32
	switch {
	case a <= omath.MinNormal && e <= omath.MinNormal:
		return p1, p2
	case a <= omath.MinNormal:
		t = omath.ClampFloat(f/e, 0, 1)
	default:
		c := omath.Dot(d1, r)
		if e <= omath.MinNormal {
			s = omath.ClampFloat(-c/a, 0, 1)
			break
		}
		b := omath.Dot(d1, d2)
		denom := float32(a*e) - float32(b*b)
		if denom > float32(omath.Epsilon*float32(a*e)) {
			s = omath.ClampFloat((float32(b*f)-float32(c*e))/denom, 0, 1)
		}
		t = (float32(b*s) + f) / e
		if t < 0 {
			t = 0
			s = omath.ClampFloat(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = omath.ClampFloat((b-c)/a, 0, 1)
		}
	}
	return omath.MulAdd(p1, d1, s), omath.MulAdd(p2, d2, t)
}
