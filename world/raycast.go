package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

// RayHit is the nearest intersection of a ray with the world.
type RayHit struct {
	// Distance along the ray to the hit. Rays that start inside a solid hit at distance 0.
	Distance float32
	// Fraction is Distance divided by the length of the ray.
	Fraction float32
	Position mgl32.Vec3
	// Normal is the surface normal at the hit. Rays starting inside a solid report the reversed ray direction.
	Normal mgl32.Vec3
	Body   BodyID
	Layers Layer
}

// rayBody intersects the ray o + d*t, with d of unit length, against the body. It returns the entry distance and
// the surface normal, or false if the ray misses.
func rayBody(o, d mgl32.Vec3, b *Body) (float32, mgl32.Vec3, bool) {
	switch b.Collider.Kind {
	case ColliderSphere:
		return raySphere(o, d, b.Transform.Position, b.Collider.Radius)
	case ColliderCapsule:
		return rayCapsule(o, d, b.Collider.core(b.Transform))
	case ColliderBox:
		return rayBox(o, d, b.Transform, b.Collider.HalfExtents)
	default:
		return rayPlane(o, d, b.Transform)
	}
}

func raySphere(o, d, c mgl32.Vec3, r float32) (float32, mgl32.Vec3, bool) {
	m := o.Sub(c)
	rr := float32(r * r)
	cc := omath.Dot(m, m) - rr
	if cc <= 0 {
		return 0, d.Mul(-1), true
	}
	b := omath.Dot(m, d)
	if b > 0 {
		return 0, mgl32.Vec3{}, false
	}
	disc := float32(b*b) - cc
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	t := -b - math32.Sqrt(disc)
	if t < 0 {
		t = 0
	}
	return t, omath.Normalize(omath.MulAdd(m, d, t), d.Mul(-1)), true
}

func rayCapsule(o, d mgl32.Vec3, s core) (float32, mgl32.Vec3, bool) {
	q := omath.MulAdd(s.a, s.b.Sub(s.a), closestT(s.a, s.b, o))
	if omath.LenSqr(o.Sub(q)) <= float32(s.r*s.r) {
		return 0, d.Mul(-1), true
	}
	u, l := omath.NormalizeLen(s.b.Sub(s.a), mgl32.Vec3{})
	if l <= omath.MinNormal {
		return raySphere(o, d, s.a, s.r)
	}

	best, normal, hit := float32(math32.MaxFloat32), mgl32.Vec3{}, false
	consider := func(t float32, n mgl32.Vec3) {
		if t < best {
			best, normal, hit = t, n, true
		}
	}

	// Cylinder body, restricted to the span of the segment.
	m := o.Sub(s.a)
	dp := omath.ProjectOnPlane(d, u)
	mp := omath.ProjectOnPlane(m, u)
	qa := omath.Dot(dp, dp)
	if qa > omath.MinNormal {
		qb := omath.Dot(mp, dp)
		qc := omath.Dot(mp, mp) - float32(s.r*s.r)
		if disc := float32(qb*qb) - float32(qa*qc); disc >= 0 {
			t := (-qb - math32.Sqrt(disc)) / qa
			if t >= 0 {
				p := omath.MulAdd(m, d, t)
				if h := omath.Dot(p, u); h >= 0 && h <= l {
					consider(t, omath.Normalize(omath.MulAdd(p, u, -h), d.Mul(-1)))
				}
			}
		}
	}
	if t, n, ok := raySphere(o, d, s.a, s.r); ok {
		consider(t, n)
	}
	if t, n, ok := raySphere(o, d, s.b, s.r); ok {
		consider(t, n)
	}
	return best, normal, hit
}

// rayBox is the slab test performed in box space.
func rayBox(o, d mgl32.Vec3, t Transform, he mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	lo, ld := t.InverseApply(o), t.InverseApplyDir(d)
	tmin, tmax := float32(-math32.MaxFloat32), float32(math32.MaxFloat32)
	axis := -1
	for i := range 3 {
		if math32.Abs(ld[i]) <= omath.Epsilon {
			if lo[i] < -he[i] || lo[i] > he[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / ld[i]
		t1 := (-he[i] - lo[i]) * inv
		t2 := (he[i] - lo[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin, axis = t1, i
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if tmax < 0 {
		return 0, mgl32.Vec3{}, false
	}
	if tmin <= 0 || axis < 0 {
		return 0, d.Mul(-1), true
	}
	var n mgl32.Vec3
	n[axis] = 1
	if ld[axis] > 0 {
		n[axis] = -1
	}
	return tmin, t.ApplyDir(n), true
}

func rayPlane(o, d mgl32.Vec3, t Transform) (float32, mgl32.Vec3, bool) {
	n := t.Up()
	s := omath.Dot(o.Sub(t.Position), n)
	if s <= 0 {
		return 0, d.Mul(-1), true
	}
	denom := omath.Dot(d, n)
	if denom >= -omath.Epsilon {
		return 0, mgl32.Vec3{}, false
	}
	return -s / denom, n, true
}
