package world

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

// Contact is a body close to a queried shape.
type Contact struct {
	// Distance is the gap between the shape and the body. It is negative when they overlap.
	Distance float32
	// Position is the closest point on the body surface.
	Position mgl32.Vec3
	// Normal points from the body toward the shape.
	Normal mgl32.Vec3
	Body   BodyID
	Layers Layer
	// Velocity is the platform velocity of the body.
	Velocity mgl32.Vec3
}

// Query appends to out every body within maxDistance of the collider placed with t, selected by mask and other than
// exclude. Contacts are sorted by distance, then by body ID, and at most limit contacts are kept. A limit of zero
// or less keeps every contact. The collider must be a sphere or capsule.
func (s *Snapshot) Query(c Collider, t Transform, maxDistance float32, mask Layer, exclude BodyID, limit int, out []Contact) []Contact {
	if !c.Swept() {
		return out
	}
	shape := c.core(t)
	start := len(out)
	s.candidates(shape.bounds(maxDistance), mask, exclude, func(b *Body) {
		p := distanceTo(shape, b)
		if p.distance > maxDistance {
			return
		}
		out = append(out, Contact{
			Distance: p.distance,
			Position: p.point,
			Normal:   p.normal,
			Body:     b.ID,
			Layers:   b.Filter.Belongs,
			Velocity: b.Velocity,
		})
	})

	found := out[start:]
	slices.SortStableFunc(found, func(a, b Contact) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Body, b.Body)
	})
	if limit > 0 && len(found) > limit {
		out = out[:start+limit]
	}
	return out
}

// Raycast returns the nearest body hit by the ray from origin along dir within maxLength. Equal distances resolve to
// the lower body ID.
func (s *Snapshot) Raycast(origin, dir mgl32.Vec3, maxLength float32, mask Layer, exclude BodyID) (RayHit, bool) {
	d := omath.Normalize(dir, mgl32.Vec3{})
	if d == (mgl32.Vec3{}) || maxLength <= 0 {
		return RayHit{}, false
	}
	end := omath.MulAdd(origin, d, maxLength)
	bb := core{a: origin, b: end}.bounds(omath.Epsilon)

	var (
		best  RayHit
		found bool
	)
	s.candidates(bb, mask, exclude, func(b *Body) {
		dist, n, ok := rayBody(origin, d, b)
		if !ok || dist > maxLength {
			return
		}
		if found && dist >= best.Distance {
			return
		}
		best = RayHit{
			Distance: dist,
			Fraction: dist / maxLength,
			Position: omath.MulAdd(origin, d, dist),
			Normal:   n,
			Body:     b.ID,
			Layers:   b.Filter.Belongs,
		}
		found = true
	})
	return best, found
}
