package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

const (
	// castIterations bounds the number of conservative advancement steps per body.
	castIterations = 32
	// castTolerance is the gap at which a cast is considered to touch a body.
	castTolerance = float32(1e-4)
)

// CastResult is the first body a swept shape touches.
type CastResult struct {
	Hit bool
	// StartSolid is set when the shape already overlaps the body at the start of the cast.
	StartSolid bool
	// Fraction of the cast travelled before touching the body.
	Fraction float32
	// Position of the shape origin at Fraction.
	Position mgl32.Vec3
	// Normal points from the body toward the shape at the point of contact.
	Normal mgl32.Vec3
	Body   BodyID
	Layers Layer
}

// ShapeCast sweeps the collider with the given rotation from start to end and returns the first body it touches.
// The smallest fraction wins and equal fractions resolve to the lower body ID. The collider must be a sphere or
// capsule.
func (s *Snapshot) ShapeCast(c Collider, start, end mgl32.Vec3, rotation mgl32.Quat, mask Layer, exclude BodyID) CastResult {
	res := CastResult{Fraction: 1, Position: end}
	if !c.Swept() {
		return res
	}
	shape := c.core(Transform{Position: start, Rotation: rotation})
	dir, length := omath.NormalizeLen(end.Sub(start), mgl32.Vec3{})
	swept := shape.bounds(castTolerance)
	if length > 0 {
		swept = union(swept, shape.translate(end.Sub(start)).bounds(castTolerance))
	}

	s.candidates(swept, mask, exclude, func(b *Body) {
		t, n, solid, ok := advance(shape, dir, length, b)
		if !ok {
			return
		}
		f := float32(1)
		if length > 0 {
			f = t / length
		}
		if res.Hit && f >= res.Fraction {
			return
		}
		res = CastResult{
			Hit:        true,
			StartSolid: solid,
			Fraction:   f,
			Position:   omath.MulAdd(start, dir, t),
			Normal:     n,
			Body:       b.ID,
			Layers:     b.Filter.Belongs,
		}
	})
	if !res.Hit {
		res.Position = end
	}
	return res
}

// advance moves the shape along dir towards the body by the current gap until the gap closes. A pure translation
// moves every point of the shape by exactly the travelled distance, so stepping by the gap never passes through
// the body.
func advance(shape core, dir mgl32.Vec3, length float32, b *Body) (t float32, n mgl32.Vec3, solid, ok bool) {
	p := distanceTo(shape, b)
	if p.distance < 0 {
		return 0, p.normal, true, true
	}
	if length <= 0 {
		return 0, mgl32.Vec3{}, false, false
	}
	for range castIterations {
		if p.distance <= castTolerance {
			// Moving away from the body is not a hit.
			if omath.Dot(p.normal, dir) >= 0 {
				return 0, mgl32.Vec3{}, false, false
			}
			return t, p.normal, false, true
		}
		t += p.distance
		if t > length {
			return 0, mgl32.Vec3{}, false, false
		}
		p = distanceTo(shape.translate(dir.Mul(t)), b)
	}
	// Grazing approaches may not close the gap within the step budget. The last position is still clear of the body,
	// so it is reported as the hit.
	if omath.Dot(p.normal, dir) < -omath.Epsilon {
		return t, p.normal, false, true
	}
	return 0, mgl32.Vec3{}, false, false
}
