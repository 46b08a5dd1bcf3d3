package world

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
)

// ColliderKind is the shape of a Collider.
type ColliderKind uint8

const (
	ColliderSphere ColliderKind = iota
	// ColliderCapsule is a segment along the local Y axis swept by a radius.
	ColliderCapsule
	// ColliderBox is an oriented box given by its half extents.
	ColliderBox
	// ColliderPlane is a solid half-space. Its surface passes through the body origin and its outward normal is the
	// local Y axis.
	ColliderPlane
)

func (k ColliderKind) String() string {
	switch k {
	case ColliderSphere:
		return "sphere"
	case ColliderCapsule:
		return "capsule"
	case ColliderBox:
		return "box"
	case ColliderPlane:
		return "plane"
	}
	return "unknown"
}

// Collider is the collision shape of a body, expressed in the body's local space.
type Collider struct {
	Kind        ColliderKind
	Radius      float32
	HalfHeight  float32
	HalfExtents mgl32.Vec3
}

func NewSphere(radius float32) Collider {
	return Collider{Kind: ColliderSphere, Radius: radius}
}

// NewCapsule returns a capsule whose core segment spans halfHeight above and below the origin.
func NewCapsule(halfHeight, radius float32) Collider {
	return Collider{Kind: ColliderCapsule, Radius: radius, HalfHeight: halfHeight}
}

func NewBox(halfExtents mgl32.Vec3) Collider {
	return Collider{Kind: ColliderBox, HalfExtents: halfExtents}
}

func NewPlane() Collider {
	return Collider{Kind: ColliderPlane}
}

// Swept reports whether the collider is a sphere or capsule, the shapes agents may use.
func (c Collider) Swept() bool {
	return c.Kind == ColliderSphere || c.Kind == ColliderCapsule
}

// Extent returns the distance from the collider's origin to the farthest point of the shape along the local Y
// axis. Planes have no extent.
func (c Collider) Extent() float32 {
	switch c.Kind {
	case ColliderSphere:
		return c.Radius
	case ColliderCapsule:
		return c.HalfHeight + c.Radius
	case ColliderBox:
		return c.HalfExtents[1]
	}
	return 0
}

// core returns the swept-sphere form of a sphere or capsule placed with t.
func (c Collider) core(t Transform) core {
	if c.Kind == ColliderSphere || c.HalfHeight <= 0 {
		return core{a: t.Position, b: t.Position, r: c.Radius}
	}
	axis := omath.Rotate(t.Rotation, omath.Up).Mul(c.HalfHeight)
	return core{a: t.Position.Sub(axis), b: t.Position.Add(axis), r: c.Radius}
}

// bounds returns the world AABB of the collider placed with t. ok is false for unbounded shapes.
func (c Collider) bounds(t Transform) (bb cube.BBox, ok bool) {
	switch c.Kind {
	case ColliderSphere, ColliderCapsule:
		return c.core(t).bounds(0), true
	case ColliderBox:
		ex := omath.Rotate(t.Rotation, omath.Right).Mul(c.HalfExtents[0])
		ey := omath.Rotate(t.Rotation, omath.Up).Mul(c.HalfExtents[1])
		ez := omath.Rotate(t.Rotation, omath.Forward).Mul(c.HalfExtents[2])
		var ext mgl32.Vec3
		for i := range 3 {
			ext[i] = math32.Abs(ex[i]) + math32.Abs(ey[i]) + math32.Abs(ez[i])
		}
		lo, hi := t.Position.Sub(ext), t.Position.Add(ext)
		return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]), true
	}
	return cube.BBox{}, false
}

// core is a segment swept by a radius. Spheres have a == b.
type core struct {
	a, b mgl32.Vec3
	r    float32
}

func (s core) centre() mgl32.Vec3 {
	return omath.Lerp(s.a, s.b, 0.5)
}

func (s core) translate(d mgl32.Vec3) core {
	return core{a: s.a.Add(d), b: s.b.Add(d), r: s.r}
}

func (s core) bounds(margin float32) cube.BBox {
	g := s.r + margin
	return cube.Box(
		math32.Min(s.a[0], s.b[0])-g, math32.Min(s.a[1], s.b[1])-g, math32.Min(s.a[2], s.b[2])-g,
		math32.Max(s.a[0], s.b[0])+g, math32.Max(s.a[1], s.b[1])+g, math32.Max(s.a[2], s.b[2])+g,
	)
}

func union(a, b cube.BBox) cube.BBox {
	lo, hi := a.Min(), a.Max()
	blo, bhi := b.Min(), b.Max()
	return cube.Box(
		math32.Min(lo[0], blo[0]), math32.Min(lo[1], blo[1]), math32.Min(lo[2], blo[2]),
		math32.Max(hi[0], bhi[0]), math32.Max(hi[1], bhi[1]), math32.Max(hi[2], bhi[2]),
	)
}
