package omath

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MinNormal is the smallest positive normal float32. Lengths and denominators at or below it are treated as zero.
const MinNormal = float32(1.17549435e-38)

// Epsilon is the tolerance used for near-zero geometric quantities such as parallel directions.
const Epsilon = float32(1e-6)

var (
	// Up is the world up axis.
	Up = mgl32.Vec3{0, 1, 0}
	// Forward is the direction an agent with a yaw of zero faces.
	Forward = mgl32.Vec3{0, 0, 1}
	// Right is the cross product of Up and Forward.
	Right = mgl32.Vec3{1, 0, 0}
)

var sinTable []float32

func init() {
	sinTable = make([]float32, 65536)
	for i := range 65536 {
		sinTable[i] = float32(math.Sin(float64(i) * math.Pi * 2 / 65536))
	}
}

// Sin returns the sine of the given angle in radians using a fixed lookup table, so results do not depend on the
// platform's trigonometric implementation.
func Sin(val float32) float32 {
	return sinTable[uint16(int64(float32(val*10430.378)))&65535]
}

// Cos returns the cosine of the given angle in radians using the same lookup table as Sin.
func Cos(val float32) float32 {
	return sinTable[uint16(int64(float32(val*10430.378)+16384.0))&65535]
}

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float32) float32 {
	if num < min {
		return min
	}
	return math32.Min(num, max)
}

// Dot returns the dot product of a and b. Each product is rounded before it is summed and the terms are always
// summed in x, y, z order.
func Dot(a, b mgl32.Vec3) float32 {
	x := float32(a[0] * b[0])
	y := float32(a[1] * b[1])
	z := float32(a[2] * b[2])
	return float32(float32(x+y) + z)
}

// Cross returns the cross product of a and b.
func Cross(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(a[1]*b[2]) - float32(a[2]*b[1]),
		float32(a[2]*b[0]) - float32(a[0]*b[2]),
		float32(a[0]*b[1]) - float32(a[1]*b[0]),
	}
}

// LenSqr returns the squared length of v.
func LenSqr(v mgl32.Vec3) float32 {
	return Dot(v, v)
}

// Len returns the length of v.
func Len(v mgl32.Vec3) float32 {
	return math32.Sqrt(LenSqr(v))
}

// Normalize returns v scaled to unit length. If v is too short to normalise safely, fallback is returned instead.
func Normalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := Len(v)
	if l <= MinNormal || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return fallback
	}
	inv := 1 / l
	return mgl32.Vec3{v[0] * inv, v[1] * inv, v[2] * inv}
}

// NormalizeLen behaves like Normalize but also returns the length of v. The length is zero when fallback was used.
func NormalizeLen(v, fallback mgl32.Vec3) (mgl32.Vec3, float32) {
	l := Len(v)
	if l <= MinNormal || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return fallback, 0
	}
	inv := 1 / l
	return mgl32.Vec3{v[0] * inv, v[1] * inv, v[2] * inv}, l
}

// MulAdd returns a + b*s with the product rounded before the addition.
func MulAdd(a, b mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + float32(b[0]*s),
		a[1] + float32(b[1]*s),
		a[2] + float32(b[2]*s),
	}
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return MulAdd(a, b.Sub(a), t)
}

// ProjectOnPlane removes the component of v along the unit normal n.
func ProjectOnPlane(v, n mgl32.Vec3) mgl32.Vec3 {
	return MulAdd(v, n, -Dot(v, n))
}

// ClampLen returns v scaled down so that its length does not exceed max.
func ClampLen(v mgl32.Vec3, max float32) mgl32.Vec3 {
	l := Len(v)
	if l <= max || l <= MinNormal {
		return v
	}
	return v.Mul(max / l)
}

// SafeDiv divides a by b, returning fallback if b is too close to zero.
func SafeDiv(a, b, fallback float32) float32 {
	if math32.Abs(b) <= MinNormal {
		return fallback
	}
	return a / b
}

// Finite reports whether every component of v is finite.
func Finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Horizontal returns v with the component along up removed.
func Horizontal(v, up mgl32.Vec3) mgl32.Vec3 {
	return ProjectOnPlane(v, up)
}

// YawDirection returns the horizontal unit direction an agent with the given yaw faces.
func YawDirection(yaw float32) mgl32.Vec3 {
	return mgl32.Vec3{Sin(yaw), 0, Cos(yaw)}
}

// YawFromDirection returns the yaw that faces the horizontal part of dir. ok is false if dir has no horizontal
// component.
func YawFromDirection(dir mgl32.Vec3) (yaw float32, ok bool) {
	if float32(float32(dir[0]*dir[0])+float32(dir[2]*dir[2])) <= Epsilon*Epsilon {
		return 0, false
	}
	return math32.Atan2(dir[0], dir[2]), true
}

// WrapAngle wraps an angle in radians into (-Pi, Pi].
func WrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a <= -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}
