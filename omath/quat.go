package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// QuatDot returns the four-dimensional dot product of two quaternions.
func QuatDot(a, b mgl32.Quat) float32 {
	return float32(float32(a.W*b.W) + Dot(a.V, b.V))
}

// QuatNormalize returns q scaled to unit length, or the identity rotation if q is degenerate.
func QuatNormalize(q mgl32.Quat) mgl32.Quat {
	l := math32.Sqrt(QuatDot(q, q))
	if l <= MinNormal || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl32.QuatIdent()
	}
	inv := 1 / l
	return mgl32.Quat{W: q.W * inv, V: q.V.Mul(inv)}
}

// QuatMul returns the Hamilton product a*b, which applies b first and then a.
func QuatMul(a, b mgl32.Quat) mgl32.Quat {
	w := float32(a.W*b.W) - Dot(a.V, b.V)
	v := MulAdd(MulAdd(Cross(a.V, b.V), b.V, a.W), a.V, b.W)
	return mgl32.Quat{W: w, V: v}
}

// QuatInverse returns the inverse of a unit quaternion.
func QuatInverse(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: q.V.Mul(-1)}
}

// Rotate rotates v by the unit quaternion q.
func Rotate(q mgl32.Quat, v mgl32.Vec3) mgl32.Vec3 {
	t := Cross(q.V, v).Mul(2)
	return MulAdd(v, t, q.W).Add(Cross(q.V, t))
}

// InverseRotate rotates v by the inverse of the unit quaternion q.
func InverseRotate(q mgl32.Quat, v mgl32.Vec3) mgl32.Vec3 {
	return Rotate(QuatInverse(q), v)
}

// QuatAxisAngle returns the rotation of angle radians around the unit axis.
func QuatAxisAngle(axis mgl32.Vec3, angle float32) mgl32.Quat {
	half := angle * 0.5
	return mgl32.Quat{W: math32.Cos(half), V: axis.Mul(math32.Sin(half))}
}

// YawQuat returns the rotation around the world up axis for the given yaw. Sine and cosine come from the lookup
// table so that identical yaws always produce identical rotations.
func YawQuat(yaw float32) mgl32.Quat {
	half := yaw * 0.5
	return mgl32.Quat{W: Cos(half), V: mgl32.Vec3{0, Sin(half), 0}}
}

// QuatBetween returns the shortest rotation that turns the unit vector from onto the unit vector to.
func QuatBetween(from, to mgl32.Vec3) mgl32.Quat {
	d := Dot(from, to)
	if d >= 1-Epsilon {
		return mgl32.QuatIdent()
	}
	if d <= -1+Epsilon {
		axis := Normalize(Cross(Right, from), mgl32.Vec3{})
		if axis == (mgl32.Vec3{}) {
			axis = Normalize(Cross(Forward, from), Up)
		}
		return mgl32.Quat{W: 0, V: axis}
	}
	return QuatNormalize(mgl32.Quat{W: 1 + d, V: Cross(from, to)})
}

// QuatAngle returns the angle in radians of the rotation that turns a into b.
func QuatAngle(a, b mgl32.Quat) float32 {
	d := math32.Min(math32.Abs(QuatDot(a, b)), 1)
	return 2 * math32.Acos(d)
}

// Slerp spherically interpolates between two unit quaternions along the shortest arc.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	d := QuatDot(a, b)
	if d < 0 {
		b = mgl32.Quat{W: -b.W, V: b.V.Mul(-1)}
		d = -d
	}
	if d > 1-Epsilon {
		return QuatNormalize(mgl32.Quat{
			W: a.W + float32((b.W-a.W)*t),
			V: Lerp(a.V, b.V, t),
		})
	}
	theta := math32.Acos(math32.Min(d, 1))
	sinTheta := math32.Sin(theta)
	if sinTheta <= MinNormal {
		return a
	}
	wa := math32.Sin((1-t)*theta) / sinTheta
	wb := math32.Sin(t*theta) / sinTheta
	return QuatNormalize(mgl32.Quat{
		W: float32(a.W*wa) + float32(b.W*wb),
		V: MulAdd(a.V.Mul(wa), b.V, wb),
	})
}

// RotateTowards rotates from towards to by at most maxAngle radians.
func RotateTowards(from, to mgl32.Quat, maxAngle float32) mgl32.Quat {
	angle := QuatAngle(from, to)
	if angle <= Epsilon || angle <= maxAngle {
		return to
	}
	if maxAngle <= 0 {
		return from
	}
	return Slerp(from, to, maxAngle/angle)
}

// AngularVelocity returns the world-space angular velocity that rotates from into to over dt seconds.
func AngularVelocity(from, to mgl32.Quat, dt float32) mgl32.Vec3 {
	if dt <= MinNormal {
		return mgl32.Vec3{}
	}
	rel := QuatMul(to, QuatInverse(from))
	if rel.W < 0 {
		rel = mgl32.Quat{W: -rel.W, V: rel.V.Mul(-1)}
	}
	w := math32.Min(rel.W, 1)
	s := math32.Sqrt(math32.Max(1-float32(w*w), 0))
	if s <= Epsilon {
		return mgl32.Vec3{}
	}
	angle := 2 * math32.Acos(w)
	return rel.V.Mul(angle / (s * dt))
}
