package geometry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion represents a rotation as (x, y, z, w)
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion returns the rotation that leaves vectors unchanged
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// QuaternionFromAxisAngle creates a rotation of angle radians around axis
func QuaternionFromAxisAngle(axis Vector3, angle float64) Quaternion {
	n := axis.Normalize()
	if n == (Vector3{}) {
		return IdentityQuaternion()
	}
	half := angle / 2
	s := math.Sin(half)
	return Quaternion{X: n.X * s, Y: n.Y * s, Z: n.Z * s, W: math.Cos(half)}
}

// Mul returns q * other, which applies other first and then q
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return fromNumber(quat.Mul(q.number(), other.number()))
}

// Conjugate returns the inverse rotation of a unit quaternion
func (q Quaternion) Conjugate() Quaternion {
	return fromNumber(quat.Conj(q.number()))
}

// Length returns the quaternion norm
func (q Quaternion) Length() float64 {
	return quat.Abs(q.number())
}

// Normalize returns the unit quaternion; a zero quaternion becomes the identity
func (q Quaternion) Normalize() Quaternion {
	l := q.Length()
	if l == 0 || math.IsNaN(l) {
		return IdentityQuaternion()
	}
	return fromNumber(quat.Scale(1/l, q.number()))
}

// IsFinite reports whether no component is NaN or infinite
func (q Quaternion) IsFinite() bool {
	return isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z) && isFinite(q.W)
}

// Rotate applies the rotation to a vector
func (q Quaternion) Rotate(v Vector3) Vector3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q.number(), p), quat.Conj(q.number()))
	return Vector3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Dot returns the 4D dot product
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// AngleTo returns the rotation angle between two unit quaternions
func (q Quaternion) AngleTo(other Quaternion) float64 {
	d := math.Abs(q.Dot(other))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// ToArray returns the components as [x, y, z, w]
func (q Quaternion) ToArray() [4]float64 {
	return [4]float64{q.X, q.Y, q.Z, q.W}
}

// QuaternionFromArray builds a quaternion from [x, y, z, w]
func QuaternionFromArray(a [4]float64) Quaternion {
	return Quaternion{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

// QuaternionFromBasis creates the rotation whose columns are the given orthonormal axes
func QuaternionFromBasis(x, y, z Vector3) Quaternion {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quaternion{
			W: 0.25 / s,
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
		}.Normalize()
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		return Quaternion{
			W: (m21 - m12) / s,
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}.Normalize()
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		return Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
		}.Normalize()
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		return Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
		}.Normalize()
	}
}

// QuaternionFromUpForward orients local +Y along up and local -Z along forward.
// forward is orthogonalised against up; if they are parallel any perpendicular is used.
func QuaternionFromUpForward(up, forward Vector3) Quaternion {
	y := up.Normalize()
	if y == (Vector3{}) {
		return IdentityQuaternion()
	}
	f := forward.ProjectOnPlane(y)
	if f.Length() < 1e-9 {
		f = y.AnyPerpendicular()
	}
	z := f.Normalize().Neg()
	x := y.Cross(z).Normalize()
	return QuaternionFromBasis(x, y, z)
}

// Yaw returns the rotation around +Y using the Y-X-Z Euler order
func (q Quaternion) Yaw() float64 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m02 := 2 * (x*z + w*y)
	m22 := 1 - 2*(x*x+y*y)
	m12 := 2 * (y*z - w*x)
	if math.Abs(m12) < 0.9999999 {
		return math.Atan2(m02, m22)
	}
	m20 := 2 * (x*z - w*y)
	m00 := 1 - 2*(y*y+z*z)
	return math.Atan2(-m20, m00)
}
