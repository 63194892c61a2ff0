package geometry

import "math"

// Pose is a rigid placement: position plus orientation
type Pose struct {
	Position    Vector3
	Orientation Quaternion
}

// IdentityPose returns a pose at the origin with no rotation
func IdentityPose() Pose {
	return Pose{Orientation: IdentityQuaternion()}
}

// NewPose creates a pose from a position and orientation
func NewPose(position Vector3, orientation Quaternion) Pose {
	return Pose{Position: position, Orientation: orientation}
}

// IsValid reports whether the pose holds only finite numbers and a usable rotation
func (p Pose) IsValid() bool {
	if !p.Position.IsFinite() || !p.Orientation.IsFinite() {
		return false
	}
	return p.Orientation.Length() > 1e-9
}

// Forward returns the pose's -Z axis in world space
func (p Pose) Forward() Vector3 {
	return p.Orientation.Rotate(Vector3{Z: -1})
}

// Up returns the pose's +Y axis in world space
func (p Pose) Up() Vector3 {
	return p.Orientation.Rotate(Vector3{Y: 1})
}

// Right returns the pose's +X axis in world space
func (p Pose) Right() Vector3 {
	return p.Orientation.Rotate(Vector3{X: 1})
}

// Apply maps a point from pose-local into world space
func (p Pose) Apply(local Vector3) Vector3 {
	return p.Position.Add(p.Orientation.Rotate(local))
}

// Compose returns the world pose of child expressed relative to p
func (p Pose) Compose(child Pose) Pose {
	return Pose{
		Position:    p.Apply(child.Position),
		Orientation: p.Orientation.Mul(child.Orientation).Normalize(),
	}
}

// Inverse returns the pose that undoes p
func (p Pose) Inverse() Pose {
	inv := p.Orientation.Conjugate()
	return Pose{Position: inv.Rotate(p.Position.Neg()), Orientation: inv}
}

// Ray returns the ray starting at the pose and pointing along its forward axis
func (p Pose) Ray() Ray {
	return NewRay(p.Position, p.Forward())
}

// Transform is a pose with a per-axis scale, applied as scale, rotate, translate
type Transform struct {
	Position    Vector3
	Orientation Quaternion
	Scale       Vector3
}

// IdentityTransform returns a transform that leaves points unchanged
func IdentityTransform() Transform {
	return Transform{Orientation: IdentityQuaternion(), Scale: Vector3{X: 1, Y: 1, Z: 1}}
}

// TransformFromPose wraps a pose with unit scale
func TransformFromPose(p Pose) Transform {
	return Transform{Position: p.Position, Orientation: p.Orientation, Scale: Vector3{X: 1, Y: 1, Z: 1}}
}

// Pose drops the scale
func (t Transform) Pose() Pose {
	return Pose{Position: t.Position, Orientation: t.Orientation}
}

// Apply maps a point from local into parent space
func (t Transform) Apply(local Vector3) Vector3 {
	return t.Position.Add(t.Orientation.Rotate(local.Hadamard(t.Scale)))
}

// InverseApply maps a point from parent into local space
func (t Transform) InverseApply(world Vector3) Vector3 {
	v := t.Orientation.Conjugate().Rotate(world.Sub(t.Position))
	return Vector3{X: safeDiv(v.X, t.Scale.X), Y: safeDiv(v.Y, t.Scale.Y), Z: safeDiv(v.Z, t.Scale.Z)}
}

// InverseApplyDirection maps a direction from parent into local space without normalising it
func (t Transform) InverseApplyDirection(dir Vector3) Vector3 {
	v := t.Orientation.Conjugate().Rotate(dir)
	return Vector3{X: safeDiv(v.X, t.Scale.X), Y: safeDiv(v.Y, t.Scale.Y), Z: safeDiv(v.Z, t.Scale.Z)}
}

// Compose returns the transform of child placed inside t
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position:    t.Apply(child.Position),
		Orientation: t.Orientation.Mul(child.Orientation).Normalize(),
		Scale:       t.Scale.Hadamard(child.Scale),
	}
}

// IsValid reports whether the transform holds only finite numbers and a non-zero scale
func (t Transform) IsValid() bool {
	if !t.Pose().IsValid() || !t.Scale.IsFinite() {
		return false
	}
	return t.Scale.X != 0 && t.Scale.Y != 0 && t.Scale.Z != 0
}

// Matrix returns the column-major 4x4 matrix of the transform
func (t Transform) Matrix() [16]float64 {
	x := t.Orientation.Rotate(Vector3{X: 1}).Mul(t.Scale.X)
	y := t.Orientation.Rotate(Vector3{Y: 1}).Mul(t.Scale.Y)
	z := t.Orientation.Rotate(Vector3{Z: 1}).Mul(t.Scale.Z)
	return [16]float64{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		t.Position.X, t.Position.Y, t.Position.Z, 1,
	}
}

// TransformFromMatrix decomposes a column-major affine matrix without shear
func TransformFromMatrix(m [16]float64) Transform {
	x := Vector3{X: m[0], Y: m[1], Z: m[2]}
	y := Vector3{X: m[4], Y: m[5], Z: m[6]}
	z := Vector3{X: m[8], Y: m[9], Z: m[10]}
	scale := Vector3{X: x.Length(), Y: y.Length(), Z: z.Length()}
	// A negative determinant means one axis is mirrored
	if x.Cross(y).Dot(z) < 0 {
		scale.X = -scale.X
	}
	var rot Quaternion
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		rot = IdentityQuaternion()
	} else {
		rot = QuaternionFromBasis(x.Mul(1/scale.X), y.Mul(1/scale.Y), z.Mul(1/scale.Z))
	}
	return Transform{
		Position:    Vector3{X: m[12], Y: m[13], Z: m[14]},
		Orientation: rot,
		Scale:       scale,
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
