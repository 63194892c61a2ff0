package geometry

import (
	"math"
	"testing"
)

func TestPoseInverse(t *testing.T) {
	p := NewPose(NewVector3(1, 2, 3), QuaternionFromAxisAngle(NewVector3(0, 1, 0), 1.1))
	id := p.Compose(p.Inverse())

	if !id.Position.ApproxEqual(Vector3{}, 1e-9) {
		t.Errorf("Inverse failed: position %v", id.Position)
	}
	if id.Orientation.AngleTo(IdentityQuaternion()) > 1e-6 {
		t.Errorf("Inverse failed: orientation %v", id.Orientation)
	}
}

func TestPoseIsValid(t *testing.T) {
	if !IdentityPose().IsValid() {
		t.Errorf("IsValid failed: identity should be valid")
	}
	bad := NewPose(NewVector3(math.NaN(), 0, 0), IdentityQuaternion())
	if bad.IsValid() {
		t.Errorf("IsValid failed: NaN position accepted")
	}
	if (Pose{}).IsValid() {
		t.Errorf("IsValid failed: zero quaternion accepted")
	}
}

func TestTransformInverseApply(t *testing.T) {
	tr := Transform{
		Position:    NewVector3(1, 2, 3),
		Orientation: QuaternionFromAxisAngle(NewVector3(0, 0, 1), 0.4),
		Scale:       NewVector3(2, 3, 4),
	}
	v := NewVector3(0.5, -0.25, 1)
	result := tr.InverseApply(tr.Apply(v))
	if !result.ApproxEqual(v, 1e-9) {
		t.Errorf("InverseApply failed: expected %v, got %v", v, result)
	}
}

func TestTransformMatrixRoundTrip(t *testing.T) {
	tr := Transform{
		Position:    NewVector3(1, 2, 3),
		Orientation: QuaternionFromAxisAngle(NewVector3(0, 1, 0), math.Pi/2),
		Scale:       NewVector3(2, 3, 4),
	}
	back := TransformFromMatrix(tr.Matrix())

	v := NewVector3(0.1, 0.2, 0.3)
	if !back.Apply(v).ApproxEqual(tr.Apply(v), 1e-9) {
		t.Errorf("Matrix round trip failed: expected %v, got %v", tr.Apply(v), back.Apply(v))
	}
	if !back.Scale.ApproxEqual(tr.Scale, 1e-9) {
		t.Errorf("Scale failed: expected %v, got %v", tr.Scale, back.Scale)
	}
}
