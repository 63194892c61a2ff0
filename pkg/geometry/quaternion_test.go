package geometry

import (
	"math"
	"testing"
)

func TestQuaternionRotate(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVector3(0, 1, 0), math.Pi/2)
	result := q.Rotate(NewVector3(1, 0, 0))

	expected := NewVector3(0, 0, -1)
	if !result.ApproxEqual(expected, 1e-10) {
		t.Errorf("Rotate failed: expected %v, got %v", expected, result)
	}
}

func TestQuaternionMulComposes(t *testing.T) {
	yaw := QuaternionFromAxisAngle(NewVector3(0, 1, 0), math.Pi/2)
	pitch := QuaternionFromAxisAngle(NewVector3(1, 0, 0), math.Pi/2)

	// pitch first, then yaw
	combined := yaw.Mul(pitch)
	v := NewVector3(0, 1, 0)
	expected := yaw.Rotate(pitch.Rotate(v))
	result := combined.Rotate(v)
	if !result.ApproxEqual(expected, 1e-10) {
		t.Errorf("Mul failed: expected %v, got %v", expected, result)
	}
}

func TestQuaternionConjugateUndoes(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVector3(1, 2, 3), 0.7)
	v := NewVector3(0.3, -1, 2)
	result := q.Conjugate().Rotate(q.Rotate(v))
	if !result.ApproxEqual(v, 1e-10) {
		t.Errorf("Conjugate failed: expected %v, got %v", v, result)
	}
}

func TestQuaternionNormalizeZero(t *testing.T) {
	q := Quaternion{}.Normalize()
	if q != IdentityQuaternion() {
		t.Errorf("Normalize failed: expected identity, got %v", q)
	}
}

func TestQuaternionFromUpForward(t *testing.T) {
	q := QuaternionFromUpForward(NewVector3(0, 1, 0), NewVector3(1, 0, 0))
	pose := NewPose(Vector3{}, q)

	if !pose.Forward().ApproxEqual(NewVector3(1, 0, 0), 1e-9) {
		t.Errorf("Forward failed: got %v", pose.Forward())
	}
	if !pose.Up().ApproxEqual(NewVector3(0, 1, 0), 1e-9) {
		t.Errorf("Up failed: got %v", pose.Up())
	}
}

func TestQuaternionFromUpForwardParallel(t *testing.T) {
	q := QuaternionFromUpForward(NewVector3(0, 1, 0), NewVector3(0, 5, 0))
	pose := NewPose(Vector3{}, q)

	if !pose.Up().ApproxEqual(NewVector3(0, 1, 0), 1e-9) {
		t.Errorf("Up failed: got %v", pose.Up())
	}
	if math.Abs(pose.Forward().Dot(pose.Up())) > 1e-9 {
		t.Errorf("Forward not perpendicular to up: %v", pose.Forward())
	}
}

func TestQuaternionYaw(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVector3(0, 1, 0), 0.8)
	if math.Abs(q.Yaw()-0.8) > 1e-9 {
		t.Errorf("Yaw failed: expected 0.8, got %v", q.Yaw())
	}
}
