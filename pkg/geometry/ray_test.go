package geometry

import (
	"math"
	"testing"
)

func TestRayIntersectTriangle(t *testing.T) {
	r := NewRay(NewVector3(0.2, 0.2, 1), NewVector3(0, 0, -1))
	dist, ok := r.IntersectTriangle(NewVector3(0, 0, 0), NewVector3(1, 0, 0), NewVector3(0, 1, 0))
	if !ok {
		t.Fatalf("IntersectTriangle failed: expected a hit")
	}
	if math.Abs(dist-1) > 1e-10 {
		t.Errorf("IntersectTriangle failed: expected 1, got %v", dist)
	}

	// Back face counts too
	r = NewRay(NewVector3(0.2, 0.2, -1), NewVector3(0, 0, 1))
	if _, ok := r.IntersectTriangle(NewVector3(0, 0, 0), NewVector3(1, 0, 0), NewVector3(0, 1, 0)); !ok {
		t.Errorf("IntersectTriangle failed: back face missed")
	}

	r = NewRay(NewVector3(2, 2, 1), NewVector3(0, 0, -1))
	if _, ok := r.IntersectTriangle(NewVector3(0, 0, 0), NewVector3(1, 0, 0), NewVector3(0, 1, 0)); ok {
		t.Errorf("IntersectTriangle failed: expected a miss")
	}
}

func TestRayIntersectPlane(t *testing.T) {
	r := NewRay(NewVector3(0, 2, 0), NewVector3(0, -1, 0))
	dist, ok := r.IntersectPlane(NewVector3(0, 0, 0), NewVector3(0, 1, 0))
	if !ok || math.Abs(dist-2) > 1e-10 {
		t.Errorf("IntersectPlane failed: expected 2, got %v (%v)", dist, ok)
	}

	r = NewRay(NewVector3(0, 2, 0), NewVector3(0, 1, 0))
	if _, ok := r.IntersectPlane(NewVector3(0, 0, 0), NewVector3(0, 1, 0)); ok {
		t.Errorf("IntersectPlane failed: plane behind the ray reported as hit")
	}
}

func TestRayDistanceToPoint(t *testing.T) {
	r := NewRay(NewVector3(0, 0, 0), NewVector3(0, 0, -1))
	dist, along, ok := r.DistanceToPoint(NewVector3(0.1, 0, -2))
	if !ok || math.Abs(dist-0.1) > 1e-10 || math.Abs(along-2) > 1e-10 {
		t.Errorf("DistanceToPoint failed: got %v at %v (%v)", dist, along, ok)
	}
	if _, _, ok := r.DistanceToPoint(NewVector3(0, 0, 1)); ok {
		t.Errorf("DistanceToPoint failed: point behind the origin accepted")
	}
}

func TestRayIntersectSphereAndBox(t *testing.T) {
	r := NewRay(NewVector3(0, 0, 5), NewVector3(0, 0, -1))
	dist, ok := r.IntersectSphere(Vector3{}, 1)
	if !ok || math.Abs(dist-4) > 1e-10 {
		t.Errorf("IntersectSphere failed: expected 4, got %v", dist)
	}

	box := NewBoundingBox()
	box.Extend(NewVector3(-1, -1, -1))
	box.Extend(NewVector3(1, 1, 1))
	dist, ok = r.IntersectBox(box)
	if !ok || math.Abs(dist-4) > 1e-10 {
		t.Errorf("IntersectBox failed: expected 4, got %v", dist)
	}
}

func TestRayClosestPointsToSegment(t *testing.T) {
	r := NewRay(Vector3{}, NewVector3(0, 0, 1))
	along, p, dist := r.ClosestPointsToSegment(NewVector3(1, -1, 5), NewVector3(1, 1, 5))

	if math.Abs(along-5) > 1e-10 {
		t.Errorf("ray parameter failed: expected 5, got %v", along)
	}
	if !p.ApproxEqual(NewVector3(1, 0, 5), 1e-10) {
		t.Errorf("segment point failed: got %v", p)
	}
	if math.Abs(dist-1) > 1e-10 {
		t.Errorf("distance failed: expected 1, got %v", dist)
	}
}
