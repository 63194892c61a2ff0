package geometry

import "math"

const rayEpsilon = 1e-9

// Ray is a half-line with a unit direction
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay creates a ray; the direction is normalised
func NewRay(origin, direction Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) Vector3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsValid reports whether the ray has a finite origin and a non-zero direction
func (r Ray) IsValid() bool {
	return r.Origin.IsFinite() && r.Direction.IsFinite() && r.Direction.LengthSq() > rayEpsilon
}

// DistanceToPoint returns the perpendicular distance from p to the ray and
// the parameter of the closest point. Points behind the origin report ok=false.
func (r Ray) DistanceToPoint(p Vector3) (dist, t float64, ok bool) {
	t = p.Sub(r.Origin).Dot(r.Direction)
	if t < 0 {
		return 0, t, false
	}
	return p.Distance(r.At(t)), t, true
}

// IntersectPlane returns the distance to the plane through point with normal
func (r Ray) IntersectPlane(point, normal Vector3) (float64, bool) {
	n := normal.Normalize()
	denom := n.Dot(r.Direction)
	if math.Abs(denom) < rayEpsilon {
		return 0, false
	}
	t := point.Sub(r.Origin).Dot(n) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectTriangle tests both faces of the triangle (Moller-Trumbore)
func (r Ray) IntersectTriangle(a, b, c Vector3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= rayEpsilon {
		return 0, false
	}
	return t, true
}

// IntersectSphere returns the nearest non-negative hit distance on a sphere
func (r Ray) IntersectSphere(center Vector3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.LengthSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBox returns the entry distance into an axis-aligned box (slab test)
func (r Ray) IntersectBox(box BoundingBox) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	o := r.Origin.ToArray()
	d := r.Direction.ToArray()
	lo := box.Min.ToArray()
	hi := box.Max.ToArray()
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < rayEpsilon {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// ClosestPointsToSegment returns the parameter on the ray and the point on
// segment [a, b] where the two come closest, plus their distance.
func (r Ray) ClosestPointsToSegment(a, b Vector3) (tRay float64, onSegment Vector3, dist float64) {
	d1 := r.Direction
	d2 := b.Sub(a)
	w := r.Origin.Sub(a)
	aa := d1.Dot(d1)
	bb := d1.Dot(d2)
	cc := d2.Dot(d2)
	dd := d1.Dot(w)
	ee := d2.Dot(w)
	denom := aa*cc - bb*bb

	var s, u float64
	if denom < rayEpsilon || cc < rayEpsilon {
		s = 0
		if cc > rayEpsilon {
			u = Clamp(ee/cc, 0, 1)
		}
	} else {
		s = (bb*ee - cc*dd) / denom
		u = Clamp((aa*ee-bb*dd)/denom, 0, 1)
	}
	if s < 0 {
		s = 0
		if cc > rayEpsilon {
			u = Clamp(ee/cc, 0, 1)
		}
	}
	onSegment = a.Add(d2.Mul(u))
	// Re-project so the ray parameter matches the clamped segment point
	s = math.Max(0, onSegment.Sub(r.Origin).Dot(d1)/aa)
	return s, onSegment, r.At(s).Distance(onSegment)
}
