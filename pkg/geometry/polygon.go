package geometry

import (
	"errors"
	"math"
)

// ErrDegeneratePolygon is returned when an outline cannot be triangulated
var ErrDegeneratePolygon = errors.New("degenerate polygon")

// Vector2 is a point in a plane-local 2D frame
type Vector2 struct {
	X, Y float64
}

// Sub returns the difference between two points
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Cross returns the z component of the 2D cross product
func (v Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// SignedArea returns the shoelace area; positive for counter-clockwise outlines
func SignedArea(points []Vector2) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return area / 2
}

// Triangulate2D splits a simple polygon into triangles by ear clipping.
// The returned indices refer to the input points; every triangle is counter-clockwise.
func Triangulate2D(points []Vector2) ([]uint32, error) {
	n := len(points)
	if n < 3 {
		return nil, ErrDegeneratePolygon
	}
	area := SignedArea(points)
	if math.Abs(area) < 1e-12 {
		return nil, ErrDegeneratePolygon
	}

	ring := make([]int, n)
	for i := range ring {
		if area > 0 {
			ring[i] = i
		} else {
			ring[i] = n - 1 - i
		}
	}

	out := make([]uint32, 0, 3*(n-2))
	for len(ring) > 3 {
		clipped := false
		for i := range ring {
			prev := ring[(i+len(ring)-1)%len(ring)]
			cur := ring[i]
			next := ring[(i+1)%len(ring)]
			if !isEar(points, ring, prev, cur, next) {
				continue
			}
			out = append(out, uint32(prev), uint32(cur), uint32(next))
			ring = append(ring[:i], ring[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, ErrDegeneratePolygon
		}
	}
	out = append(out, uint32(ring[0]), uint32(ring[1]), uint32(ring[2]))
	return out, nil
}

func isEar(points []Vector2, ring []int, prev, cur, next int) bool {
	a, b, c := points[prev], points[cur], points[next]
	if b.Sub(a).Cross(c.Sub(b)) <= 1e-12 {
		return false
	}
	for _, idx := range ring {
		if idx == prev || idx == cur || idx == next {
			continue
		}
		if pointInTriangle(points[idx], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c Vector2) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PolygonArea3D returns the area of a planar outline given in 3D
func PolygonArea3D(points []Vector3) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum Vector3
	for i := range points {
		j := (i + 1) % len(points)
		sum = sum.Add(points[i].Cross(points[j]))
	}
	return sum.Length() / 2
}
