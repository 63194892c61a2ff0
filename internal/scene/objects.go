// Package scene owns everything the user creates: placed objects, freehand
// strokes and measurements.
package scene

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// Shape is the primitive kind of a placed object
type Shape int

const (
	ShapeBox Shape = iota
	ShapeCircle
	ShapeTriangle
)

var shapeNames = [...]string{"box", "circle", "triangle"}

// String returns the plan name of the shape
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Valid reports whether s is one of the known shapes
func (s Shape) Valid() bool {
	return s >= ShapeBox && s <= ShapeTriangle
}

// Next advances the box, circle, triangle ring
func (s Shape) Next() Shape {
	return (s + 1) % Shape(len(shapeNames))
}

// ParseShape accepts the current names and the older "cube"/"sphere"/"cone" aliases
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "box", "cube":
		return ShapeBox, nil
	case "circle", "sphere":
		return ShapeCircle, nil
	case "triangle", "cone":
		return ShapeTriangle, nil
	}
	return ShapeBox, fmt.Errorf("unknown shape %q", name)
}

// Mesh returns the primitive in object-local space
func (s Shape) Mesh() geometry.Mesh {
	var m geometry.Mesh
	switch s {
	case ShapeCircle:
		m = geometry.Cylinder(0.07, 0.07, 0.02, 32)
	case ShapeTriangle:
		m = geometry.Cylinder(0, 0.08, 0.12, 3)
	default:
		m = geometry.Box(0.12, 0.12, 0.12)
	}
	m.Name = s.String()
	return m
}

// PlacedObject is a primitive the user stamped into the room
type PlacedObject struct {
	ID        uuid.UUID
	Shape     Shape
	Color     uint32
	Transform geometry.Transform
}

// WorldMesh returns the object's primitive transformed into world space
func (o *PlacedObject) WorldMesh() geometry.Mesh {
	m := o.Shape.Mesh().Transformed(o.Transform)
	m.Name = fmt.Sprintf("%s_%s", o.Shape, o.ID.String()[:8])
	return m
}

// Center returns the world position of the object
func (o *PlacedObject) Center() geometry.Vector3 {
	return o.Transform.Position
}

// Stroke is a freehand polyline backed by a fixed-capacity buffer
type Stroke struct {
	ID    uuid.UUID
	Color uint32

	points     []geometry.Vector3
	count      int
	minSpacing float64
}

func newStroke(color uint32, capacity int, minSpacing float64) *Stroke {
	return &Stroke{
		ID:         uuid.New(),
		Color:      color,
		points:     make([]geometry.Vector3, capacity),
		minSpacing: minSpacing,
	}
}

// Append adds p when it is farther than the minimum spacing from the last
// point and the buffer has room. It reports whether the point was kept.
func (s *Stroke) Append(p geometry.Vector3) bool {
	if !p.IsFinite() || s.count >= len(s.points) {
		return false
	}
	if s.count > 0 && s.points[s.count-1].Distance(p) <= s.minSpacing {
		return false
	}
	s.points[s.count] = p
	s.count++
	return true
}

// Points returns the valid sub-range of the buffer
func (s *Stroke) Points() []geometry.Vector3 {
	return s.points[:s.count]
}

// Len returns the number of points
func (s *Stroke) Len() int {
	return s.count
}

// Capacity returns the size of the point buffer
func (s *Stroke) Capacity() int {
	return len(s.points)
}

// Length returns the arc length of the polyline
func (s *Stroke) Length() float64 {
	total := 0.0
	for i := 1; i < s.count; i++ {
		total += s.points[i-1].Distance(s.points[i])
	}
	return total
}

// Measurement is a finished two-point measurement with its cached label
type Measurement struct {
	ID    uuid.UUID
	A, B  geometry.Vector3
	Label string
}

// Distance returns |B - A|
func (m Measurement) Distance() float64 {
	return m.A.Distance(m.B)
}

// LabelPosition is the midpoint lifted 5 cm so the label clears the line
func (m Measurement) LabelPosition() geometry.Vector3 {
	return m.A.Lerp(m.B, 0.5).Add(geometry.NewVector3(0, 0.05, 0))
}

// FormatDistance renders a distance the way measurement labels show it
func FormatDistance(d float64) string {
	return fmt.Sprintf("%.2f m", d)
}
