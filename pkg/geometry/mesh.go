package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMesh is returned when a mesh has out-of-range indices or non-finite positions
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an indexed triangle list. Without indices, every three positions form a triangle.
type Mesh struct {
	Name      string
	Positions []Vector3
	Indices   []uint32
}

// MeshHit describes where a ray met a mesh
type MeshHit struct {
	Distance float64
	Point    Vector3
	Normal   Vector3
	Triangle int
}

// MeshFromFlat builds a mesh from flat xyz float32 positions and indices
func MeshFromFlat(name string, vertices []float32, indices []uint32) Mesh {
	m := Mesh{Name: name, Positions: make([]Vector3, 0, len(vertices)/3)}
	for i := 0; i+2 < len(vertices); i += 3 {
		m.Positions = append(m.Positions, Vector3{
			X: float64(vertices[i]),
			Y: float64(vertices[i+1]),
			Z: float64(vertices[i+2]),
		})
	}
	if len(indices) > 0 {
		m.Indices = append([]uint32(nil), indices...)
	}
	return m
}

// TriangleCount returns the number of triangles
func (m Mesh) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Triangle returns triangle i with its computed normal
func (m Mesh) Triangle(i int) Triangle {
	if len(m.Indices) > 0 {
		return TriangleFromVertices(
			m.Positions[m.Indices[3*i]],
			m.Positions[m.Indices[3*i+1]],
			m.Positions[m.Indices[3*i+2]],
		)
	}
	return TriangleFromVertices(m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2])
}

// IsEmpty reports whether the mesh has no triangles
func (m Mesh) IsEmpty() bool {
	return m.TriangleCount() == 0
}

// Validate checks index bounds and position finiteness
func (m Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Indices) == 0 && len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: vertex count %d is not a multiple of 3", ErrInvalidMesh, len(m.Positions))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d exceeds %d vertices", ErrInvalidMesh, idx, i, len(m.Positions))
		}
	}
	for i, p := range m.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidMesh, i)
		}
	}
	return nil
}

// Indexed returns a copy that always carries explicit indices
func (m Mesh) Indexed() Mesh {
	out := Mesh{Name: m.Name, Positions: append([]Vector3(nil), m.Positions...)}
	if len(m.Indices) > 0 {
		out.Indices = append([]uint32(nil), m.Indices...)
		return out
	}
	out.Indices = make([]uint32, len(m.Positions))
	for i := range out.Indices {
		out.Indices[i] = uint32(i)
	}
	return out
}

// Transformed returns a copy with every position mapped through t
func (m Mesh) Transformed(t Transform) Mesh {
	out := Mesh{Name: m.Name, Positions: make([]Vector3, len(m.Positions))}
	for i, p := range m.Positions {
		out.Positions[i] = t.Apply(p)
	}
	if len(m.Indices) > 0 {
		out.Indices = append([]uint32(nil), m.Indices...)
	}
	// A mirroring scale flips the winding
	if t.Scale.X*t.Scale.Y*t.Scale.Z < 0 {
		out = out.Indexed()
		out.FlipWinding()
	}
	return out
}

// FlipWinding reverses the order of every triangle in place
func (m *Mesh) FlipWinding() {
	if len(m.Indices) == 0 {
		*m = m.Indexed()
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
	}
}

// MergeMeshes concatenates meshes into one indexed mesh
func MergeMeshes(name string, meshes ...Mesh) Mesh {
	out := Mesh{Name: name}
	for _, m := range meshes {
		im := m.Indexed()
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, im.Positions...)
		for _, idx := range im.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of all positions
func (m Mesh) BoundingBox() BoundingBox {
	b := NewBoundingBox()
	for _, p := range m.Positions {
		b.Extend(p)
	}
	return b
}

// SurfaceArea returns the sum of all triangle areas
func (m Mesh) SurfaceArea() float64 {
	total := 0.0
	for i := 0; i < m.TriangleCount(); i++ {
		total += m.Triangle(i).Area()
	}
	return total
}

// Raycast returns the nearest triangle hit, testing both faces
func (m Mesh) Raycast(r Ray) (MeshHit, bool) {
	best := MeshHit{Distance: math.Inf(1), Triangle: -1}
	if box := m.BoundingBox(); box.IsEmpty() {
		return best, false
	} else if _, ok := r.IntersectBox(box); !ok && !box.Contains(r.Origin) {
		return best, false
	}
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		t, ok := r.IntersectTriangle(tri.V1, tri.V2, tri.V3)
		if !ok || t >= best.Distance {
			continue
		}
		best = MeshHit{Distance: t, Point: r.At(t), Normal: tri.Normal, Triangle: i}
	}
	return best, best.Triangle >= 0
}

// Flat returns positions as packed float32 xyz
func (m Mesh) Flat() []float32 {
	out := make([]float32, 0, len(m.Positions)*3)
	for _, p := range m.Positions {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}
