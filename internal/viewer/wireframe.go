package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/philipparndt/goroom/pkg/geometry"
)

var axisColors = [3]rl.Color{
	rl.NewColor(239, 68, 68, 255),
	rl.NewColor(34, 197, 94, 255),
	rl.NewColor(59, 130, 246, 255),
}

// wireEdges returns each triangle edge of a mesh once
func wireEdges(m geometry.Mesh) [][2]geometry.Vector3 {
	type key struct{ a, b geometry.Vector3 }
	seen := make(map[key]bool)
	var edges [][2]geometry.Vector3
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		verts := [3]geometry.Vector3{tri.V1, tri.V2, tri.V3}
		for j := 0; j < 3; j++ {
			a, b := verts[j], verts[(j+1)%3]
			if seen[key{a, b}] || seen[key{b, a}] {
				continue
			}
			seen[key{a, b}] = true
			edges = append(edges, [2]geometry.Vector3{a, b})
		}
	}
	return edges
}

// drawWireframe renders the triangle edges of a mesh
func drawWireframe(m geometry.Mesh, col rl.Color) {
	for _, e := range wireEdges(m) {
		rl.DrawLine3D(toRL(e[0]), toRL(e[1]), col)
	}
}
