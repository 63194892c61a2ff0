package refmodel

import (
	"fmt"
	"math"

	"github.com/philipparndt/goroom/pkg/geometry"
)

type edgeKey struct {
	a, b string
}

type edgeFaces struct {
	edge    Edge
	normals []geometry.Vector3
}

// vertexKey adds zero so -0 and 0 share a key
func vertexKey(v geometry.Vector3) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f", v.X+0, v.Y+0, v.Z+0)
}

// FeatureEdges returns boundary edges and edges whose adjacent faces meet at
// more than angle degrees. Shared edges are emitted once.
func FeatureEdges(parts []*Part, angle float64) []Edge {
	limit := math.Cos(angle * math.Pi / 180)
	var out []Edge
	for _, p := range parts {
		faces := make(map[edgeKey]*edgeFaces)
		var order []edgeKey
		for i := 0; i < p.Mesh.TriangleCount(); i++ {
			tri := p.Mesh.Triangle(i)
			if tri.IsDegenerate() {
				continue
			}
			normal := tri.CalculateNormal()
			for _, e := range [][2]geometry.Vector3{{tri.V1, tri.V2}, {tri.V2, tri.V3}, {tri.V3, tri.V1}} {
				ka, kb := vertexKey(e[0]), vertexKey(e[1])
				if kb < ka {
					ka, kb = kb, ka
				}
				key := edgeKey{ka, kb}
				f, ok := faces[key]
				if !ok {
					f = &edgeFaces{edge: Edge{A: e[0], B: e[1]}}
					faces[key] = f
					order = append(order, key)
				}
				f.normals = append(f.normals, normal)
			}
		}
		for _, key := range order {
			f := faces[key]
			if len(f.normals) != 2 || f.normals[0].Dot(f.normals[1]) <= limit {
				out = append(out, f.edge)
			}
		}
	}
	return out
}
