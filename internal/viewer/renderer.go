package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/label"
	"github.com/philipparndt/goroom/pkg/geometry"
)

const (
	scanMeshColor = 0x9e9e9e
	handleLength  = 0.04
)

var lightDir = geometry.NewVector3(-0.5, -1.0, -0.5).Normalize()

// gpuMesh is an uploaded mesh and the object it belongs to
type gpuMesh struct {
	id   uuid.UUID
	mesh rl.Mesh
}

// bakedMesh is a triangle soup with per-vertex colours lit by a fixed light
type bakedMesh struct {
	vertices  []float32
	normals   []float32
	texcoords []float32
	colors    []uint8
	triangles int
}

// bakeMesh flattens a mesh and bakes diffuse lighting into vertex colours
func bakeMesh(m geometry.Mesh, rgb uint32) bakedMesh {
	n := m.TriangleCount()
	b := bakedMesh{
		vertices:  make([]float32, 0, n*9),
		normals:   make([]float32, 0, n*9),
		texcoords: make([]float32, n*6),
		colors:    make([]uint8, 0, n*12),
		triangles: n,
	}
	base := label.Hex(rgb)
	for i := 0; i < n; i++ {
		tri := m.Triangle(i)
		normal := tri.CalculateNormal()

		// Min 30% ambient; both faces are lit since placed shapes are seen from inside rooms
		intensity := math.Max(0.3, math.Abs(normal.Dot(lightDir)))
		r := uint8(float64(base.R) * intensity)
		g := uint8(float64(base.G) * intensity)
		bl := uint8(float64(base.B) * intensity)

		for _, v := range [3]geometry.Vector3{tri.V1, tri.V2, tri.V3} {
			b.vertices = append(b.vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.normals = append(b.normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
			b.colors = append(b.colors, r, g, bl, 255)
		}
	}
	return b
}

// uploadMesh converts a mesh to a raylib mesh with baked lighting
func uploadMesh(m geometry.Mesh, rgb uint32) rl.Mesh {
	b := bakeMesh(m, rgb)
	mesh := rl.Mesh{
		VertexCount:   int32(b.triangles * 3),
		TriangleCount: int32(b.triangles),
	}
	if b.triangles > 0 {
		mesh.Vertices = &b.vertices[0]
		mesh.Normals = &b.normals[0]
		mesh.Texcoords = &b.texcoords[0]
		mesh.Colors = &b.colors[0]
	}
	rl.UploadMesh(&mesh, false)
	return mesh
}

func unloadAll(meshes []gpuMesh) {
	for i := range meshes {
		rl.UnloadMesh(&meshes[i].mesh)
	}
}

// syncMeshes re-uploads objects after a registry change and model parts after a model change
func (v *Viewer) syncMeshes(snap app.Snapshot) {
	if snap.Revision != v.Meshes.revision || v.Meshes.objects == nil {
		unloadAll(v.Meshes.objects)
		v.Meshes.objects = make([]gpuMesh, 0, len(snap.Objects))
		for _, o := range snap.Objects {
			v.Meshes.objects = append(v.Meshes.objects, gpuMesh{id: o.ID, mesh: uploadMesh(o.Mesh, o.Color)})
		}
		v.Meshes.revision = snap.Revision
	}

	// Occlusion hides parts without swapping the model, so the count is compared too
	model, _ := v.c.Model()
	if model != v.Meshes.model || len(snap.Model) != len(v.Meshes.parts) {
		unloadAll(v.Meshes.parts)
		v.Meshes.parts = nil
		for _, p := range snap.Model {
			v.Meshes.parts = append(v.Meshes.parts, gpuMesh{mesh: uploadMesh(p.Mesh, p.Color)})
		}
		v.Meshes.model = model
		if model != nil && !v.Camera.framed {
			v.frameBox(snap.Bounds())
			v.Camera.framed = true
		}
	}
}

// drawScene draws the snapshot inside BeginMode3D
func (v *Viewer) drawScene(snap app.Snapshot) {
	if v.View.showGrid {
		rl.DrawGrid(20, 0.5)
	}

	for _, m := range snap.Meshes {
		drawWireframe(m, label.Hex(scanMeshColor))
	}
	for _, p := range snap.Planes {
		drawPolyline(p.Outline, label.Hex(app.PlaneColors[p.Class]))
	}

	for i, p := range snap.Model {
		if p.Wireframe {
			drawWireframe(p.Mesh, label.Hex(p.Color))
			continue
		}
		if i < len(v.Meshes.parts) {
			rl.DrawMesh(v.Meshes.parts[i].mesh, v.Meshes.material, rl.MatrixIdentity())
		}
	}
	for _, e := range snap.ModelEdges {
		rl.DrawLine3D(toRL(e.A), toRL(e.B), label.Hex(app.EdgeColor))
	}

	for i, o := range snap.Objects {
		if i < len(v.Meshes.objects) && v.Meshes.objects[i].id == o.ID {
			rl.DrawMesh(v.Meshes.objects[i].mesh, v.Meshes.material, rl.MatrixIdentity())
		}
		switch {
		case o.Selected:
			drawWireframe(o.Mesh, label.Hex(app.SelectionColor))
		case o.Hovered || o.ID == v.Interaction.hovered:
			drawWireframe(o.Mesh, label.Hex(app.HoverColor))
		}
	}

	for _, s := range snap.Strokes {
		drawPolyline(s.Points, label.Hex(s.Color))
	}
	for _, m := range snap.Measurements {
		drawPolyline(m.Points, label.Hex(m.Color))
		for _, p := range m.Points {
			rl.DrawSphere(toRL(p), 0.01, label.Hex(m.Color))
		}
	}
	for _, h := range snap.Gizmo {
		col := label.Hex(0xffffff)
		if h.Axis >= 0 && h.Axis < len(axisColors) {
			col = axisColors[h.Axis]
		}
		rl.DrawLine3D(toRL(h.Center), toRL(h.Center.Add(h.Dir.Mul(handleLength))), col)
	}
}

func drawPolyline(points []geometry.Vector3, col rl.Color) {
	for i := 1; i < len(points); i++ {
		rl.DrawLine3D(toRL(points[i-1]), toRL(points[i]), col)
	}
}
