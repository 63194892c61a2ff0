package main

import (
	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/viewer"
)

const (
	scanMeshColor = 0x9e9e9e
	handleLength  = 0.04
)

var axisColors = [3]uint32{0xef4444, 0x22c55e, 0x3b82f6}

// preview is a snapshot turned into something the viewer draws, with the
// placed object behind each shape
type preview struct {
	scene   viewer.Scene
	objects []uuid.UUID // per shape, uuid.Nil for scan and model shapes
}

func (p *preview) shape(s viewer.Shape, id uuid.UUID) {
	p.scene.Shapes = append(p.scene.Shapes, s)
	p.objects = append(p.objects, id)
}

func (p *preview) line(color uint32, points ...geometry.Vector3) {
	p.scene.Lines = append(p.scene.Lines, viewer.Polyline{Points: points, Color: color})
}

func previewOf(snap app.Snapshot) preview {
	var p preview
	for _, m := range snap.Meshes {
		p.shape(viewer.Shape{Mesh: m, Color: scanMeshColor, Wireframe: snap.Wireframe}, uuid.Nil)
	}
	for _, part := range snap.Model {
		p.shape(viewer.Shape{Mesh: part.Mesh, Color: part.Color, Wireframe: part.Wireframe}, uuid.Nil)
	}
	for _, o := range snap.Objects {
		p.shape(viewer.Shape{Mesh: o.Mesh, Color: o.Color}, o.ID)
		switch {
		case o.Selected:
			p.shape(viewer.Shape{Mesh: o.Mesh, Color: app.SelectionColor, Wireframe: true}, uuid.Nil)
		case o.Hovered:
			p.shape(viewer.Shape{Mesh: o.Mesh, Color: app.HoverColor, Wireframe: true}, uuid.Nil)
		}
	}

	for _, pl := range snap.Planes {
		p.line(app.PlaneColors[pl.Class], pl.Outline...)
	}
	for _, e := range snap.ModelEdges {
		p.line(app.EdgeColor, e.A, e.B)
	}
	for _, s := range snap.Strokes {
		p.line(s.Color, s.Points...)
	}
	for _, m := range snap.Measurements {
		p.line(m.Color, m.Points...)
	}
	for _, h := range snap.Gizmo {
		color := uint32(0xffffff)
		if h.Axis >= 0 && h.Axis < len(axisColors) {
			color = axisColors[h.Axis]
		}
		p.line(color, h.Center, h.Center.Add(h.Dir.Mul(handleLength)))
	}
	return p
}

// objectAt maps a picked shape back to its placed object
func (p preview) objectAt(index int) (uuid.UUID, bool) {
	if index < 0 || index >= len(p.objects) || p.objects[index] == uuid.Nil {
		return uuid.Nil, false
	}
	return p.objects[index], true
}
