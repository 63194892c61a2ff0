package app

import (
	"slices"

	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/internal/scan"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/internal/tools"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// Colors of the overlay lines
const (
	MeasurementColor = 0xffd54f
	PreviewColor     = 0xffffff
	SelectionColor   = 0x22c55e
	HoverColor       = 0x93c5fd
	EdgeColor        = 0x111827
)

// PlaneColors are the outline colours per plane class
var PlaneColors = map[scan.Class]uint32{
	scan.ClassFloor:   0x4caf50,
	scan.ClassCeiling: 0x2196f3,
	scan.ClassWall:    0xff9800,
}

// ObjectView is a placed object ready to draw
type ObjectView struct {
	ID       uuid.UUID
	Shape    scene.Shape
	Color    uint32
	Mesh     geometry.Mesh
	Selected bool
	Hovered  bool
}

// LineView is a coloured polyline
type LineView struct {
	Points []geometry.Vector3
	Color  uint32
}

// LabelView is text anchored at a world position
type LabelView struct {
	Text     string
	Position geometry.Vector3
}

// PlaneView is the outline of a detected plane
type PlaneView struct {
	ID      string
	Class   scan.Class
	Outline []geometry.Vector3
}

// PartView is one visible part of the reference model
type PartView struct {
	Name      string
	Mesh      geometry.Mesh
	Color     uint32
	Opacity   float64
	Wireframe bool
}

// Snapshot is a copy of everything a desktop view draws. It is taken on the
// frame loop and may be read from any goroutine afterwards.
type Snapshot struct {
	Revision     uint64
	Objects      []ObjectView
	Strokes      []LineView
	Measurements []LineView
	Labels       []LabelView
	Planes       []PlaneView
	Meshes       []geometry.Mesh
	Wireframe    bool
	Model        []PartView
	ModelEdges   []refmodel.Edge
	Gizmo        []tools.Handle
	Status       string
}

// Snapshot copies the drawable state
func (c *Context) Snapshot() Snapshot {
	s := Snapshot{Revision: c.Registry.Revision(), Wireframe: c.Scan.Wireframe(), Gizmo: c.Tools.Gizmo()}
	if e, ok := c.status.Last(); ok {
		s.Status = e.Text
	}

	for _, o := range c.Registry.Objects() {
		s.Objects = append(s.Objects, ObjectView{
			ID:       o.ID,
			Shape:    o.Shape,
			Color:    o.Color,
			Mesh:     o.WorldMesh(),
			Selected: o.ID == c.Tools.Selected(),
			Hovered:  o.ID == c.Tools.Hovered(),
		})
	}
	for _, st := range c.Registry.Strokes() {
		if st.Len() < 2 {
			continue
		}
		s.Strokes = append(s.Strokes, LineView{Points: slices.Clone(st.Points()), Color: st.Color})
	}
	for _, m := range c.Registry.Measurements() {
		s.Measurements = append(s.Measurements, LineView{Points: []geometry.Vector3{m.A, m.B}, Color: MeasurementColor})
		s.Labels = append(s.Labels, LabelView{Text: m.Label, Position: m.LabelPosition()})
	}
	if p, ok := c.Tools.Preview(); ok {
		s.Measurements = append(s.Measurements, LineView{Points: []geometry.Vector3{p.A, p.B}, Color: PreviewColor})
		mid := p.A.Add(p.B).Mul(0.5)
		mid.Y += 0.05
		s.Labels = append(s.Labels, LabelView{Text: p.Label, Position: mid})
	}

	if c.Scan.ShowPlanes() {
		threshold := c.cfg.Scan.ClassificationThreshold
		for _, p := range c.Scan.Planes() {
			s.Planes = append(s.Planes, PlaneView{
				ID:      p.ID,
				Class:   scan.Classify(p.Normal(), threshold),
				Outline: p.Outline(),
			})
		}
	}
	if c.Scan.ShowMeshes() {
		for _, m := range c.Scan.Meshes() {
			s.Meshes = append(s.Meshes, m.WorldMesh())
		}
	}

	if c.model != nil {
		for _, p := range c.model.Parts() {
			if p.DepthOnly {
				continue
			}
			s.Model = append(s.Model, PartView{
				Name:      p.Name,
				Mesh:      p.Mesh,
				Color:     p.Material.Color,
				Opacity:   p.Material.Opacity,
				Wireframe: p.Wireframe,
			})
		}
		s.ModelEdges = c.model.Edges()
	}
	return s
}

// Bounds returns the box around every drawable in the snapshot
func (s Snapshot) Bounds() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	extend := func(pts []geometry.Vector3) {
		for _, p := range pts {
			b.Extend(p)
		}
	}
	for _, o := range s.Objects {
		extend(o.Mesh.Positions)
	}
	for _, l := range s.Strokes {
		extend(l.Points)
	}
	for _, l := range s.Measurements {
		extend(l.Points)
	}
	for _, p := range s.Planes {
		extend(p.Outline)
	}
	for _, m := range s.Meshes {
		extend(m.Positions)
	}
	for _, p := range s.Model {
		extend(p.Mesh.Positions)
	}
	return b
}
