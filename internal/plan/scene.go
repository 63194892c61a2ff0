package plan

import (
	"fmt"

	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// FromScene captures the registry contents as a document
func FromScene(reg *scene.Registry) Document {
	doc := Document{Version: Version, Items: []Item{}, Draws: []Draw{}, Measures: []Measure{}}
	for _, obj := range reg.Objects() {
		t := obj.Transform
		doc.Items = append(doc.Items, Item{
			Shape:      obj.Shape.String(),
			Color:      obj.Color,
			Position:   t.Position.ToArray(),
			Quaternion: t.Orientation.ToArray(),
			Scale:      t.Scale.ToArray(),
		})
	}
	for _, s := range reg.Strokes() {
		pts := s.Points()
		flat := make([]float64, 0, 3*len(pts))
		for _, p := range pts {
			flat = append(flat, p.X, p.Y, p.Z)
		}
		doc.Draws = append(doc.Draws, Draw{Color: s.Color, Points: flat})
	}
	for _, m := range reg.Measurements() {
		doc.Measures = append(doc.Measures, Measure{A: m.A.ToArray(), B: m.B.ToArray()})
	}
	return doc
}

// Apply replaces the registry contents with the document. Everything is
// checked first; on error the registry is left untouched.
func Apply(doc Document, reg *scene.Registry, minMeasure float64) error {
	type placement struct {
		shape scene.Shape
		color uint32
		t     geometry.Transform
	}
	placements := make([]placement, 0, len(doc.Items))
	for i, it := range doc.Items {
		shape, err := scene.ParseShape(it.Shape)
		if err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)
		}
		t := it.transform()
		if !t.IsValid() {
			return fmt.Errorf("%w: item %d: degenerate transform", ErrMalformed, i)
		}
		placements = append(placements, placement{shape: shape, color: it.Color, t: t})
	}
	for i, d := range doc.Draws {
		if len(d.Points)%3 != 0 {
			return fmt.Errorf("%w: draw %d: points must be xyz triples", ErrMalformed, i)
		}
	}
	for i, m := range doc.Measures {
		a, b := geometry.Vector3FromArray(m.A), geometry.Vector3FromArray(m.B)
		if a.Distance(b) < minMeasure {
			return fmt.Errorf("%w: measure %d: %v", ErrMalformed, i, scene.ErrTooShort)
		}
	}

	reg.Clear()
	for _, p := range placements {
		if _, err := reg.AddObject(p.shape, p.color, p.t); err != nil {
			return fmt.Errorf("failed to restore object: %w", err)
		}
	}
	for _, d := range doc.Draws {
		pts := make([]geometry.Vector3, 0, len(d.Points)/3)
		for i := 0; i+2 < len(d.Points); i += 3 {
			pts = append(pts, geometry.NewVector3(d.Points[i], d.Points[i+1], d.Points[i+2]))
		}
		reg.AddStroke(d.Color, pts)
	}
	for _, m := range doc.Measures {
		if _, err := reg.AddMeasurement(geometry.Vector3FromArray(m.A), geometry.Vector3FromArray(m.B)); err != nil {
			return fmt.Errorf("failed to restore measurement: %w", err)
		}
	}
	return nil
}
