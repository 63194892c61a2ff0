// Package plan reads and writes the design plan: the JSON document holding
// placed objects, strokes and measurements.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// Version is the document version written by Encode
const Version = 3

// ErrMalformed is returned for documents that cannot be imported
var ErrMalformed = errors.New("malformed design plan")

const defaultColor = 0xffffff

// Item is one placed object
type Item struct {
	Shape      string     `json:"shape"`
	Color      uint32     `json:"color"`
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
	Scale      [3]float64 `json:"scale"`
}

// Draw is one freehand stroke with flat xyz points
type Draw struct {
	Color  uint32    `json:"color"`
	Points []float64 `json:"points"`
}

// Measure is one finished measurement
type Measure struct {
	A [3]float64 `json:"a"`
	B [3]float64 `json:"b"`
}

// Document is a design plan in the current version
type Document struct {
	Version  int       `json:"version"`
	Items    []Item    `json:"items"`
	Draws    []Draw    `json:"draws"`
	Measures []Measure `json:"measures"`
}

// Encode writes the document as current-version JSON with two-space indentation
func Encode(w io.Writer, doc Document) error {
	doc.Version = Version
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	if doc.Draws == nil {
		doc.Draws = []Draw{}
	}
	if doc.Measures == nil {
		doc.Measures = []Measure{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// Older documents use "type" instead of "shape", call the array of
// measurements "measurements" and may omit scale, quaternion or colour.
type rawItem struct {
	Shape      *string   `json:"shape"`
	Type       *string   `json:"type"`
	Color      *float64  `json:"color"`
	Position   []float64 `json:"position"`
	Quaternion []float64 `json:"quaternion"`
	Scale      []float64 `json:"scale"`
}

type rawDraw struct {
	Color  *float64  `json:"color"`
	Points []float64 `json:"points"`
}

type rawMeasure struct {
	A []float64 `json:"a"`
	B []float64 `json:"b"`
}

type rawDocument struct {
	Version      *int         `json:"version"`
	Items        *[]rawItem   `json:"items"`
	Draws        []rawDraw    `json:"draws"`
	Measures     []rawMeasure `json:"measures"`
	Measurements []rawMeasure `json:"measurements"`
}

// Decode reads a document of any known version and normalises it to the
// current one. Every entry is validated.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read plan: %w", err)
	}
	var raw rawDocument
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Version != nil && (*raw.Version < 1 || *raw.Version > Version) {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, *raw.Version)
	}
	if raw.Items == nil {
		return Document{}, fmt.Errorf("%w: missing items", ErrMalformed)
	}

	doc := Document{Version: Version, Items: make([]Item, 0, len(*raw.Items))}
	for i, ri := range *raw.Items {
		item, err := ri.normalise()
		if err != nil {
			return Document{}, fmt.Errorf("%w: item %d: %v", ErrMalformed, i, err)
		}
		doc.Items = append(doc.Items, item)
	}
	for i, rd := range raw.Draws {
		if len(rd.Points)%3 != 0 || !finite(rd.Points...) {
			return Document{}, fmt.Errorf("%w: draw %d: points must be finite xyz triples", ErrMalformed, i)
		}
		color, err := colorOf(rd.Color)
		if err != nil {
			return Document{}, fmt.Errorf("%w: draw %d: %v", ErrMalformed, i, err)
		}
		doc.Draws = append(doc.Draws, Draw{Color: color, Points: rd.Points})
	}
	measures := raw.Measures
	if measures == nil {
		measures = raw.Measurements
	}
	for i, rm := range measures {
		a, errA := vec3(rm.A)
		b, errB := vec3(rm.B)
		if err := errors.Join(errA, errB); err != nil {
			return Document{}, fmt.Errorf("%w: measure %d: %v", ErrMalformed, i, err)
		}
		doc.Measures = append(doc.Measures, Measure{A: a, B: b})
	}
	return doc, nil
}

func (ri rawItem) normalise() (Item, error) {
	name := "box"
	switch {
	case ri.Shape != nil:
		name = *ri.Shape
	case ri.Type != nil:
		name = *ri.Type
	}
	shape, err := scene.ParseShape(name)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		Shape:      shape.String(),
		Quaternion: [4]float64{0, 0, 0, 1},
		Scale:      [3]float64{1, 1, 1},
	}
	if item.Color, err = colorOf(ri.Color); err != nil {
		return Item{}, err
	}
	if item.Position, err = vec3(ri.Position); err != nil {
		return Item{}, fmt.Errorf("position: %w", err)
	}
	if ri.Quaternion != nil {
		if len(ri.Quaternion) != 4 || !finite(ri.Quaternion...) {
			return Item{}, fmt.Errorf("quaternion needs 4 finite values")
		}
		copy(item.Quaternion[:], ri.Quaternion)
	}
	if ri.Scale != nil {
		if item.Scale, err = vec3(ri.Scale); err != nil {
			return Item{}, fmt.Errorf("scale: %w", err)
		}
	}
	if !item.transform().IsValid() {
		return Item{}, fmt.Errorf("degenerate transform")
	}
	return item, nil
}

func (it Item) transform() geometry.Transform {
	return geometry.Transform{
		Position:    geometry.Vector3FromArray(it.Position),
		Orientation: geometry.QuaternionFromArray(it.Quaternion).Normalize(),
		Scale:       geometry.Vector3FromArray(it.Scale),
	}
}

func colorOf(v *float64) (uint32, error) {
	if v == nil {
		return defaultColor, nil
	}
	c := *v
	if c < 0 || c > 0xffffff || c != math.Trunc(c) {
		return 0, fmt.Errorf("colour %v is not a packed RGB value", c)
	}
	return uint32(c), nil
}

func vec3(v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("need 3 values, got %d", len(v))
	}
	if !finite(v...) {
		return [3]float64{}, fmt.Errorf("values must be finite")
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
