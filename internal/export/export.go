// Package export builds GLB documents from the scanned room and the placed objects.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/goroom/internal/scan"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/glb"
)

// ErrNoGeometry is returned when there is nothing to export
var ErrNoGeometry = errors.New("no geometry to export")

// Mode selects how the scan is turned into geometry
type Mode int

const (
	// ModePlanes builds a clean floor, walls and ceiling shell from detected planes
	ModePlanes Mode = iota
	// ModeRaw merges the detected meshes as reported
	ModeRaw
)

// String returns "planes" or "raw"
func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "planes"
}

// ParseMode accepts "planes" and "raw"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planes", "":
		return ModePlanes, nil
	case "raw":
		return ModeRaw, nil
	}
	return ModePlanes, fmt.Errorf("unknown export mode %q", s)
}

// FileName is the default output name of a room export
func (m Mode) FileName() string {
	if m == ModeRaw {
		return "room_raw_scan.glb"
	}
	return "room_arch_shell.glb"
}

const (
	// Generator is written to the asset block of every export
	Generator = "goroom"

	// RawMeshNode holds the merged scan meshes
	RawMeshNode = "Room_RawMesh"
	// ShellNode is the parent of the floor, wall and ceiling nodes
	ShellNode = "Architectural_Shell"
	// FurnishingNode is the parent of the placed objects
	FurnishingNode = "Furnishing"

	rawColor     = 0xBDBDBD
	floorColor   = 0x9CA3AF
	wallColor    = 0xD1D5DB
	ceilingColor = 0x6B7280
)

// Source is the scan state an export reads from
type Source interface {
	Planes() []*scan.PlaneVisual
	Meshes() []*scan.MeshVisual
}

// Room builds the room document in the given mode, with placed objects
// appended as a furnishing node when objects is non-empty
func Room(src Source, mode Mode, threshold float64, objects []*scene.PlacedObject) (glb.Document, error) {
	doc := glb.Document{Generator: Generator}
	var root *glb.Node
	if mode == ModeRaw {
		root = rawMesh(&doc, src.Meshes())
	} else {
		root = shell(&doc, src.Planes(), threshold)
	}
	if root == nil {
		return glb.Document{}, fmt.Errorf("%s export: %w", mode, ErrNoGeometry)
	}
	doc.Nodes = append(doc.Nodes, root)
	if f := furnishing(&doc, objects); f != nil {
		doc.Nodes = append(doc.Nodes, f)
	}
	return doc, nil
}

// Furnishing builds a document holding only the placed objects
func Furnishing(objects []*scene.PlacedObject) (glb.Document, error) {
	doc := glb.Document{Generator: Generator}
	f := furnishing(&doc, objects)
	if f == nil {
		return glb.Document{}, fmt.Errorf("furnishing export: %w", ErrNoGeometry)
	}
	doc.Nodes = append(doc.Nodes, f)
	return doc, nil
}

func rawMesh(doc *glb.Document, visuals []*scan.MeshVisual) *glb.Node {
	var meshes []geometry.Mesh
	for _, v := range visuals {
		if m := v.WorldMesh(); !m.IsEmpty() {
			meshes = append(meshes, m)
		}
	}
	if len(meshes) == 0 {
		return nil
	}
	mat := doc.AddMaterial(glb.Material{Name: "Room_Raw", Color: rawColor, Opacity: 1})
	return glb.NewMeshNode(RawMeshNode, geometry.MergeMeshes(RawMeshNode, meshes...), mat)
}

func shell(doc *glb.Document, planes []*scan.PlaneVisual, threshold float64) *glb.Node {
	buckets := make(map[scan.Class][]geometry.Mesh)
	for _, p := range planes {
		m, err := planeMesh(p)
		if err != nil {
			continue
		}
		class := scan.Classify(p.Normal(), threshold)
		buckets[class] = append(buckets[class], m)
	}

	group := glb.NewNode(ShellNode)
	for _, b := range []struct {
		class scan.Class
		name  string
		color uint32
	}{
		{scan.ClassFloor, "Floor", floorColor},
		{scan.ClassWall, "Walls", wallColor},
		{scan.ClassCeiling, "Ceiling", ceilingColor},
	} {
		if len(buckets[b.class]) == 0 {
			continue
		}
		mat := doc.AddMaterial(glb.Material{Name: b.name, Color: b.color, Opacity: 1, DoubleSided: true})
		group.Children = append(group.Children, glb.NewMeshNode(b.name, geometry.MergeMeshes(b.name, buckets[b.class]...), mat))
	}
	if len(group.Children) == 0 {
		return nil
	}
	return group
}

// planeMesh fills the plane outline; the polygon lies on the local XZ plane
func planeMesh(p *scan.PlaneVisual) (geometry.Mesh, error) {
	flat := make([]geometry.Vector2, len(p.Polygon))
	for i, v := range p.Polygon {
		flat[i] = geometry.Vector2{X: v.X, Y: v.Z}
	}
	indices, err := geometry.Triangulate2D(flat)
	if err != nil {
		return geometry.Mesh{}, fmt.Errorf("plane %s: %w", p.ID, err)
	}
	return geometry.Mesh{Name: p.ID, Positions: p.WorldPolygon(), Indices: indices}, nil
}

func furnishing(doc *glb.Document, objects []*scene.PlacedObject) *glb.Node {
	if len(objects) == 0 {
		return nil
	}
	group := glb.NewNode(FurnishingNode)
	materials := make(map[uint32]int)
	for i, obj := range objects {
		mat, ok := materials[obj.Color]
		if !ok {
			mat = doc.AddMaterial(glb.Material{Name: fmt.Sprintf("#%06x", obj.Color), Color: obj.Color, Opacity: 1})
			materials[obj.Color] = mat
		}
		n := glb.NewMeshNode(fmt.Sprintf("%s_%d", obj.Shape, i), obj.Shape.Mesh(), mat)
		n.Transform = obj.Transform
		group.Children = append(group.Children, n)
	}
	return group
}
