// Package refmodel is the imported reference model of the room: a GLB, STL
// or OpenSCAD file that can serve as placement surface and occluder.
package refmodel

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/glb"
	"github.com/philipparndt/goroom/pkg/stl"
)

// View is how the model is drawn
type View int

const (
	ViewFull View = iota
	ViewWire
	ViewEdges
)

var viewNames = [...]string{"FULL", "WIRE", "EDGES"}

// String returns FULL, WIRE or EDGES
func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("view(%d)", int(v))
	}
	return viewNames[v]
}

const (
	defaultColor = 0xBDBDBD
	// EdgeAngle is the minimum dihedral angle, in degrees, of a drawn feature edge
	EdgeAngle = 20.0
)

// Part is one mesh of the model in world space
type Part struct {
	Name      string
	Mesh      geometry.Mesh
	Material  glb.Material
	Wireframe bool
	DepthOnly bool

	saved *glb.Material
}

// Edge is a line segment of the edge overlay
type Edge struct {
	A, B geometry.Vector3
}

// Renderer turns an OpenSCAD file into a temporary STL
type Renderer interface {
	RenderTemp(ctx context.Context, scadFile string) (string, func(), error)
}

// Model is a loaded reference model
type Model struct {
	Path  string
	parts []*Part

	interaction bool
	occlusion   bool
	view        View
	edges       []Edge
}

// Load reads a model by file extension. renderer may be nil when no .scad
// files are expected.
func Load(ctx context.Context, path string, renderer Renderer) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		doc, err := glb.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return FromDocument(path, doc)
	case ".stl":
		mesh, err := stl.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return FromMesh(path, mesh)
	case ".scad":
		if renderer == nil {
			return nil, fmt.Errorf("cannot load %s: no OpenSCAD renderer", path)
		}
		out, cleanup, err := renderer.RenderTemp(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		mesh, err := stl.Parse(out)
		if err != nil {
			return nil, fmt.Errorf("failed to load rendered %s: %w", path, err)
		}
		return FromMesh(path, mesh)
	}
	return nil, fmt.Errorf("unsupported model format %q", filepath.Ext(path))
}

// FromDocument builds a model from every mesh of a GLB scene
func FromDocument(path string, doc glb.Document) (*Model, error) {
	m := &Model{Path: path, interaction: true}
	doc.Walk(func(n *glb.Node, world geometry.Transform) {
		if n.Mesh == nil || n.Mesh.IsEmpty() {
			return
		}
		mat := glb.Material{Name: n.Name, Color: defaultColor, Opacity: 1}
		if n.Material >= 0 && n.Material < len(doc.Materials) {
			mat = doc.Materials[n.Material]
		}
		m.parts = append(m.parts, &Part{Name: n.Name, Mesh: n.Mesh.Transformed(world), Material: mat})
	})
	if len(m.parts) == 0 {
		return nil, fmt.Errorf("%s contains no meshes", path)
	}
	return m, nil
}

// FromMesh wraps a single mesh
func FromMesh(path string, mesh geometry.Mesh) (*Model, error) {
	if mesh.IsEmpty() {
		return nil, fmt.Errorf("%s contains no triangles", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Model{
		Path:        path,
		interaction: true,
		parts:       []*Part{{Name: name, Mesh: mesh, Material: glb.Material{Name: name, Color: defaultColor, Opacity: 1}}},
	}, nil
}

// Parts returns the meshes of the model
func (m *Model) Parts() []*Part { return m.parts }

// Bounds returns the world bounding box
func (m *Model) Bounds() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	for _, p := range m.parts {
		b = b.Union(p.Mesh.BoundingBox())
	}
	return b
}

// TriangleCount sums the triangles of all parts
func (m *Model) TriangleCount() int {
	n := 0
	for _, p := range m.parts {
		n += p.Mesh.TriangleCount()
	}
	return n
}

// InteractionEnabled reports whether the model is used as placement surface
func (m *Model) InteractionEnabled() bool { return m.interaction }

// SetInteraction enables or disables the model as placement surface
func (m *Model) SetInteraction(on bool) { m.interaction = on }

// Raycast returns the nearest hit over all parts
func (m *Model) Raycast(r geometry.Ray) (geometry.MeshHit, bool) {
	best := geometry.MeshHit{Distance: math.Inf(1)}
	found := false
	for _, p := range m.parts {
		if hit, ok := p.Mesh.Raycast(r); ok && hit.Distance < best.Distance {
			best, found = hit, true
		}
	}
	return best, found
}

// Occlusion reports whether the parts are drawn depth-only
func (m *Model) Occlusion() bool { return m.occlusion }

// SetOcclusion swaps every part to a depth-only material, or restores the
// original material when turned off
func (m *Model) SetOcclusion(on bool) {
	m.occlusion = on
	for _, p := range m.parts {
		if on {
			if p.saved == nil {
				saved := p.Material
				p.saved = &saved
			}
			p.Material = glb.Material{Name: "occluder", Color: 0x000000, Opacity: 1}
			p.DepthOnly = true
			continue
		}
		if p.saved != nil {
			p.Material = *p.saved
			p.saved = nil
		}
		p.DepthOnly = false
	}
}

// SetWireframe switches the parts between filled and wireframe. It has no
// effect while the model occludes.
func (m *Model) SetWireframe(on bool) {
	if m.occlusion {
		return
	}
	for _, p := range m.parts {
		p.Wireframe = on
	}
}

// View returns the current model view
func (m *Model) View() View { return m.view }

// CycleView advances FULL, WIRE, EDGES and back to FULL
func (m *Model) CycleView() View {
	m.view = (m.view + 1) % View(len(viewNames))
	m.SetWireframe(m.view == ViewWire)
	if m.view == ViewEdges && m.edges == nil {
		m.edges = FeatureEdges(m.parts, EdgeAngle)
	}
	return m.view
}

// Edges returns the feature edge overlay when the edge view is active
func (m *Model) Edges() []Edge {
	if m.view != ViewEdges {
		return nil
	}
	return m.edges
}
