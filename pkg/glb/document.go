// Package glb reads and writes binary glTF 2.0 containers holding triangle meshes.
package glb

import (
	"math"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// Material is a flat-coloured PBR material
type Material struct {
	Name        string
	Color       uint32 // packed 0xRRGGBB, sRGB
	Opacity     float64
	DoubleSided bool
}

// Node is one entry of the scene hierarchy
type Node struct {
	Name      string
	Transform geometry.Transform
	Mesh      *geometry.Mesh
	Material  int // index into Document.Materials, -1 for none
	Children  []*Node
}

// Document is a scene made of root nodes and the materials they reference
type Document struct {
	Generator string
	Nodes     []*Node
	Materials []Material
}

// NewNode creates an empty node with an identity transform
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: geometry.IdentityTransform(), Material: -1}
}

// NewMeshNode creates a node carrying a mesh
func NewMeshNode(name string, mesh geometry.Mesh, material int) *Node {
	n := NewNode(name)
	n.Mesh = &mesh
	n.Material = material
	return n
}

// AddMaterial appends a material and returns its index
func (d *Document) AddMaterial(m Material) int {
	d.Materials = append(d.Materials, m)
	return len(d.Materials) - 1
}

// Walk visits every node depth-first with its world transform
func (d Document) Walk(fn func(n *Node, world geometry.Transform)) {
	var visit func(n *Node, parent geometry.Transform)
	visit = func(n *Node, parent geometry.Transform) {
		world := parent.Compose(n.Transform)
		fn(n, world)
		for _, c := range n.Children {
			visit(c, world)
		}
	}
	for _, n := range d.Nodes {
		visit(n, geometry.IdentityTransform())
	}
}

// Find returns the first node with the given name
func (d Document) Find(name string) *Node {
	var found *Node
	d.Walk(func(n *Node, _ geometry.Transform) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// WorldMeshes returns every mesh transformed into scene space
func (d Document) WorldMeshes() []geometry.Mesh {
	var out []geometry.Mesh
	d.Walk(func(n *Node, world geometry.Transform) {
		if n.Mesh == nil {
			return
		}
		m := n.Mesh.Transformed(world)
		if m.Name == "" {
			m.Name = n.Name
		}
		out = append(out, m)
	})
	return out
}

// TriangleCount returns the number of triangles across all meshes
func (d Document) TriangleCount() int {
	total := 0
	d.Walk(func(n *Node, _ geometry.Transform) {
		if n.Mesh != nil {
			total += n.Mesh.TriangleCount()
		}
	})
	return total
}

// SRGBToLinear converts one sRGB channel in [0,1] to linear light
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB converts one linear channel in [0,1] to sRGB
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// ColorToLinear unpacks 0xRRGGBB into linear RGB factors
func ColorToLinear(color uint32) [3]float64 {
	return [3]float64{
		SRGBToLinear(float64((color>>16)&0xff) / 255),
		SRGBToLinear(float64((color>>8)&0xff) / 255),
		SRGBToLinear(float64(color&0xff) / 255),
	}
}

// LinearToColor packs linear RGB factors back into 0xRRGGBB
func LinearToColor(rgb [3]float64) uint32 {
	var out uint32
	for _, c := range rgb {
		v := math.Round(geometry.Clamp(LinearToSRGB(geometry.Clamp(c, 0, 1)), 0, 1) * 255)
		out = out<<8 | uint32(v)
	}
	return out
}
