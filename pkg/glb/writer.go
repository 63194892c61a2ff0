package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/philipparndt/goroom/pkg/geometry"
)

const (
	magic         = 0x46546C67 // "glTF"
	version       = 2
	chunkJSON     = 0x4E4F534A
	chunkBIN      = 0x004E4942
	componentU8   = 5121
	componentU16  = 5123
	componentU32  = 5125
	componentF32  = 5126
	targetArray   = 34962
	targetElement = 34963
	modeTriangles = 4
)

// ErrInvalid is returned for containers that are not binary glTF 2.0
var ErrInvalid = errors.New("invalid glb")

type gltfJSON struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       int              `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
}

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Name        string    `json:"name,omitempty"`
	Mesh        *int      `json:"mesh,omitempty"`
	Children    []int     `json:"children,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Matrix      []float64 `json:"matrix,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

type gltfMaterial struct {
	Name        string  `json:"name,omitempty"`
	PBR         gltfPBR `json:"pbrMetallicRoughness"`
	AlphaMode   string  `json:"alphaMode,omitempty"`
	DoubleSided bool    `json:"doubleSided,omitempty"`
}

type gltfPBR struct {
	BaseColorFactor []float64 `json:"baseColorFactor,omitempty"`
	MetallicFactor  *float64  `json:"metallicFactor,omitempty"`
	RoughnessFactor *float64  `json:"roughnessFactor,omitempty"`
}

type gltfAccessor struct {
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float64 `json:"min,omitempty"`
	Max           []float64 `json:"max,omitempty"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
	Target     int `json:"target,omitempty"`
}

type gltfBuffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
}

// encoder accumulates the JSON index and the binary payload
type encoder struct {
	doc gltfJSON
	bin bytes.Buffer
}

// Encode writes the document as a binary glTF container
func Encode(w io.Writer, doc Document) error {
	generator := doc.Generator
	if generator == "" {
		generator = "goroom"
	}
	enc := &encoder{doc: gltfJSON{Asset: gltfAsset{Version: "2.0", Generator: generator}}}

	for _, m := range doc.Materials {
		enc.doc.Materials = append(enc.doc.Materials, encodeMaterial(m))
	}

	roots := make([]int, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		idx, err := enc.addNode(n, len(doc.Materials))
		if err != nil {
			return err
		}
		roots = append(roots, idx)
	}
	enc.doc.Scenes = []gltfScene{{Nodes: roots}}

	if enc.bin.Len() > 0 {
		pad(&enc.bin, 0x00)
		enc.doc.Buffers = []gltfBuffer{{ByteLength: enc.bin.Len()}}
	}

	jsonBytes, err := json.Marshal(enc.doc)
	if err != nil {
		return fmt.Errorf("failed to encode glTF json: %w", err)
	}
	jsonChunk := bytes.NewBuffer(jsonBytes)
	pad(jsonChunk, 0x20)

	total := 12 + 8 + jsonChunk.Len()
	if enc.bin.Len() > 0 {
		total += 8 + enc.bin.Len()
	}

	out := bytes.NewBuffer(make([]byte, 0, total))
	writeU32(out, magic, version, uint32(total))
	writeU32(out, uint32(jsonChunk.Len()), chunkJSON)
	out.Write(jsonChunk.Bytes())
	if enc.bin.Len() > 0 {
		writeU32(out, uint32(enc.bin.Len()), chunkBIN)
		out.Write(enc.bin.Bytes())
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write glb: %w", err)
	}
	return nil
}

func encodeMaterial(m Material) gltfMaterial {
	rgb := ColorToLinear(m.Color)
	opacity := m.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	metallic, roughness := 0.0, 0.9
	gm := gltfMaterial{
		Name: m.Name,
		PBR: gltfPBR{
			BaseColorFactor: []float64{rgb[0], rgb[1], rgb[2], opacity},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		DoubleSided: m.DoubleSided,
	}
	if opacity < 1 {
		gm.AlphaMode = "BLEND"
	}
	return gm
}

func (e *encoder) addNode(n *Node, materialCount int) (int, error) {
	gn := gltfNode{Name: n.Name}
	t := n.Transform
	if t.Scale == (geometry.Vector3{}) {
		t.Scale = geometry.Vector3{X: 1, Y: 1, Z: 1}
	}
	if t.Position != (geometry.Vector3{}) {
		gn.Translation = vec3Slice(t.Position)
	}
	if q := t.Orientation.Normalize(); q != geometry.IdentityQuaternion() {
		a := q.ToArray()
		gn.Rotation = a[:]
	}
	if t.Scale != (geometry.Vector3{X: 1, Y: 1, Z: 1}) {
		gn.Scale = vec3Slice(t.Scale)
	}

	if n.Mesh != nil && !n.Mesh.IsEmpty() {
		if err := n.Mesh.Validate(); err != nil {
			return 0, fmt.Errorf("node %q: %w", n.Name, err)
		}
		material := n.Material
		if material >= materialCount {
			return 0, fmt.Errorf("node %q references material %d of %d", n.Name, material, materialCount)
		}
		meshIdx := e.addMesh(*n.Mesh, material)
		gn.Mesh = &meshIdx
	}

	idx := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, gn)
	for _, c := range n.Children {
		childIdx, err := e.addNode(c, materialCount)
		if err != nil {
			return 0, err
		}
		e.doc.Nodes[idx].Children = append(e.doc.Nodes[idx].Children, childIdx)
	}
	return idx, nil
}

func (e *encoder) addMesh(m geometry.Mesh, material int) int {
	indexed := m.Indexed()

	// Positions
	bounds := indexed.BoundingBox()
	posView := e.addView(targetArray, func(b *bytes.Buffer) {
		for _, f := range indexed.Flat() {
			_ = binary.Write(b, binary.LittleEndian, f)
		}
	})
	posAccessor := len(e.doc.Accessors)
	e.doc.Accessors = append(e.doc.Accessors, gltfAccessor{
		BufferView:    &posView,
		ComponentType: componentF32,
		Count:         len(indexed.Positions),
		Type:          "VEC3",
		Min:           roundedF32(bounds.Min),
		Max:           roundedF32(bounds.Max),
	})

	// Indices
	idxView := e.addView(targetElement, func(b *bytes.Buffer) {
		_ = binary.Write(b, binary.LittleEndian, indexed.Indices)
	})
	idxAccessor := len(e.doc.Accessors)
	e.doc.Accessors = append(e.doc.Accessors, gltfAccessor{
		BufferView:    &idxView,
		ComponentType: componentU32,
		Count:         len(indexed.Indices),
		Type:          "SCALAR",
	})

	prim := gltfPrimitive{
		Attributes: map[string]int{"POSITION": posAccessor},
		Indices:    &idxAccessor,
	}
	if material >= 0 {
		mat := material
		prim.Material = &mat
	}
	e.doc.Meshes = append(e.doc.Meshes, gltfMesh{Name: m.Name, Primitives: []gltfPrimitive{prim}})
	return len(e.doc.Meshes) - 1
}

// addView appends 4-byte aligned data to the binary chunk and returns its bufferView index
func (e *encoder) addView(target int, write func(b *bytes.Buffer)) int {
	pad(&e.bin, 0x00)
	offset := e.bin.Len()
	write(&e.bin)
	e.doc.BufferViews = append(e.doc.BufferViews, gltfBufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: e.bin.Len() - offset,
		Target:     target,
	})
	return len(e.doc.BufferViews) - 1
}

// roundedF32 stores bounds at float32 precision so they match the accessor data
func roundedF32(v geometry.Vector3) []float64 {
	return []float64{
		float64(float32(v.X)),
		float64(float32(v.Y)),
		float64(float32(v.Z)),
	}
}

func pad(b *bytes.Buffer, fill byte) {
	for b.Len()%4 != 0 {
		b.WriteByte(fill)
	}
}

func writeU32(b *bytes.Buffer, values ...uint32) {
	var tmp [4]byte
	for _, v := range values {
		binary.LittleEndian.PutUint32(tmp[:], v)
		b.Write(tmp[:])
	}
}

func vec3Slice(v geometry.Vector3) []float64 {
	a := v.ToArray()
	return a[:]
}
