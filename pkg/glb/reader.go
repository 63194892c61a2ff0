package glb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// Load reads a .glb file from disk
func Load(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode reads a binary glTF container. Only the embedded BIN chunk is
// supported; triangle primitives are merged per mesh.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read glb: %w", err)
	}
	if len(data) < 20 {
		return Document{}, fmt.Errorf("%w: file too short", ErrInvalid)
	}
	le := binary.LittleEndian
	if le.Uint32(data[0:]) != magic {
		return Document{}, fmt.Errorf("%w: bad magic", ErrInvalid)
	}
	if v := le.Uint32(data[4:]); v != version {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrInvalid, v)
	}
	total := int(le.Uint32(data[8:]))
	if total > len(data) {
		return Document{}, fmt.Errorf("%w: declared length %d exceeds %d bytes", ErrInvalid, total, len(data))
	}

	var jsonChunk, binChunk []byte
	for offset := 12; offset+8 <= total; {
		length := int(le.Uint32(data[offset:]))
		kind := le.Uint32(data[offset+4:])
		start := offset + 8
		if length < 0 || start+length > total {
			return Document{}, fmt.Errorf("%w: chunk overruns file", ErrInvalid)
		}
		switch kind {
		case chunkJSON:
			jsonChunk = data[start : start+length]
		case chunkBIN:
			if binChunk == nil {
				binChunk = data[start : start+length]
			}
		}
		offset = start + length
	}
	if jsonChunk == nil {
		return Document{}, fmt.Errorf("%w: missing JSON chunk", ErrInvalid)
	}

	var gj gltfJSON
	if err := json.Unmarshal(jsonChunk, &gj); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	d := decoder{gj: gj, bin: binChunk}
	return d.document()
}

type decoder struct {
	gj  gltfJSON
	bin []byte
}

func (d *decoder) document() (Document, error) {
	doc := Document{Generator: d.gj.Asset.Generator}
	for _, m := range d.gj.Materials {
		doc.Materials = append(doc.Materials, decodeMaterial(m))
	}

	var roots []int
	if len(d.gj.Scenes) > 0 {
		scene := d.gj.Scene
		if scene < 0 || scene >= len(d.gj.Scenes) {
			scene = 0
		}
		roots = d.gj.Scenes[scene].Nodes
	} else {
		// No scene: treat every node that is nobody's child as a root
		isChild := make(map[int]bool)
		for _, n := range d.gj.Nodes {
			for _, c := range n.Children {
				isChild[c] = true
			}
		}
		for i := range d.gj.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
	}

	visiting := make(map[int]bool)
	for _, idx := range roots {
		n, err := d.node(idx, visiting)
		if err != nil {
			return Document{}, err
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	return doc, nil
}

func decodeMaterial(m gltfMaterial) Material {
	out := Material{Name: m.Name, Color: 0xffffff, Opacity: 1, DoubleSided: m.DoubleSided}
	if f := m.PBR.BaseColorFactor; len(f) >= 3 {
		out.Color = LinearToColor([3]float64{f[0], f[1], f[2]})
		if len(f) >= 4 {
			out.Opacity = f[3]
		}
	}
	return out
}

func (d *decoder) node(idx int, visiting map[int]bool) (*Node, error) {
	if idx < 0 || idx >= len(d.gj.Nodes) {
		return nil, fmt.Errorf("%w: node %d out of range", ErrInvalid, idx)
	}
	if visiting[idx] {
		return nil, fmt.Errorf("%w: node %d is its own ancestor", ErrInvalid, idx)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	gn := d.gj.Nodes[idx]
	n := NewNode(gn.Name)
	t, err := nodeTransform(gn)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", gn.Name, err)
	}
	n.Transform = t

	if gn.Mesh != nil {
		mesh, material, err := d.mesh(*gn.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", gn.Name, err)
		}
		n.Mesh = &mesh
		n.Material = material
	}

	for _, c := range gn.Children {
		child, err := d.node(c, visiting)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func nodeTransform(gn gltfNode) (geometry.Transform, error) {
	if len(gn.Matrix) == 16 {
		if !isFiniteSlice(gn.Matrix) {
			return geometry.Transform{}, fmt.Errorf("%w: non-finite matrix", ErrInvalid)
		}
		var m [16]float64
		copy(m[:], gn.Matrix)
		return geometry.TransformFromMatrix(m), nil
	}
	t := geometry.IdentityTransform()
	if len(gn.Translation) == 3 {
		t.Position = geometry.NewVector3(gn.Translation[0], gn.Translation[1], gn.Translation[2])
	}
	if len(gn.Rotation) == 4 {
		t.Orientation = geometry.QuaternionFromArray([4]float64(gn.Rotation)).Normalize()
	}
	if len(gn.Scale) == 3 {
		t.Scale = geometry.NewVector3(gn.Scale[0], gn.Scale[1], gn.Scale[2])
	}
	if !t.Position.IsFinite() || !t.Orientation.IsFinite() || !t.Scale.IsFinite() {
		return geometry.Transform{}, fmt.Errorf("%w: non-finite transform", ErrInvalid)
	}
	return t, nil
}

func (d *decoder) mesh(idx int) (geometry.Mesh, int, error) {
	if idx < 0 || idx >= len(d.gj.Meshes) {
		return geometry.Mesh{}, -1, fmt.Errorf("%w: mesh %d out of range", ErrInvalid, idx)
	}
	gm := d.gj.Meshes[idx]
	out := geometry.Mesh{Name: gm.Name}
	material := -1

	for _, prim := range gm.Primitives {
		if prim.Mode != nil && *prim.Mode != modeTriangles {
			continue
		}
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := d.readVec3(posIdx)
		if err != nil {
			return geometry.Mesh{}, -1, err
		}
		var indices []uint32
		if prim.Indices != nil {
			if indices, err = d.readIndices(*prim.Indices); err != nil {
				return geometry.Mesh{}, -1, err
			}
		}
		part := geometry.Mesh{Positions: positions, Indices: indices}
		if err := part.Validate(); err != nil {
			return geometry.Mesh{}, -1, err
		}
		out = geometry.MergeMeshes(gm.Name, out, part)
		if material < 0 && prim.Material != nil && *prim.Material < len(d.gj.Materials) {
			material = *prim.Material
		}
	}
	return out, material, nil
}

// view returns the bytes an accessor reads from, with the element stride
func (d *decoder) view(acc gltfAccessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("%w: sparse or empty accessors are not supported", ErrInvalid)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(d.gj.BufferViews) {
		return nil, 0, fmt.Errorf("%w: bufferView %d out of range", ErrInvalid, *acc.BufferView)
	}
	bv := d.gj.BufferViews[*acc.BufferView]
	if bv.Buffer != 0 || d.bin == nil {
		return nil, 0, fmt.Errorf("%w: only the embedded binary buffer is supported", ErrInvalid)
	}
	if bv.ByteOffset+bv.ByteLength > len(d.bin) {
		return nil, 0, fmt.Errorf("%w: bufferView overruns binary chunk", ErrInvalid)
	}
	data := d.bin[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if acc.ByteOffset < 0 || acc.ByteOffset > len(data) {
		return nil, 0, fmt.Errorf("%w: accessor offset outside bufferView", ErrInvalid)
	}
	if acc.Count > 0 && acc.ByteOffset+(acc.Count-1)*stride+elemSize > len(data) {
		return nil, 0, fmt.Errorf("%w: accessor overruns bufferView", ErrInvalid)
	}
	return data[acc.ByteOffset:], stride, nil
}

func (d *decoder) accessor(idx int) (gltfAccessor, error) {
	if idx < 0 || idx >= len(d.gj.Accessors) {
		return gltfAccessor{}, fmt.Errorf("%w: accessor %d out of range", ErrInvalid, idx)
	}
	return d.gj.Accessors[idx], nil
}

func (d *decoder) readVec3(idx int) ([]geometry.Vector3, error) {
	acc, err := d.accessor(idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != "VEC3" || acc.ComponentType != componentF32 {
		return nil, fmt.Errorf("%w: POSITION must be float VEC3", ErrInvalid)
	}
	data, stride, err := d.view(acc, 12)
	if err != nil {
		return nil, err
	}
	le := binary.LittleEndian
	out := make([]geometry.Vector3, acc.Count)
	for i := range out {
		o := i * stride
		out[i] = geometry.NewVector3(
			float64(math.Float32frombits(le.Uint32(data[o:]))),
			float64(math.Float32frombits(le.Uint32(data[o+4:]))),
			float64(math.Float32frombits(le.Uint32(data[o+8:]))),
		)
	}
	return out, nil
}

func (d *decoder) readIndices(idx int) ([]uint32, error) {
	acc, err := d.accessor(idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("%w: indices must be SCALAR", ErrInvalid)
	}
	var size int
	switch acc.ComponentType {
	case componentU8:
		size = 1
	case componentU16:
		size = 2
	case componentU32:
		size = 4
	default:
		return nil, fmt.Errorf("%w: unsupported index component type %d", ErrInvalid, acc.ComponentType)
	}
	data, stride, err := d.view(acc, size)
	if err != nil {
		return nil, err
	}
	le := binary.LittleEndian
	out := make([]uint32, acc.Count)
	for i := range out {
		o := i * stride
		switch size {
		case 1:
			out[i] = uint32(data[o])
		case 2:
			out[i] = uint32(le.Uint16(data[o:]))
		default:
			out[i] = le.Uint32(data[o:])
		}
	}
	return out, nil
}

func isFiniteSlice(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
