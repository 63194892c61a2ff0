package refmodel

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/glb"
	"github.com/philipparndt/goroom/pkg/stl"
)

func roomDocument() glb.Document {
	doc := glb.Document{}
	grey := doc.AddMaterial(glb.Material{Name: "table", Color: 0x808080, Opacity: 1})
	table := glb.NewMeshNode("Table", geometry.Box(2, 2, 0.1), grey)
	table.Transform.Position = geometry.NewVector3(0, 0, -3)
	doc.Nodes = append(doc.Nodes, table)
	return doc
}

func TestLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.glb")
	var buf bytes.Buffer
	require.NoError(t, glb.Encode(&buf, roomDocument()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, m.Parts(), 1)
	assert.Equal(t, uint32(0x808080), m.Parts()[0].Material.Color)
	assert.True(t, m.InteractionEnabled())
	assert.InDelta(t, -3.0, m.Bounds().Center().Z, 1e-6)
}

func TestLoadSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, stl.Write(f, geometry.Box(1, 1, 1)))
	require.NoError(t, f.Close())

	m, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, "cube", m.Parts()[0].Name)
}

type fakeRenderer struct {
	stlPath string
	err     error
	cleaned bool
}

func (f *fakeRenderer) RenderTemp(_ context.Context, _ string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.stlPath, func() { f.cleaned = true }, nil
}

func TestLoadSCAD(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.stl")
	f, err := os.Create(out)
	require.NoError(t, err)
	require.NoError(t, stl.Write(f, geometry.Box(1, 1, 1)))
	require.NoError(t, f.Close())

	r := &fakeRenderer{stlPath: out}
	m, err := Load(context.Background(), filepath.Join(dir, "room.scad"), r)
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())
	assert.True(t, r.cleaned)

	_, err = Load(context.Background(), "room.scad", nil)
	assert.Error(t, err)

	boom := errors.New("render failed")
	_, err = Load(context.Background(), "room.scad", &fakeRenderer{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load(context.Background(), "room.obj", nil)
	assert.Error(t, err)
}

func TestRaycastNearestPart(t *testing.T) {
	doc := roomDocument()
	near := glb.NewMeshNode("Near", geometry.Box(0.5, 0.5, 0.1), -1)
	near.Transform.Position = geometry.NewVector3(0, 0, -1)
	doc.Nodes = append(doc.Nodes, near)

	m, err := FromDocument("room.glb", doc)
	require.NoError(t, err)
	hit, ok := m.Raycast(geometry.NewRay(geometry.Vector3{}, geometry.NewVector3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, -0.95, hit.Point.Z, 1e-9)

	_, ok = m.Raycast(geometry.NewRay(geometry.Vector3{}, geometry.NewVector3(0, 0, 1)))
	assert.False(t, ok)
}

func TestOcclusionRestoresMaterial(t *testing.T) {
	m, err := FromDocument("room.glb", roomDocument())
	require.NoError(t, err)
	part := m.Parts()[0]

	m.SetOcclusion(true)
	assert.True(t, part.DepthOnly)
	assert.Equal(t, uint32(0), part.Material.Color)

	m.SetWireframe(true)
	assert.False(t, part.Wireframe, "wireframe is ignored while occluding")

	m.SetOcclusion(true)
	m.SetOcclusion(false)
	assert.False(t, part.DepthOnly)
	assert.Equal(t, uint32(0x808080), part.Material.Color, "toggling twice keeps the original material")

	m.SetWireframe(true)
	assert.True(t, part.Wireframe)
}

func TestCycleView(t *testing.T) {
	m, err := FromMesh("cube.stl", geometry.Box(1, 1, 1))
	require.NoError(t, err)
	part := m.Parts()[0]

	assert.Equal(t, ViewWire, m.CycleView())
	assert.True(t, part.Wireframe)
	assert.Nil(t, m.Edges())

	assert.Equal(t, ViewEdges, m.CycleView())
	assert.False(t, part.Wireframe)
	assert.Len(t, m.Edges(), 12, "a box has twelve feature edges, face diagonals are coplanar")

	assert.Equal(t, ViewFull, m.CycleView())
	assert.Nil(t, m.Edges())
}

func TestFeatureEdgesBoundary(t *testing.T) {
	quad := geometry.Mesh{
		Positions: []geometry.Vector3{{X: 0}, {X: 1}, {X: 1, Z: 1}, {Z: 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	edges := FeatureEdges([]*Part{{Mesh: quad}}, EdgeAngle)
	assert.Len(t, edges, 4, "open border edges are kept, the shared diagonal is not")
}
