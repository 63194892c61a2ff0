package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/scan"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/glb"
)

const threshold = 0.75

func square(id string, pose geometry.Pose) host.DetectedPlane {
	return host.DetectedPlane{
		ID:   id,
		Pose: pose,
		Polygon: []geometry.Vector3{
			{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1},
		},
	}
}

func scanned(t *testing.T, frame host.Frame) *scan.Ingestor {
	t.Helper()
	in := scan.NewIngestor(config.Default().Scan, nil)
	in.SetShowPlanes(true)
	in.SetShowMeshes(true)
	require.Zero(t, in.Update(frame))
	return in
}

func room(t *testing.T) *scan.Ingestor {
	floor := geometry.IdentityPose()
	ceiling := geometry.NewPose(geometry.NewVector3(0, 2.5, 0), geometry.QuaternionFromAxisAngle(geometry.NewVector3(1, 0, 0), math.Pi))
	wall := geometry.NewPose(geometry.NewVector3(0, 1.25, -1), geometry.QuaternionFromAxisAngle(geometry.NewVector3(1, 0, 0), math.Pi/2))
	return scanned(t, host.Frame{
		PlanesSupported: true,
		Planes:          []host.DetectedPlane{square("floor", floor), square("ceiling", ceiling), square("wall", wall)},
	})
}

func TestPlanesShell(t *testing.T) {
	doc, err := Room(room(t), ModePlanes, threshold, nil)
	require.NoError(t, err)

	shell := doc.Find(ShellNode)
	require.NotNil(t, shell)
	require.Len(t, shell.Children, 3)

	names := []string{shell.Children[0].Name, shell.Children[1].Name, shell.Children[2].Name}
	assert.Equal(t, []string{"Floor", "Walls", "Ceiling"}, names)

	colors := []uint32{}
	for _, c := range shell.Children {
		mat := doc.Materials[c.Material]
		assert.True(t, mat.DoubleSided)
		colors = append(colors, mat.Color)
		assert.Equal(t, 2, c.Mesh.TriangleCount(), "a square fills with two triangles")
	}
	assert.Equal(t, []uint32{0x9CA3AF, 0xD1D5DB, 0x6B7280}, colors)

	floor := doc.Find("Floor").Mesh
	assert.InDelta(t, 4.0, floor.SurfaceArea(), 1e-9)
	ceiling := doc.Find("Ceiling").Mesh
	assert.InDelta(t, 2.5, ceiling.BoundingBox().Center().Y, 1e-9)
}

func TestRawMesh(t *testing.T) {
	in := scanned(t, host.Frame{
		MeshesSupported: true,
		Meshes: []host.DetectedMesh{
			{ID: "a", Pose: geometry.IdentityPose(), Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 0, 1}, Indices: []uint32{0, 1, 2}},
			{ID: "b", Pose: geometry.NewPose(geometry.NewVector3(0, 2, 0), geometry.IdentityQuaternion()), Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 0, 1}, Indices: []uint32{0, 2, 1}},
		},
	})
	doc, err := Room(in, ModeRaw, threshold, nil)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 1)

	raw := doc.Nodes[0]
	assert.Equal(t, RawMeshNode, raw.Name)
	assert.Equal(t, 2, raw.Mesh.TriangleCount())
	assert.InDelta(t, 2.0, raw.Mesh.BoundingBox().Max.Y, 1e-9, "meshes are merged in world space")
}

func TestNoGeometry(t *testing.T) {
	empty := scanned(t, host.Frame{})
	for _, mode := range []Mode{ModePlanes, ModeRaw} {
		_, err := Room(empty, mode, threshold, nil)
		assert.ErrorIs(t, err, ErrNoGeometry, mode.String())
	}
	_, err := Furnishing(nil)
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func TestFurnishingAppended(t *testing.T) {
	reg := scene.NewRegistry(config.Default().Tools, nil)
	tr := geometry.IdentityTransform()
	tr.Position = geometry.NewVector3(0, 1, 2)
	_, err := reg.AddObject(scene.ShapeCircle, 0x3b82f6, tr)
	require.NoError(t, err)
	_, err = reg.AddObject(scene.ShapeBox, 0x3b82f6, geometry.IdentityTransform())
	require.NoError(t, err)

	doc, err := Room(room(t), ModePlanes, threshold, reg.Objects())
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 2)

	f := doc.Find(FurnishingNode)
	require.NotNil(t, f)
	require.Len(t, f.Children, 2)
	assert.Equal(t, uint32(0x3b82f6), doc.Materials[f.Children[0].Material].Color)
	assert.Equal(t, f.Children[0].Material, f.Children[1].Material, "objects of one colour share a material")

	var buf bytes.Buffer
	require.NoError(t, glb.Encode(&buf, doc))
	back, err := glb.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.TriangleCount(), back.TriangleCount())
	assert.NotNil(t, back.Find(FurnishingNode))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("RAW")
	require.NoError(t, err)
	assert.Equal(t, ModeRaw, m)
	assert.Equal(t, "room_raw_scan.glb", m.FileName())

	_, err = ParseMode("voxels")
	assert.Error(t, err)
}
