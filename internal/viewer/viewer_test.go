package viewer

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/pkg/geometry"
)

func testViewer(t *testing.T, plan, model string) *Viewer {
	t.Helper()
	return newViewer(t.Context(), Options{
		PlanFile:  plan,
		ModelFile: model,
		Config:    config.Default(),
		Status:    status.New(nil, status.WithLanguage(language.English)),
	})
}

func at(x, y, z float64) geometry.Transform {
	tr := geometry.IdentityTransform()
	tr.Position = geometry.NewVector3(x, y, z)
	return tr
}

func TestOrbitPosition(t *testing.T) {
	target := rl.Vector3{X: 1, Y: 0, Z: 0}

	p := orbitPosition(target, 2, 0, 0)
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.InDelta(t, 2, p.Z, 1e-6)

	p = orbitPosition(target, 2, math.Pi/2, 0)
	assert.InDelta(t, 2, p.Y, 1e-5)
}

func TestPickRay(t *testing.T) {
	cam := rl.Camera3D{
		Position: rl.Vector3{Z: 5},
		Up:       rl.Vector3{Y: 1},
		Fovy:     fovy,
	}

	centre := pickRay(cam, rl.Vector2{X: 400, Y: 300}, 800, 600)
	assert.InDelta(t, 0, centre.Direction.X, 1e-9)
	assert.InDelta(t, 0, centre.Direction.Y, 1e-9)
	assert.InDelta(t, -1, centre.Direction.Z, 1e-9)

	corner := pickRay(cam, rl.Vector2{X: 800, Y: 0}, 800, 600)
	assert.Greater(t, corner.Direction.X, 0.0)
	assert.Greater(t, corner.Direction.Y, 0.0)
	// The top edge is half the vertical field of view away from the axis
	assert.InDelta(t, math.Tan(fovy*math.Pi/360), corner.Direction.Y/-corner.Direction.Z, 1e-9)
}

func TestBakeMesh(t *testing.T) {
	b := bakeMesh(geometry.Box(1, 1, 1), 0xff8000)

	require.Equal(t, 12, b.triangles)
	assert.Len(t, b.vertices, 12*9)
	assert.Len(t, b.normals, 12*9)
	assert.Len(t, b.texcoords, 12*6)
	require.Len(t, b.colors, 12*12)
	for i := 0; i < len(b.colors); i += 4 {
		assert.GreaterOrEqual(t, b.colors[i], uint8(75))
		assert.LessOrEqual(t, b.colors[i+1], uint8(0x80))
		assert.Equal(t, uint8(0), b.colors[i+2])
		assert.Equal(t, uint8(255), b.colors[i+3])
	}
}

func TestBakeEmptyMesh(t *testing.T) {
	b := bakeMesh(geometry.Mesh{}, 0xffffff)
	assert.Zero(t, b.triangles)
	assert.Empty(t, b.vertices)
}

func TestWireEdgesAreUnique(t *testing.T) {
	// 12 cube edges plus one diagonal per face
	assert.Len(t, wireEdges(geometry.Box(1, 1, 1)), 18)
}

func TestPickObjectNearest(t *testing.T) {
	box := geometry.Box(1, 1, 1)
	near, far := uuid.New(), uuid.New()
	objects := []app.ObjectView{
		{ID: far, Mesh: box.Transformed(at(0, 0, -3))},
		{ID: near, Mesh: box.Transformed(at(0, 0, 0))},
	}

	id, ok := pickObject(objects, geometry.NewRay(geometry.NewVector3(0, 0, 5), geometry.NewVector3(0, 0, -1)))
	require.True(t, ok)
	assert.Equal(t, near, id)

	_, ok = pickObject(objects, geometry.NewRay(geometry.NewVector3(5, 0, 5), geometry.NewVector3(0, 0, -1)))
	assert.False(t, ok)
}

func TestDescribeSelection(t *testing.T) {
	v := testViewer(t, "", "")
	obj, err := v.c.Registry.AddObject(scene.ShapeBox, 0x22c55e, at(0, 0.5, 0))
	require.NoError(t, err)

	snap := v.c.Snapshot()
	info := describeSelection(snap, obj.ID)
	require.NotNil(t, info.result)
	assert.Equal(t, "box", info.shape)
	assert.Equal(t, uint32(0x22c55e), info.color)
	assert.Equal(t, snap.Revision, info.revision)
	assert.Equal(t, 12, info.result.TriangleCount)

	assert.Nil(t, describeSelection(snap, uuid.New()).result)
}

func TestLoadMissingPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	v := testViewer(t, path, "")

	require.NoError(t, v.load())
	assert.Empty(t, v.c.Registry.Objects())
	last, ok := v.c.Status().Last()
	require.True(t, ok)
	assert.Contains(t, last.Text, "created on save")
}

func TestSaveAndReloadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	v := testViewer(t, path, "")
	_, err := v.c.Registry.AddObject(scene.ShapeBox, 0x3b82f6, at(1, 0, 0))
	require.NoError(t, err)

	v.savePlan()
	require.FileExists(t, path)
	assert.WithinDuration(t, time.Now(), v.FileWatch.savedAt, time.Second)

	other := testViewer(t, path, "")
	require.NoError(t, other.load())
	assert.Len(t, other.c.Registry.Objects(), 1)
}

func TestOwnSaveDoesNotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	v := testViewer(t, path, "")
	_, err := v.c.Registry.AddObject(scene.ShapeBox, 0x3b82f6, at(0, 0, 0))
	require.NoError(t, err)
	v.savePlan()

	// Added after the save; a reload would drop it
	_, err = v.c.Registry.AddObject(scene.ShapeBox, 0x3b82f6, at(2, 0, 0))
	require.NoError(t, err)
	v.onPlanChanged(path)
	v.c.Tick(host.Frame{})
	assert.Len(t, v.c.Registry.Objects(), 2)

	v.FileWatch.savedAt = time.Now().Add(-2 * saveGrace)
	v.onPlanChanged(path)
	v.c.Tick(host.Frame{})
	assert.Len(t, v.c.Registry.Objects(), 1)
}

func TestWatchFilesFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "room.scad")
	lib := filepath.Join(dir, "lib.scad")
	require.NoError(t, os.WriteFile(lib, []byte("module wall() { cube(1); }\n"), 0o644))
	require.NoError(t, os.WriteFile(main, []byte("include <lib.scad>\nwall();\n"), 0o644))

	v := testViewer(t, filepath.Join(dir, "plan.json"), main)
	plan, model, err := v.watchFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "plan.json")}, plan)
	assert.ElementsMatch(t, []string{main, lib}, model)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "goroom", testViewer(t, "", "").title())
	assert.Equal(t, "goroom - plan.json - room.glb", testViewer(t, "/tmp/plan.json", "/tmp/room.glb").title())
}

func TestProjectAxesFront(t *testing.T) {
	axes := projectAxes(0, 0)
	require.Len(t, axes, 3)

	byAxis := make(map[int]screenAxis)
	for _, a := range axes {
		byAxis[a.axis] = a
	}
	assert.InDelta(t, 1, byAxis[0].dir.X, 1e-6)
	assert.InDelta(t, -1, byAxis[1].dir.Y, 1e-6)
	// +Z points at the viewer and is drawn last
	assert.InDelta(t, -1, byAxis[2].depth, 1e-6)
	assert.Equal(t, 2, axes[2].axis)
}
