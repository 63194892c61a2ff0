package scan

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

func square(id string, pose geometry.Pose) host.DetectedPlane {
	return host.DetectedPlane{
		ID:   id,
		Pose: pose,
		Polygon: []geometry.Vector3{
			{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1},
		},
	}
}

func floorAt(y float64) geometry.Pose {
	return geometry.NewPose(geometry.NewVector3(0, y, 0), geometry.IdentityQuaternion())
}

func planeFrame(planes ...host.DetectedPlane) host.Frame {
	return host.Frame{Planes: planes, PlanesSupported: true}
}

func newIngestor() *Ingestor {
	in := NewIngestor(config.Default().Scan, nil)
	in.SetShowPlanes(true)
	in.SetShowMeshes(true)
	return in
}

func TestClassify(t *testing.T) {
	tests := []struct {
		normal geometry.Vector3
		want   Class
	}{
		{geometry.NewVector3(0, 0.98, 0.1), ClassFloor},
		{geometry.NewVector3(0, -0.95, 0), ClassCeiling},
		{geometry.NewVector3(1, 0, 0), ClassWall},
		{geometry.NewVector3(0, 0.7, 0.7), ClassWall},
	}
	for _, tt := range tests {
		if got := Classify(tt.normal, 0.75); got != tt.want {
			t.Errorf("Classify(%v) failed: expected %v, got %v", tt.normal, tt.want, got)
		}
	}
}

func TestPlaneNormalFollowsPose(t *testing.T) {
	wall := geometry.NewPose(geometry.Vector3{}, geometry.QuaternionFromAxisAngle(geometry.NewVector3(0, 0, 1), -math.Pi/2))
	assert.Equal(t, ClassWall, Classify(PlaneNormal(wall), 0.75))
	assert.True(t, PlaneNormal(wall).ApproxEqual(geometry.NewVector3(1, 0, 0), 1e-9))
}

func TestPruneOnDisappearance(t *testing.T) {
	in := newIngestor()

	in.Update(planeFrame(square("a", floorAt(0)), square("b", floorAt(2.5))))
	require.Len(t, in.Planes(), 2)

	// frame K-1: b still reported
	in.Update(planeFrame(square("a", floorAt(0)), square("b", floorAt(2.5))))
	_, ok := in.Plane("b")
	assert.True(t, ok)

	// frame K: b gone
	in.Update(planeFrame(square("a", floorAt(0))))
	_, ok = in.Plane("b")
	assert.False(t, ok)
	a, ok := in.Plane("a")
	require.True(t, ok)
	assert.Equal(t, "a", a.ID)
	assert.Len(t, in.Planes(), 1)
}

func TestRefreshKeepsIdentity(t *testing.T) {
	in := newIngestor()
	in.Update(planeFrame(square("a", floorAt(0))))
	first, _ := in.Plane("a")

	in.Update(planeFrame(square("a", floorAt(0.1))))
	second, _ := in.Plane("a")
	assert.Same(t, first, second)
	assert.InDelta(t, 0.1, second.Outline()[0].Y, 1e-12)
	assert.Len(t, second.Outline(), 5, "outline is closed")
}

func TestFrozenAndDisabled(t *testing.T) {
	in := newIngestor()
	in.Update(planeFrame(square("a", floorAt(0))))

	in.SetFrozen(true)
	in.Update(planeFrame())
	assert.Len(t, in.Planes(), 1, "frozen keeps visuals")

	in.SetFrozen(false)
	in.Update(planeFrame())
	assert.Empty(t, in.Planes())

	in.Update(planeFrame(square("a", floorAt(0))))
	in.SetShowPlanes(false)
	assert.Empty(t, in.Planes(), "switching off drops visuals")
	in.Update(planeFrame(square("a", floorAt(0))))
	assert.Empty(t, in.Planes())
}

func TestMalformedEntryDoesNotStopOthers(t *testing.T) {
	in := newIngestor()
	bad := square("bad", floorAt(0))
	bad.Pose.Position.X = math.NaN()
	short := host.DetectedPlane{ID: "short", Pose: floorAt(0), Polygon: []geometry.Vector3{{}, {X: 1}}}

	failed := in.Update(planeFrame(bad, short, square("good", floorAt(0))))
	assert.Equal(t, 2, failed)
	_, ok := in.Plane("good")
	assert.True(t, ok)
	assert.Len(t, in.Planes(), 1)
}

func TestPlaneCap(t *testing.T) {
	in := newIngestor()
	var planes []host.DetectedPlane
	for i := 0; i < 40; i++ {
		planes = append(planes, square(fmt.Sprintf("p%02d", i), floorAt(float64(i))))
	}
	in.Update(planeFrame(planes...))
	assert.Len(t, in.Planes(), 30)
}

func TestMeshes(t *testing.T) {
	in := newIngestor()
	tri := host.DetectedMesh{
		ID:       "m",
		Pose:     floorAt(1),
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	broken := host.DetectedMesh{ID: "x", Pose: floorAt(0), Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 1, 2}}

	failed := in.Update(host.Frame{Meshes: []host.DetectedMesh{tri, broken}, MeshesSupported: true})
	assert.Equal(t, 1, failed)
	require.Len(t, in.Meshes(), 1)

	in.SetWireframe(true)
	m, _ := in.Mesh("m")
	assert.True(t, m.Wireframe)
	assert.Equal(t, 1.0, m.WorldMesh().Positions[0].Y)

	in.Update(host.Frame{MeshesSupported: false})
	assert.Len(t, in.Meshes(), 1, "an unsupported frame is not an empty report")

	in.Reset()
	assert.Empty(t, in.Meshes())
}

func TestAssociationSwapRemove(t *testing.T) {
	a := newAssociation[PlaneVisual]()
	for _, id := range []string{"a", "b", "c"} {
		a.insert(id, &PlaneVisual{ID: id})
	}
	require.True(t, a.remove("a"))
	for i, v := range a.visuals {
		assert.Equal(t, i, a.byID[v.ID])
		assert.Equal(t, v.ID, a.ids[i])
	}
	assert.False(t, a.remove("a"))
	assert.Equal(t, 2, a.len())
}
