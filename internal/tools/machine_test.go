package tools

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/input"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

type fakeResolver struct {
	poses map[host.SourceID]geometry.Pose
	rays  map[host.SourceID]geometry.Ray
}

func (f *fakeResolver) WorldPose(src host.InputSource, _ time.Time) (geometry.Pose, input.PoseOrigin) {
	return f.poses[src.ID], input.OriginHitTest
}

func (f *fakeResolver) Ray(src host.InputSource) geometry.Ray {
	return f.rays[src.ID]
}

type fakeHands struct {
	world *host.InputSource
}

func (f fakeHands) IsWorldHand(src host.InputSource) bool {
	return src.Handedness == host.HandRight
}

func (f fakeHands) WorldSource() (host.InputSource, bool) {
	if f.world == nil {
		return host.InputSource{}, false
	}
	return *f.world, true
}

var (
	t0    = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	right = host.InputSource{ID: "right", Handedness: host.HandRight, HasGamepad: true}
	left  = host.InputSource{ID: "left", Handedness: host.HandLeft, HasGamepad: true}
)

type fixture struct {
	machine  *Machine
	registry *scene.Registry
	resolver *fakeResolver
}

func newFixture() *fixture {
	cfg := config.Default()
	reg := scene.NewRegistry(cfg.Tools, nil)
	res := &fakeResolver{
		poses: map[host.SourceID]geometry.Pose{},
		rays:  map[host.SourceID]geometry.Ray{},
	}
	return &fixture{
		machine:  NewMachine(cfg, reg, res, fakeHands{world: &right}, nil),
		registry: reg,
		resolver: res,
	}
}

func (f *fixture) poseAt(src host.InputSource, x, y, z float64) {
	f.resolver.poses[src.ID] = geometry.NewPose(geometry.NewVector3(x, y, z), geometry.IdentityQuaternion())
}

func (f *fixture) rayFrom(src host.InputSource, origin, dir geometry.Vector3) {
	f.resolver.rays[src.ID] = geometry.NewRay(origin, dir)
}

func event(kind host.EventKind, src host.InputSource, at time.Time) host.Event {
	return host.Event{Kind: kind, Source: src, Time: at}
}

func (f *fixture) place(x, y, z float64) *scene.PlacedObject {
	t := geometry.IdentityTransform()
	t.Position = geometry.NewVector3(x, y, z)
	obj, err := f.registry.AddObject(scene.ShapeBox, 0xffffff, t)
	if err != nil {
		panic(err)
	}
	return obj
}

func TestModeRing(t *testing.T) {
	m := newFixture().machine
	var seen []string
	for i := 0; i < 7; i++ {
		seen = append(seen, m.Mode().String())
		m.CycleMode()
	}
	assert.Equal(t, []string{"select", "move", "rotate", "draw", "measure", "add", "select"}, seen)

	mode, err := ParseMode("Measure")
	require.NoError(t, err)
	assert.Equal(t, ModeMeasure, mode)
}

func TestLeftHandNeverMutatesWorld(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 1, -1)
	f.poseAt(left, 1, 1, 1)
	f.rayFrom(left, geometry.NewVector3(0, 1, 0), geometry.NewVector3(0, 0, -1))

	for _, mode := range []Mode{ModeSelect, ModeMove, ModeRotate, ModeDraw, ModeMeasure, ModeAdd} {
		f.machine.SetMode(mode)
		now := t0
		for i := 0; i < 3; i++ {
			assert.False(t, f.machine.Begin(event(host.EventSelectStart, left, now)), mode.String())
			f.machine.Tick(now)
			assert.False(t, f.machine.End(event(host.EventSelectEnd, left, now)), mode.String())
			assert.False(t, f.machine.Click(event(host.EventSelect, left, now)), mode.String())
			now = now.Add(time.Second)
		}
	}
	assert.Len(t, f.registry.Objects(), 1)
	assert.Empty(t, f.registry.Strokes())
	assert.Empty(t, f.registry.Measurements())
	assert.Equal(t, uuid.Nil, f.machine.Selected())
	assert.Equal(t, geometry.NewVector3(0, 1, -1), obj.Transform.Position)
	_, pending := f.machine.Pending()
	assert.False(t, pending)
}

func TestAddCircleAtPose(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeAdd)
	f.machine.CycleShape()
	require.Equal(t, scene.ShapeCircle, f.machine.Shape())
	require.Equal(t, uint32(0x3b82f6), f.machine.Color())

	f.poseAt(right, 0, 1, 2)
	require.True(t, f.machine.Click(event(host.EventSelect, right, t0)))

	objects := f.registry.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, scene.ShapeCircle, objects[0].Shape)
	assert.Equal(t, uint32(0x3b82f6), objects[0].Color)
	assert.Equal(t, geometry.NewVector3(0, 1, 2), objects[0].Transform.Position)
	assert.Equal(t, objects[0].ID, f.machine.Selected(), "a new object is selected")
	assert.Equal(t, ModeAdd, f.machine.Mode(), "add stays active for repeated stamping")
}

func TestMeasurementLifecycle(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeMeasure)

	f.poseAt(right, 0, 0, 0)
	require.True(t, f.machine.Click(event(host.EventSelect, right, t0)))

	f.poseAt(right, 3, 0, 4)
	f.machine.Tick(t0.Add(50 * time.Millisecond))
	preview, ok := f.machine.Preview()
	require.True(t, ok)
	assert.Equal(t, "5.00 m", preview.Label)

	require.True(t, f.machine.Click(event(host.EventSelect, right, t0.Add(300*time.Millisecond))))
	measures := f.registry.Measurements()
	require.Len(t, measures, 1)
	assert.InDelta(t, 5.0, measures[0].Distance(), 1e-12)
	assert.Equal(t, "5.00 m", measures[0].Label)
	_, ok = f.machine.Preview()
	assert.False(t, ok)
}

func TestMeasurementDebounceAndFloor(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeMeasure)

	f.poseAt(right, 0, 0, 0)
	f.machine.Click(event(host.EventSelect, right, t0))

	f.poseAt(right, 1, 0, 0)
	assert.False(t, f.machine.Click(event(host.EventSelect, right, t0.Add(100*time.Millisecond))), "inside debounce")

	f.poseAt(right, 0.005, 0, 0)
	assert.False(t, f.machine.Click(event(host.EventSelect, right, t0.Add(time.Second))), "below the distance floor")
	assert.Empty(t, f.registry.Measurements())

	a, ok := f.machine.Pending()
	require.True(t, ok, "the first endpoint stays pending")
	assert.Equal(t, geometry.Vector3{}, a)
}

func TestMeasurementAbandoned(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeMeasure)
	f.poseAt(right, 0, 0, 0)
	f.machine.Click(event(host.EventSelect, right, t0))

	f.machine.Tick(t0.Add(7 * time.Second))
	_, ok := f.machine.Pending()
	assert.True(t, ok)

	f.machine.Tick(t0.Add(9 * time.Second))
	_, ok = f.machine.Pending()
	assert.False(t, ok)
}

func TestLateSecondClickStartsOver(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeMeasure)
	f.poseAt(right, 0, 0, 0)
	require.True(t, f.machine.Click(event(host.EventSelect, right, t0)))
	f.machine.Tick(t0.Add(time.Second))

	// No Tick between the clicks, so only the click sees the timeout
	f.poseAt(right, 3, 0, 4)
	require.True(t, f.machine.Click(event(host.EventSelect, right, t0.Add(9*time.Second))))
	assert.Empty(t, f.registry.Measurements())

	a, ok := f.machine.Pending()
	require.True(t, ok)
	assert.Equal(t, geometry.NewVector3(3, 0, 4), a)
}

func TestDrawDecimation(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeDraw)
	f.poseAt(right, 0, 1, 0)
	require.True(t, f.machine.Begin(event(host.EventSelectStart, right, t0)))
	stroke := f.machine.ActiveStroke()
	require.NotNil(t, stroke)

	now := t0
	for _, x := range []float64{0.002, 0.004, 0.006, 0.05, 0.052, 0.1} {
		now = now.Add(16 * time.Millisecond)
		f.poseAt(right, x, 1, 0)
		f.machine.Tick(now)
	}
	assert.Equal(t, 3, stroke.Len())

	require.True(t, f.machine.End(event(host.EventSelectEnd, right, now)))
	assert.Nil(t, f.machine.ActiveStroke())
	require.Len(t, f.registry.Strokes(), 1)
	assert.Equal(t, 3, f.registry.Strokes()[0].Len())
}

func TestModeSwitchClearsPayload(t *testing.T) {
	f := newFixture()
	f.machine.SetMode(ModeDraw)
	f.poseAt(right, 0, 0, 0)
	f.machine.Begin(event(host.EventSelectStart, right, t0))
	require.True(t, f.machine.Busy())

	f.machine.SetMode(ModeMeasure)
	assert.False(t, f.machine.Busy())
	assert.Nil(t, f.machine.ActiveStroke())

	f.machine.Click(event(host.EventSelect, right, t0))
	f.machine.CycleMode()
	_, ok := f.machine.Pending()
	assert.False(t, ok)
}

func TestSelectExactAndFallback(t *testing.T) {
	f := newFixture()
	near := f.place(0, 1, -1)
	side := f.place(0.5, 1, -1)

	f.rayFrom(right, geometry.NewVector3(0, 1, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Begin(event(host.EventSelectStart, right, t0))
	assert.Equal(t, near.ID, f.machine.Selected())

	// misses the 12 cm box but passes 10 cm from its centre
	f.rayFrom(right, geometry.NewVector3(0.6, 1, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Begin(event(host.EventSelectStart, right, t0))
	assert.Equal(t, side.ID, f.machine.Selected())

	f.rayFrom(right, geometry.NewVector3(3, 1, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Begin(event(host.EventSelectStart, right, t0))
	assert.Equal(t, uuid.Nil, f.machine.Selected(), "a miss clears the selection")
}

func TestHoverFollowsWorldRay(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 1, -1)
	f.rayFrom(right, geometry.NewVector3(0, 1, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Tick(t0)
	assert.Equal(t, obj.ID, f.machine.Hovered())

	f.machine.SetMode(ModeDraw)
	f.machine.Tick(t0)
	assert.Equal(t, uuid.Nil, f.machine.Hovered())
}

func TestMoveFollowsPose(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 1, -1)
	f.machine.Select(obj.ID)
	f.machine.SetMode(ModeMove)

	f.poseAt(right, 0, 1, -1)
	require.True(t, f.machine.Begin(event(host.EventSelectStart, right, t0)))
	f.poseAt(right, 0.4, 0.9, -1.2)
	f.machine.Tick(t0.Add(16 * time.Millisecond))
	assert.Equal(t, geometry.NewVector3(0.4, 0.9, -1.2), obj.Transform.Position)
	assert.Equal(t, geometry.IdentityQuaternion(), obj.Transform.Orientation)

	f.machine.End(event(host.EventSelectEnd, right, t0))
	f.poseAt(right, 2, 2, 2)
	f.machine.Tick(t0.Add(32 * time.Millisecond))
	assert.Equal(t, geometry.NewVector3(0.4, 0.9, -1.2), obj.Transform.Position)
}

func TestRotateAboutLocalY(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 0, -1)
	f.machine.Select(obj.ID)
	f.machine.SetMode(ModeRotate)

	f.rayFrom(right, geometry.NewVector3(1, 0, -1), geometry.NewVector3(0, 0, -1))
	require.True(t, f.machine.Begin(event(host.EventSelectStart, right, t0)))
	f.rayFrom(right, geometry.NewVector3(0, 0, -2), geometry.NewVector3(0, 0, -1))
	f.machine.Tick(t0.Add(16 * time.Millisecond))

	got := obj.Transform.Orientation.Rotate(geometry.NewVector3(1, 0, 0))
	assert.True(t, got.ApproxEqual(geometry.NewVector3(0, 0, -1), 1e-9), "got %v", got)
}

func TestGizmoTranslateAndScale(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 1, -1)
	f.machine.Select(obj.ID)
	require.Len(t, f.machine.Gizmo(), 10)

	// aim at the x arrow tip 0.25 m right of the centre
	f.rayFrom(right, geometry.NewVector3(0.25, 1, 0), geometry.NewVector3(0, 0, -1))
	require.True(t, f.machine.Begin(event(host.EventSelectStart, right, t0)))
	f.rayFrom(right, geometry.NewVector3(0.35, 1.2, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Tick(t0.Add(16 * time.Millisecond))
	assert.InDelta(t, 0.1, obj.Transform.Position.X, 1e-9)
	assert.InDelta(t, 1.0, obj.Transform.Position.Y, 1e-9, "movement off the axis is ignored")
	f.machine.End(event(host.EventSelectEnd, right, t0))
	assert.Equal(t, obj.ID, f.machine.Selected())

	// scale buttons clamp to the configured range
	for i := 0; i < 40; i++ {
		f.machine.ScaleUp()
	}
	assert.InDelta(t, 10, obj.Transform.Scale.X, 1e-9)
	for i := 0; i < 80; i++ {
		f.machine.ScaleDown()
	}
	assert.InDelta(t, 0.1, obj.Transform.Scale.Y, 1e-9)
}

func TestGizmoRotateRing(t *testing.T) {
	g := grab{
		handle:    Handle{Kind: HandleRotate, Axis: 1, Center: geometry.Vector3{}, Dir: geometry.NewVector3(0, 1, 0), Radius: 0.2},
		start:     geometry.NewVector3(0.2, 0, 0),
		transform: geometry.IdentityTransform(),
	}
	out := g.drag(geometry.NewVector3(0, 0, -0.2), 0.25, 0.1, 10)
	assert.InDelta(t, math.Pi/2, out.Orientation.Yaw(), 1e-9)
}

func TestDeleteClearsWeakReferences(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 1, -1)
	f.machine.Select(obj.ID)
	f.rayFrom(right, geometry.NewVector3(0, 1, 0), geometry.NewVector3(0, 0, -1))
	f.machine.Tick(t0)
	require.Equal(t, obj.ID, f.machine.Hovered())

	require.True(t, f.machine.DeleteSelected())
	assert.Equal(t, uuid.Nil, f.machine.Selected())
	assert.Equal(t, uuid.Nil, f.machine.Hovered())
	assert.Empty(t, f.machine.Gizmo())
	assert.False(t, f.machine.DeleteSelected())
}

func TestCycleColorRecoloursSelection(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 0, 0)
	f.machine.Select(obj.ID)
	f.machine.CycleColor()
	assert.Equal(t, uint32(0x22c55e), f.machine.Color())
	assert.Equal(t, uint32(0x22c55e), obj.Color)
}

func TestResetKeepsLiveSelection(t *testing.T) {
	f := newFixture()
	obj := f.place(0, 0, 0)
	f.machine.Select(obj.ID)
	f.machine.SetMode(ModeMeasure)
	f.poseAt(right, 0, 0, 0)
	f.machine.Click(event(host.EventSelect, right, t0))

	f.machine.Reset()
	assert.Equal(t, obj.ID, f.machine.Selected())
	_, ok := f.machine.Pending()
	assert.False(t, ok)

	f.registry.ClearObjects()
	f.machine.Reset()
	assert.Equal(t, uuid.Nil, f.machine.Selected())
}
