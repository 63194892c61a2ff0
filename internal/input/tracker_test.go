package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

type fakeHitSource struct {
	opts host.HitTestOptions
}

func (f fakeHitSource) Options() host.HitTestOptions { return f.opts }
func (f fakeHitSource) Cancel() error                { return nil }

type fakeSurface struct {
	mesh    geometry.Mesh
	enabled bool
}

func (f fakeSurface) InteractionEnabled() bool { return f.enabled }
func (f fakeSurface) Raycast(r geometry.Ray) (geometry.MeshHit, bool) {
	return f.mesh.Raycast(r)
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(x, y, z float64) geometry.Pose {
	return geometry.NewPose(geometry.NewVector3(x, y, z), geometry.IdentityQuaternion())
}

func transient(profile string) host.HitTestSource {
	return fakeHitSource{opts: host.HitTestOptions{Transient: true, Profile: profile}}
}

func viewer() host.HitTestSource {
	return fakeHitSource{opts: host.HitTestOptions{}}
}

func TestTrackerPriority(t *testing.T) {
	tests := []struct {
		name    string
		sources []host.InputSource
		want    geometry.Vector3
	}{
		{
			name: "gamepad right beats everything",
			sources: []host.InputSource{
				{ID: "hand", HasHand: true, Handedness: host.HandRight},
				{ID: "padL", HasGamepad: true, Handedness: host.HandLeft},
				{ID: "padR", HasGamepad: true, Handedness: host.HandRight},
			},
			want: geometry.NewVector3(3, 0, 0),
		},
		{
			name: "any gamepad beats hands",
			sources: []host.InputSource{
				{ID: "hand", HasHand: true, Handedness: host.HandRight},
				{ID: "padL", HasGamepad: true, Handedness: host.HandLeft},
			},
			want: geometry.NewVector3(2, 0, 0),
		},
		{
			name: "right hand beats left hand",
			sources: []host.InputSource{
				{ID: "handL", HasHand: true, Handedness: host.HandLeft},
				{ID: "hand", HasHand: true, Handedness: host.HandRight},
			},
			want: geometry.NewVector3(1, 0, 0),
		},
		{
			name: "any hand",
			sources: []host.InputSource{
				{ID: "handL", HasHand: true, Handedness: host.HandLeft},
			},
			want: geometry.NewVector3(4, 0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(config.Default().Input)
			frame := host.Frame{
				Time:    t0,
				Sources: tt.sources,
				TransientHits: map[string][]host.TransientHit{
					"generic-trigger": {
						{Source: "hand", Results: []geometry.Pose{at(1, 0, 0)}},
						{Source: "padL", Results: []geometry.Pose{at(2, 0, 0)}},
						{Source: "padR", Results: []geometry.Pose{at(3, 0, 0)}},
						{Source: "handL", Results: []geometry.Pose{at(4, 0, 0)}},
					},
				},
				ViewerHits: []geometry.Pose{at(9, 9, 9)},
			}
			tr.Update(frame, []host.HitTestSource{transient("generic-trigger"), viewer()})
			reticle, ok := tr.Reticle(t0)
			require.True(t, ok)
			assert.Equal(t, tt.want, reticle.Position)
		})
	}
}

func TestTrackerViewerFallback(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	frame := host.Frame{Time: t0, ViewerHits: []geometry.Pose{at(0, 0, -1)}}

	tr.Update(frame, []host.HitTestSource{transient("generic-trigger")})
	_, ok := tr.Reticle(t0)
	assert.False(t, ok, "viewer hits are ignored without a viewer source")

	tr.Update(frame, []host.HitTestSource{viewer()})
	reticle, ok := tr.Reticle(t0)
	require.True(t, ok)
	assert.Equal(t, geometry.NewVector3(0, 0, -1), reticle.Position)
}

func TestTrackerFirstValidResultAcrossProfiles(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	src := host.InputSource{ID: "pad", HasGamepad: true, Handedness: host.HandRight}
	bad := at(0, 0, 0)
	bad.Orientation = geometry.Quaternion{}
	frame := host.Frame{
		Time:    t0,
		Sources: []host.InputSource{src},
		TransientHits: map[string][]host.TransientHit{
			"generic-trigger": {{Source: "pad", Results: []geometry.Pose{bad, at(1, 1, 1)}}},
			"oculus-touch-v3": {{Source: "pad", Results: []geometry.Pose{at(5, 5, 5)}}},
		},
	}
	tr.Update(frame, []host.HitTestSource{transient("generic-trigger"), transient("oculus-touch-v3")})
	p, ok := tr.HitPose("pad")
	require.True(t, ok)
	assert.Equal(t, geometry.NewVector3(1, 1, 1), p.Position)
}

func TestTrackerHitCacheClearedEachFrame(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	src := host.InputSource{ID: "pad", HasGamepad: true, Handedness: host.HandRight}
	tr.Update(host.Frame{
		Time:          t0,
		Sources:       []host.InputSource{src},
		TransientHits: map[string][]host.TransientHit{"generic-trigger": {{Source: "pad", Results: []geometry.Pose{at(1, 0, 0)}}}},
	}, []host.HitTestSource{transient("generic-trigger")})
	_, ok := tr.HitPose("pad")
	require.True(t, ok)

	tr.Update(host.Frame{Time: t0.Add(10 * time.Millisecond), Sources: []host.InputSource{src}},
		[]host.HitTestSource{transient("generic-trigger")})
	_, ok = tr.HitPose("pad")
	assert.False(t, ok)
	_, ok = tr.Reticle(t0.Add(10 * time.Millisecond))
	assert.True(t, ok, "the reticle outlives the per-frame cache")
}

func TestWorldPoseRules(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	src := host.InputSource{ID: "pad", HasGamepad: true, Handedness: host.HandRight, TargetRay: at(0, 1, 0)}

	// rule 4: nothing known, 0.8 m along -Z
	pose, origin := tr.WorldPose(src, t0)
	assert.Equal(t, OriginRay, origin)
	assert.True(t, pose.Position.ApproxEqual(geometry.NewVector3(0, 1, -0.8), 1e-9))

	// rule 2 and the reticle it produces
	tr.Update(host.Frame{
		Time:          t0,
		Sources:       []host.InputSource{src},
		TransientHits: map[string][]host.TransientHit{"generic-trigger": {{Source: "pad", Results: []geometry.Pose{at(0, 0, -2)}}}},
	}, []host.HitTestSource{transient("generic-trigger")})
	pose, origin = tr.WorldPose(src, t0)
	assert.Equal(t, OriginHitTest, origin)
	assert.Equal(t, geometry.NewVector3(0, 0, -2), pose.Position)

	// rule 3: another source falls back to the fresh reticle
	other := host.InputSource{ID: "other", TargetRay: at(0, 1, 0)}
	pose, origin = tr.WorldPose(other, t0.Add(200*time.Millisecond))
	assert.Equal(t, OriginReticle, origin)
	assert.Equal(t, geometry.NewVector3(0, 0, -2), pose.Position)

	// stale reticle is ignored
	_, origin = tr.WorldPose(other, t0.Add(300*time.Millisecond))
	assert.Equal(t, OriginRay, origin)
}

func TestWorldPoseSurfaceWins(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	wall := geometry.Box(2, 2, 0.1).Transformed(geometry.Transform{
		Position:    geometry.NewVector3(0, 1, -3),
		Orientation: geometry.IdentityQuaternion(),
		Scale:       geometry.NewVector3(1, 1, 1),
	})
	tr.SetSurface(fakeSurface{mesh: wall, enabled: true})
	src := host.InputSource{ID: "pad", HasGamepad: true, Handedness: host.HandRight, TargetRay: at(0.3, 1.2, 0)}
	tr.Update(host.Frame{
		Time:          t0,
		Sources:       []host.InputSource{src},
		TransientHits: map[string][]host.TransientHit{"generic-trigger": {{Source: "pad", Results: []geometry.Pose{at(0, 0, -2)}}}},
	}, []host.HitTestSource{transient("generic-trigger")})

	pose, origin := tr.WorldPose(src, t0)
	require.Equal(t, OriginSurface, origin)
	assert.InDelta(t, -2.95, pose.Position.Z, 1e-9)
	assert.True(t, pose.Up().ApproxEqual(geometry.NewVector3(0, 0, 1), 1e-9), "up faces back along the ray")

	tr.SetSurface(fakeSurface{mesh: wall, enabled: false})
	_, origin = tr.WorldPose(src, t0)
	assert.Equal(t, OriginHitTest, origin)
}

func TestTrackerJointsAndReset(t *testing.T) {
	tr := NewTracker(config.Default().Input)
	wrist := at(0.1, 1, 0)
	hand := host.InputSource{ID: "h", HasHand: true, Handedness: host.HandLeft, Wrist: &wrist}
	tr.Update(host.Frame{Time: t0, Sources: []host.InputSource{hand}}, nil)

	j, ok := tr.Joints(host.HandLeft)
	require.True(t, ok)
	require.NotNil(t, j.Wrist)
	assert.Equal(t, wrist.Position, j.Wrist.Position)

	tr.Reset()
	_, ok = tr.Joints(host.HandLeft)
	assert.False(t, ok)
}
