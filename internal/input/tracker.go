// Package input resolves raw tracking data into actionable world poses and
// decides which physical hand may drive the menu or the world.
package input

import (
	"time"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// PoseOrigin tells which resolution rule produced a world pose
type PoseOrigin int

const (
	OriginSurface PoseOrigin = iota
	OriginHitTest
	OriginReticle
	OriginRay
)

// String names the origin for logs
func (o PoseOrigin) String() string {
	switch o {
	case OriginSurface:
		return "surface"
	case OriginHitTest:
		return "hit-test"
	case OriginReticle:
		return "reticle"
	default:
		return "ray"
	}
}

// Surface is a virtual model the user can place things on
type Surface interface {
	InteractionEnabled() bool
	Raycast(r geometry.Ray) (geometry.MeshHit, bool)
}

// Joints are the tracked hand joints used for menu placement
type Joints struct {
	Wrist    *geometry.Pose
	IndexTip *geometry.Pose
}

// Tracker caches per-frame input state: hit poses by source, the reticle,
// hand joints and the current input sources.
type Tracker struct {
	cfg     config.InputConfig
	Roles   *Roles
	surface Surface

	hitPoseBySource map[host.SourceID]geometry.Pose
	sources         map[host.SourceID]host.InputSource
	joints          map[host.Handedness]Joints

	reticle     geometry.Pose
	reticleAt   time.Time
	hasReticle  bool
	reticleFrom host.SourceID
}

// NewTracker creates an empty tracker
func NewTracker(cfg config.InputConfig) *Tracker {
	return &Tracker{
		cfg:             cfg,
		Roles:           NewRoles(),
		hitPoseBySource: make(map[host.SourceID]geometry.Pose),
		sources:         make(map[host.SourceID]host.InputSource),
		joints:          make(map[host.Handedness]Joints),
	}
}

// SetSurface installs (or with nil removes) the virtual placement surface
func (t *Tracker) SetSurface(s Surface) {
	t.surface = s
}

// Reset drops every cached pose and unbinds all slots
func (t *Tracker) Reset() {
	clear(t.hitPoseBySource)
	clear(t.sources)
	clear(t.joints)
	t.hasReticle = false
	t.reticleFrom = ""
	t.Roles.Reset()
}

// Update refreshes the cache from a frame. Transient hit-test results are
// gathered for every active profile; viewer results are used only when no
// transient result was chosen.
func (t *Tracker) Update(frame host.Frame, hitSources []host.HitTestSource) {
	clear(t.hitPoseBySource)
	clear(t.sources)
	for _, s := range frame.Sources {
		t.sources[s.ID] = s
	}
	t.Roles.Refresh(frame.Sources)
	t.updateJoints(frame.Sources)

	viewerActive := false
	for _, hs := range hitSources {
		opts := hs.Options()
		if !opts.Transient {
			viewerActive = true
			continue
		}
		for _, th := range frame.TransientHits[opts.Profile] {
			if _, seen := t.hitPoseBySource[th.Source]; seen {
				continue
			}
			for _, p := range th.Results {
				if p.IsValid() {
					t.hitPoseBySource[th.Source] = p
					break
				}
			}
		}
	}

	if chosen, src, ok := t.pickTransient(frame.Sources); ok {
		t.setReticle(chosen, src, frame.Time)
		return
	}
	if viewerActive {
		for _, p := range frame.ViewerHits {
			if p.IsValid() {
				t.setReticle(p, "", frame.Time)
				return
			}
		}
	}
}

// pickTransient applies the source priority: gamepad+right, gamepad,
// hand+right, hand. Sources are scanned in the order the runtime reports them.
func (t *Tracker) pickTransient(sources []host.InputSource) (geometry.Pose, host.SourceID, bool) {
	predicates := []func(s host.InputSource) bool{
		func(s host.InputSource) bool { return s.HasGamepad && s.Handedness == host.HandRight },
		func(s host.InputSource) bool { return s.HasGamepad },
		func(s host.InputSource) bool { return s.HasHand && s.Handedness == host.HandRight },
		func(s host.InputSource) bool { return s.HasHand },
	}
	for _, match := range predicates {
		for _, s := range sources {
			p, ok := t.hitPoseBySource[s.ID]
			if ok && match(s) {
				return p, s.ID, true
			}
		}
	}
	return geometry.Pose{}, "", false
}

func (t *Tracker) setReticle(p geometry.Pose, src host.SourceID, at time.Time) {
	t.reticle = p
	t.reticleAt = at
	t.reticleFrom = src
	t.hasReticle = true
}

func (t *Tracker) updateJoints(sources []host.InputSource) {
	for _, s := range sources {
		if !s.HasHand {
			continue
		}
		hand := t.Roles.Handedness(s)
		if hand == host.HandNone {
			continue
		}
		t.joints[hand] = Joints{Wrist: s.Wrist, IndexTip: s.IndexTip}
	}
}

// Joints returns the last tracked joints of a hand
func (t *Tracker) Joints(hand host.Handedness) (Joints, bool) {
	j, ok := t.joints[hand]
	return j, ok
}

// Reticle returns the reticle pose if it is younger than the freshness window
func (t *Tracker) Reticle(now time.Time) (geometry.Pose, bool) {
	if !t.hasReticle {
		return geometry.Pose{}, false
	}
	if now.Sub(t.reticleAt) > t.cfg.ReticleFreshness.Duration {
		return geometry.Pose{}, false
	}
	return t.reticle, true
}

// HitPose returns this frame's cached hit-test pose for a source
func (t *Tracker) HitPose(id host.SourceID) (geometry.Pose, bool) {
	p, ok := t.hitPoseBySource[id]
	return p, ok
}

// Source returns the latest state of a source, falling back to the given copy
func (t *Tracker) Source(src host.InputSource) host.InputSource {
	if latest, ok := t.sources[src.ID]; ok {
		return latest
	}
	return src
}

// Ray returns the world ray of a source's target-ray pose (-Z forward)
func (t *Tracker) Ray(src host.InputSource) geometry.Ray {
	return t.Source(src).TargetRay.Ray()
}

// WorldPose resolves where an action of src should happen:
// virtual surface hit, then the source's hit-test pose, then a fresh
// reticle, then a point along the controller ray.
func (t *Tracker) WorldPose(src host.InputSource, now time.Time) (geometry.Pose, PoseOrigin) {
	ray := t.Ray(src)

	if t.surface != nil && t.surface.InteractionEnabled() && ray.IsValid() {
		if hit, ok := t.surface.Raycast(ray); ok {
			return surfacePose(hit, ray, t.Source(src).TargetRay), OriginSurface
		}
	}
	if p, ok := t.hitPoseBySource[src.ID]; ok {
		return p, OriginHitTest
	}
	if p, ok := t.Reticle(now); ok {
		return p, OriginReticle
	}
	return geometry.NewPose(ray.At(t.cfg.FallbackRayDistance), t.Source(src).TargetRay.Orientation), OriginRay
}

// surfacePose puts +Y on the hit normal (facing the ray) and -Z along the
// controller's forward projected onto the hit plane
func surfacePose(hit geometry.MeshHit, ray geometry.Ray, controller geometry.Pose) geometry.Pose {
	up := hit.Normal.Normalize()
	if up.Dot(ray.Direction) > 0 {
		up = up.Neg()
	}
	if up == (geometry.Vector3{}) {
		up = ray.Direction.Neg()
	}
	forward := controller.Forward().ProjectOnPlane(up)
	if forward.Length() < 1e-4 {
		forward = up.AnyPerpendicular()
	}
	return geometry.NewPose(hit.Point, geometry.QuaternionFromUpForward(up, forward))
}
