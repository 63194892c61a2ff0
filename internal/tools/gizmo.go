package tools

import (
	"math"

	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// HandleKind is what dragging a gizmo handle does
type HandleKind int

const (
	HandleTranslate HandleKind = iota
	HandleScale
	HandleRotate
	HandleUniformScale
)

// String names the handle kind
func (k HandleKind) String() string {
	switch k {
	case HandleTranslate:
		return "translate"
	case HandleScale:
		return "scale"
	case HandleRotate:
		return "rotate"
	default:
		return "uniform"
	}
}

// Handle is one pickable part of the gizmo around the selection
type Handle struct {
	Kind   HandleKind
	Axis   int // 0, 1, 2 for x, y, z; -1 for the uniform handle
	Center geometry.Vector3
	Dir    geometry.Vector3 // world axis of the handle
	Radius float64          // ring radius for rotate handles
}

var localAxes = [3]geometry.Vector3{{X: 1}, {Y: 1}, {Z: 1}}

// Handles lays out the gizmo of an object: arrow tips, scale cubes, rotate
// rings and a uniform scale cube at the centre
func Handles(obj *scene.PlacedObject, size float64) []Handle {
	pos := obj.Transform.Position
	handles := make([]Handle, 0, 10)
	for axis, local := range localAxes {
		dir := obj.Transform.Orientation.Rotate(local).Normalize()
		handles = append(handles,
			Handle{Kind: HandleTranslate, Axis: axis, Center: pos.Add(dir.Mul(size)), Dir: dir},
			Handle{Kind: HandleScale, Axis: axis, Center: pos.Add(dir.Mul(size * 0.7)), Dir: dir},
			Handle{Kind: HandleRotate, Axis: axis, Center: pos, Dir: dir, Radius: size * 0.8},
		)
	}
	handles = append(handles, Handle{Kind: HandleUniformScale, Axis: -1, Center: pos, Dir: geometry.Vector3{Y: 1}})
	return handles
}

// pickHandle returns the handle nearest along the ray within the pick radius
func pickHandle(handles []Handle, ray geometry.Ray, pickRadius float64) (Handle, bool) {
	best, bestT := Handle{}, math.Inf(1)
	for _, h := range handles {
		var t float64
		switch h.Kind {
		case HandleRotate:
			d, ok := ray.IntersectPlane(h.Center, h.Dir)
			if !ok {
				continue
			}
			off := ray.At(d).Distance(h.Center)
			if math.Abs(off-h.Radius) > pickRadius {
				continue
			}
			t = d
		default:
			dist, d, ok := ray.DistanceToPoint(h.Center)
			if !ok || dist > pickRadius {
				continue
			}
			t = d
		}
		if t < bestT {
			best, bestT = h, t
		}
	}
	return best, !math.IsInf(bestT, 1)
}

// grab is the context latched when a handle is picked
type grab struct {
	handle    Handle
	start     geometry.Vector3 // controller position at grab time
	transform geometry.Transform
}

// drag applies the controller displacement to the grabbed object
func (g grab) drag(controller geometry.Vector3, size, scaleMin, scaleMax float64) geometry.Transform {
	t := g.transform
	delta := controller.Sub(g.start)
	along := delta.Dot(g.handle.Dir)

	switch g.handle.Kind {
	case HandleTranslate:
		t.Position = g.transform.Position.Add(g.handle.Dir.Mul(along))
	case HandleScale:
		factor := 1 + along/size
		s := g.transform.Scale.ToArray()
		s[g.handle.Axis] = geometry.Clamp(s[g.handle.Axis]*factor, scaleMin, scaleMax)
		t.Scale = geometry.Vector3FromArray(s)
	case HandleUniformScale:
		t.Scale = clampScale(g.transform.Scale.Mul(1+along/size), scaleMin, scaleMax)
	case HandleRotate:
		from := g.start.Sub(g.transform.Position)
		to := controller.Sub(g.transform.Position)
		if from.ProjectOnPlane(g.handle.Dir).Length() < 1e-6 || to.ProjectOnPlane(g.handle.Dir).Length() < 1e-6 {
			return t
		}
		angle := geometry.SignedAngle(from, to, g.handle.Dir)
		t.Orientation = geometry.QuaternionFromAxisAngle(g.handle.Dir, angle).Mul(g.transform.Orientation).Normalize()
	}
	return t
}

func clampScale(s geometry.Vector3, lo, hi float64) geometry.Vector3 {
	return geometry.Vector3{
		X: geometry.Clamp(s.X, lo, hi),
		Y: geometry.Clamp(s.Y, lo, hi),
		Z: geometry.Clamp(s.Z, lo, hi),
	}
}
