package tools

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/input"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// Resolver turns an input source into a world pose and a pointing ray
type Resolver interface {
	WorldPose(src host.InputSource, now time.Time) (geometry.Pose, input.PoseOrigin)
	Ray(src host.InputSource) geometry.Ray
}

// HandPolicy decides whether a source may mutate the world
type HandPolicy interface {
	IsWorldHand(src host.InputSource) bool
	WorldSource() (host.InputSource, bool)
}

// Preview is the live segment shown between the first measure click and the second
type Preview struct {
	A, B  geometry.Vector3
	Label string
}

type rotateLatch struct {
	pivot       geometry.Vector3
	axis        geometry.Vector3
	controller  geometry.Vector3
	orientation geometry.Quaternion
}

type pendingMeasure struct {
	a      geometry.Vector3
	at     time.Time
	source host.InputSource
}

// Machine holds the tool state: mode, shape, colour, the selection and hover
// references, and whatever the current interaction has in progress.
type Machine struct {
	cfg          config.ToolConfig
	selectRadius float64
	registry     *scene.Registry
	resolver     Resolver
	hands        HandPolicy
	logger       *slog.Logger

	mode       Mode
	shape      scene.Shape
	colorIndex int
	selected   uuid.UUID
	hovered    uuid.UUID

	// in-progress payload
	active  *host.InputSource
	moving  bool
	rotate  *rotateLatch
	stroke  *scene.Stroke
	grab    *grab
	pending *pendingMeasure
	preview *Preview
}

// NewMachine creates a machine in select mode and registers it for removal notices
func NewMachine(cfg config.Config, registry *scene.Registry, resolver Resolver, hands HandPolicy, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Machine{
		cfg:          cfg.Tools,
		selectRadius: cfg.Input.SelectFallbackRadius,
		registry:     registry,
		resolver:     resolver,
		hands:        hands,
		logger:       logger,
	}
	registry.Observe(m)
	return m
}

// Mode returns the active tool
func (m *Machine) Mode() Mode { return m.mode }

// Shape returns the shape the add tool stamps
func (m *Machine) Shape() scene.Shape { return m.shape }

// Color returns the active packed RGB colour
func (m *Machine) Color() uint32 { return m.cfg.Colors[m.colorIndex] }

// Selected returns the selected object id, or uuid.Nil
func (m *Machine) Selected() uuid.UUID { return m.selected }

// Hovered returns the object under the world-hand ray, or uuid.Nil
func (m *Machine) Hovered() uuid.UUID { return m.hovered }

// Busy reports whether a hold interaction is in progress
func (m *Machine) Busy() bool { return m.active != nil }

// ActiveStroke returns the stroke being drawn
func (m *Machine) ActiveStroke() *scene.Stroke { return m.stroke }

// Preview returns the live measurement segment after the first click
func (m *Machine) Preview() (Preview, bool) {
	if m.pending == nil || m.preview == nil {
		return Preview{}, false
	}
	return *m.preview, true
}

// Pending returns the first endpoint of an unfinished measurement
func (m *Machine) Pending() (geometry.Vector3, bool) {
	if m.pending == nil {
		return geometry.Vector3{}, false
	}
	return m.pending.a, true
}

// Gizmo returns the handles of the current selection in select mode
func (m *Machine) Gizmo() []Handle {
	if m.mode != ModeSelect {
		return nil
	}
	obj, ok := m.registry.Object(m.selected)
	if !ok {
		return nil
	}
	return Handles(obj, m.cfg.GizmoSize)
}

// SetMode switches tool and drops any in-progress payload
func (m *Machine) SetMode(mode Mode) {
	if mode < ModeSelect || mode > ModeAdd {
		return
	}
	m.clearPayload()
	m.mode = mode
}

// CycleMode advances to the next tool
func (m *Machine) CycleMode() {
	m.SetMode(m.mode.Next())
}

// CycleShape advances the shape ring
func (m *Machine) CycleShape() {
	m.shape = m.shape.Next()
}

// SetShape picks the add shape
func (m *Machine) SetShape(s scene.Shape) {
	if s.Valid() {
		m.shape = s
	}
}

// CycleColor advances the colour ring and recolours the selection
func (m *Machine) CycleColor() {
	m.colorIndex = (m.colorIndex + 1) % len(m.cfg.Colors)
	if obj, ok := m.registry.Object(m.selected); ok {
		obj.Color = m.Color()
		m.registry.Touch()
	}
}

// Select sets the selection; uuid.Nil or an unknown id clears it
func (m *Machine) Select(id uuid.UUID) {
	if _, ok := m.registry.Object(id); !ok {
		id = uuid.Nil
	}
	if id != m.selected {
		m.grab = nil
	}
	m.selected = id
}

// ScaleSelected multiplies the selection's scale, clamped to the configured range
func (m *Machine) ScaleSelected(factor float64) bool {
	obj, ok := m.registry.Object(m.selected)
	if !ok || factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return false
	}
	obj.Transform.Scale = clampScale(obj.Transform.Scale.Mul(factor), m.cfg.ScaleMin, m.cfg.ScaleMax)
	m.registry.Touch()
	return true
}

// ScaleUp grows the selection by one step
func (m *Machine) ScaleUp() bool { return m.ScaleSelected(m.cfg.ScaleStepUp) }

// ScaleDown shrinks the selection by one step
func (m *Machine) ScaleDown() bool { return m.ScaleSelected(m.cfg.ScaleStepDown) }

// DeleteSelected removes the selected object from the registry
func (m *Machine) DeleteSelected() bool {
	if m.selected == uuid.Nil {
		return false
	}
	if err := m.registry.RemoveObject(m.selected); err != nil {
		m.logger.Debug("delete selected", "err", err)
		m.selected = uuid.Nil
		return false
	}
	return true
}

// ClearMarks removes strokes and measurements and drops an unfinished measurement
func (m *Machine) ClearMarks() {
	m.pending, m.preview = nil, nil
	m.registry.ClearMarks()
}

// Reset drops all in-progress payload. The selection survives only while its object exists.
func (m *Machine) Reset() {
	m.clearPayload()
	m.hovered = uuid.Nil
	if _, ok := m.registry.Object(m.selected); !ok {
		m.selected = uuid.Nil
	}
}

// Removed clears every reference to an entity leaving the registry
func (m *Machine) Removed(id uuid.UUID) {
	if m.selected == id {
		m.selected = uuid.Nil
		m.grab = nil
		m.moving = false
		m.rotate = nil
	}
	if m.hovered == id {
		m.hovered = uuid.Nil
	}
	if m.stroke != nil && m.stroke.ID == id {
		m.stroke = nil
	}
}

func (m *Machine) clearPayload() {
	m.active = nil
	m.moving = false
	m.rotate = nil
	m.stroke = nil
	m.grab = nil
	m.pending = nil
	m.preview = nil
}

func (m *Machine) endHold() {
	m.active = nil
	m.moving = false
	m.rotate = nil
	m.stroke = nil
	m.grab = nil
}

// Begin starts a hold interaction (trigger pressed). It reports whether the
// event was used.
func (m *Machine) Begin(ev host.Event) bool {
	if !m.hands.IsWorldHand(ev.Source) {
		return false
	}
	src := ev.Source
	switch m.mode {
	case ModeSelect:
		if m.tryGrab(src) {
			m.active = &src
			return true
		}
		m.Select(m.pick(m.resolver.Ray(src)))
		return true
	case ModeMove:
		if _, ok := m.registry.Object(m.selected); !ok {
			return false
		}
		m.active, m.moving = &src, true
		return true
	case ModeRotate:
		obj, ok := m.registry.Object(m.selected)
		if !ok {
			return false
		}
		m.active = &src
		m.rotate = &rotateLatch{
			pivot:       obj.Transform.Position,
			axis:        obj.Transform.Orientation.Rotate(geometry.Vector3{Y: 1}).Normalize(),
			controller:  m.resolver.Ray(src).Origin,
			orientation: obj.Transform.Orientation,
		}
		return true
	case ModeDraw:
		m.active = &src
		m.stroke = m.registry.BeginStroke(m.Color())
		pose, _ := m.resolver.WorldPose(src, ev.Time)
		m.stroke.Append(pose.Position)
		return true
	}
	return false
}

// End finishes a hold interaction (trigger released)
func (m *Machine) End(ev host.Event) bool {
	if !m.hands.IsWorldHand(ev.Source) {
		return false
	}
	if m.active != nil && m.active.ID != ev.Source.ID {
		return false
	}
	used := m.active != nil
	m.endHold()
	return used
}

// Click handles a completed select gesture: add places, measure records endpoints
func (m *Machine) Click(ev host.Event) bool {
	if !m.hands.IsWorldHand(ev.Source) {
		return false
	}
	switch m.mode {
	case ModeAdd:
		pose, origin := m.resolver.WorldPose(ev.Source, ev.Time)
		obj, err := m.registry.AddObject(m.shape, m.Color(), geometry.TransformFromPose(pose))
		if err != nil {
			m.logger.Warn("add object", "err", err)
			return false
		}
		m.logger.Debug("placed object", "shape", obj.Shape, "origin", origin)
		m.Select(obj.ID)
		return true
	case ModeMeasure:
		pose, _ := m.resolver.WorldPose(ev.Source, ev.Time)
		return m.measureClick(pose.Position, ev)
	}
	return false
}

func (m *Machine) measureClick(p geometry.Vector3, ev host.Event) bool {
	// Frames may be sparse, so the abandon window is checked here as well as in Tick
	if m.pending != nil && ev.Time.Sub(m.pending.at) > m.cfg.MeasureAbandon.Duration {
		m.logger.Debug("measurement abandoned")
		m.pending, m.preview = nil, nil
	}
	if m.pending == nil {
		m.pending = &pendingMeasure{a: p, at: ev.Time, source: ev.Source}
		m.preview = &Preview{A: p, B: p, Label: scene.FormatDistance(0)}
		return true
	}
	if ev.Time.Sub(m.pending.at) < m.cfg.MeasureDebounce.Duration {
		return false
	}
	meas, err := m.registry.AddMeasurement(m.pending.a, p)
	if err != nil {
		// A near-duplicate second click keeps the first endpoint pending
		m.logger.Debug("measurement rejected", "err", err)
		return false
	}
	m.logger.Debug("measurement", "label", meas.Label)
	m.pending, m.preview = nil, nil
	return true
}

// Tick runs the continue phase of the active interaction, the measurement
// preview and abandonment, and the hover update
func (m *Machine) Tick(now time.Time) {
	if m.active != nil {
		m.continueHold(now)
	}

	if m.pending != nil {
		if now.Sub(m.pending.at) > m.cfg.MeasureAbandon.Duration {
			m.logger.Debug("measurement abandoned")
			m.pending, m.preview = nil, nil
		} else {
			pose, _ := m.resolver.WorldPose(m.pending.source, now)
			m.preview = &Preview{
				A:     m.pending.a,
				B:     pose.Position,
				Label: scene.FormatDistance(m.pending.a.Distance(pose.Position)),
			}
		}
	}

	m.hovered = uuid.Nil
	if m.mode == ModeSelect {
		if src, ok := m.hands.WorldSource(); ok {
			m.hovered = m.pick(m.resolver.Ray(src))
		}
	}
}

func (m *Machine) continueHold(now time.Time) {
	src := *m.active
	switch {
	case m.grab != nil:
		obj, ok := m.registry.Object(m.selected)
		if !ok {
			m.endHold()
			return
		}
		obj.Transform = m.grab.drag(m.resolver.Ray(src).Origin, m.cfg.GizmoSize, m.cfg.ScaleMin, m.cfg.ScaleMax)
		m.registry.Touch()
	case m.moving:
		obj, ok := m.registry.Object(m.selected)
		if !ok {
			m.endHold()
			return
		}
		pose, _ := m.resolver.WorldPose(src, now)
		obj.Transform.Position = pose.Position
		m.registry.Touch()
	case m.rotate != nil:
		obj, ok := m.registry.Object(m.selected)
		if !ok {
			m.endHold()
			return
		}
		r := m.rotate
		from := r.controller.Sub(r.pivot)
		to := m.resolver.Ray(src).Origin.Sub(r.pivot)
		if from.ProjectOnPlane(r.axis).Length() < 1e-6 || to.ProjectOnPlane(r.axis).Length() < 1e-6 {
			return
		}
		angle := geometry.SignedAngle(from, to, r.axis)
		obj.Transform.Orientation = geometry.QuaternionFromAxisAngle(r.axis, angle).Mul(r.orientation).Normalize()
		m.registry.Touch()
	case m.stroke != nil:
		pose, _ := m.resolver.WorldPose(src, now)
		if m.stroke.Append(pose.Position) {
			m.registry.Touch()
		}
	}
}

func (m *Machine) tryGrab(src host.InputSource) bool {
	obj, ok := m.registry.Object(m.selected)
	if !ok {
		return false
	}
	ray := m.resolver.Ray(src)
	h, ok := pickHandle(Handles(obj, m.cfg.GizmoSize), ray, m.cfg.GizmoPickRadius)
	if !ok {
		return false
	}
	m.grab = &grab{handle: h, start: ray.Origin, transform: obj.Transform}
	return true
}

// pick finds the object under the ray: exact mesh hit first, then the
// object whose centre is nearest the ray within the fallback radius
func (m *Machine) pick(ray geometry.Ray) uuid.UUID {
	if !ray.IsValid() {
		return uuid.Nil
	}
	objects := m.registry.Objects()
	best, bestT := uuid.Nil, math.Inf(1)
	for _, obj := range objects {
		if hit, ok := obj.WorldMesh().Raycast(ray); ok && hit.Distance < bestT {
			best, bestT = obj.ID, hit.Distance
		}
	}
	if best != uuid.Nil {
		return best
	}
	bestDist := m.selectRadius
	for _, obj := range objects {
		dist, _, ok := ray.DistanceToPoint(obj.Center())
		if ok && dist < bestDist {
			best, bestDist = obj.ID, dist
		}
	}
	return best
}
