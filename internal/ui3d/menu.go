// Package ui3d is the button panel that floats next to the UI hand. It is
// hit tested with the UI-hand ray only and fires a button on release after a
// minimum hover time.
package ui3d

import (
	"math"
	"time"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// Panel layout in metres
const (
	ButtonWidth  = 0.20
	ButtonHeight = 0.075
	PitchX       = 0.26
	PitchY       = 0.095
	columns      = 2
	originX      = -0.13
	originY      = 0.16
)

var (
	wristOffset = geometry.NewVector3(0.08, 0.04, -0.06)
	upAxis      = geometry.NewVector3(0, 1, 0)
	rightAxis   = geometry.NewVector3(1, 0, 0)
)

// Style is how a button is drawn
type Style int

const (
	StyleIdle Style = iota
	StyleHovered
	StyleActive
)

// String names the style
func (s Style) String() string {
	switch s {
	case StyleHovered:
		return "hovered"
	case StyleActive:
		return "active"
	default:
		return "idle"
	}
}

// Painter redraws a button face. It is only called when label or style changed.
type Painter interface {
	Paint(b *Button, style Style)
}

// Hands tells the menu which sources belong to the UI hand
type Hands interface {
	IsUIHand(src host.InputSource) bool
}

// Button is one panel entry
type Button struct {
	ID     string
	Label  string
	Center geometry.Vector3 // panel-local
	Toggle bool
	On     bool
	action func()

	style   Style
	painted bool
}

// Menu is the in-scene panel
type Menu struct {
	dwell   time.Duration
	hands   Hands
	painter Painter

	buttons []*Button
	pose    geometry.Pose
	visible bool

	hovered    *Button
	hoverSince time.Time
	armed      *Button
	armedBy    host.SourceID
	consumed   bool
}

// New creates an empty hidden panel
func New(cfg config.MenuConfig, hands Hands, painter Painter) *Menu {
	return &Menu{dwell: cfg.Dwell.Duration, hands: hands, painter: painter, pose: geometry.IdentityPose()}
}

// AddButton appends a button in the next grid cell
func (m *Menu) AddButton(id, label string, action func()) *Button {
	i := len(m.buttons)
	b := &Button{
		ID:     id,
		Label:  label,
		Center: geometry.NewVector3(originX+float64(i%columns)*PitchX, originY-float64(i/columns)*PitchY, 0),
		action: action,
	}
	m.buttons = append(m.buttons, b)
	m.repaint(b)
	return b
}

// AddToggle appends a button drawn active while on
func (m *Menu) AddToggle(id, label string, on bool, action func()) *Button {
	b := m.AddButton(id, label, action)
	b.Toggle = true
	b.On = on
	m.repaint(b)
	return b
}

// Buttons returns the panel entries in layout order
func (m *Menu) Buttons() []*Button {
	return append([]*Button(nil), m.buttons...)
}

// Button looks up an entry by id
func (m *Menu) Button(id string) (*Button, bool) {
	for _, b := range m.buttons {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// SetLabel changes a button text
func (m *Menu) SetLabel(id, label string) {
	if b, ok := m.Button(id); ok && b.Label != label {
		b.Label = label
		b.painted = false
		m.repaint(b)
	}
}

// SetOn changes the on state of a toggle button
func (m *Menu) SetOn(id string, on bool) {
	if b, ok := m.Button(id); ok && b.On != on {
		b.On = on
		m.repaint(b)
	}
}

// Show makes the panel visible
func (m *Menu) Show() {
	m.visible = true
}

// Hide hides the panel and drops hover and armed state
func (m *Menu) Hide() {
	m.visible = false
	m.setHover(nil, time.Time{})
	m.armed = nil
}

// Visible reports whether the panel is shown
func (m *Menu) Visible() bool { return m.visible }

// Pose returns the panel placement
func (m *Menu) Pose() geometry.Pose { return m.pose }

// Hovered returns the button under the UI ray
func (m *Menu) Hovered() (*Button, bool) { return m.hovered, m.hovered != nil }

// BeginFrame resets the frame-scoped consumed flag
func (m *Menu) BeginFrame() { m.consumed = false }

// Consumed reports whether a button fired this frame
func (m *Menu) Consumed() bool { return m.consumed }

// PlaceOnAnchor attaches the panel next to the UI hand, turned toward the viewer
func (m *Menu) PlaceOnAnchor(anchor, viewer geometry.Pose) {
	pos := anchor.Position.Add(anchor.Orientation.Rotate(wristOffset))
	m.pose = geometry.NewPose(pos, facing(viewer, -0.55))
}

// PlaceInFront puts the panel 0.8 m ahead of the viewer, lowered and moved left
func (m *Menu) PlaceInFront(viewer geometry.Pose) {
	yaw := geometry.QuaternionFromAxisAngle(upAxis, viewer.Orientation.Yaw())
	pos := viewer.Position.Add(viewer.Forward().Mul(0.8))
	pos.Y -= 0.18
	pos = pos.Add(yaw.Rotate(geometry.NewVector3(-0.18, 0, 0)))
	m.pose = geometry.NewPose(pos, facing(viewer, -0.45))
}

// facing keeps only the viewer yaw so the panel front (+Z) looks back at
// the viewer, then tilts it about its X axis
func facing(viewer geometry.Pose, tilt float64) geometry.Quaternion {
	yaw := geometry.QuaternionFromAxisAngle(upAxis, viewer.Orientation.Yaw())
	return yaw.Mul(geometry.QuaternionFromAxisAngle(rightAxis, tilt)).Normalize()
}

// UpdateHover hit tests the UI-hand ray; pass ok=false when there is no UI hand
func (m *Menu) UpdateHover(ray geometry.Ray, ok bool, now time.Time) {
	if !m.visible || !ok || !ray.IsValid() {
		m.setHover(nil, now)
		return
	}
	m.setHover(m.hit(ray), now)
}

// hit returns the button the ray passes through, or nil
func (m *Menu) hit(ray geometry.Ray) *Button {
	normal := m.pose.Orientation.Rotate(geometry.NewVector3(0, 0, 1))
	t, ok := ray.IntersectPlane(m.pose.Position, normal)
	if !ok {
		return nil
	}
	local := m.pose.Inverse().Apply(ray.At(t))
	for _, b := range m.buttons {
		if math.Abs(local.X-b.Center.X) <= ButtonWidth/2 && math.Abs(local.Y-b.Center.Y) <= ButtonHeight/2 {
			return b
		}
	}
	return nil
}

func (m *Menu) setHover(b *Button, now time.Time) {
	if b == m.hovered {
		return
	}
	prev := m.hovered
	m.hovered = b
	m.hoverSince = now
	if prev != nil {
		m.repaint(prev)
	}
	if b != nil {
		m.repaint(b)
	}
}

// Press arms the hovered button. It reports whether the press landed on the panel.
func (m *Menu) Press(ev host.Event) bool {
	if !m.visible || !m.hands.IsUIHand(ev.Source) || m.hovered == nil {
		return false
	}
	m.armed = m.hovered
	m.armedBy = ev.Source.ID
	return true
}

// Disconnect drops an arm held by a source that went away
func (m *Menu) Disconnect(id host.SourceID) {
	if m.armed != nil && m.armedBy == id {
		m.armed = nil
		m.armedBy = ""
	}
}

// Release fires the armed button when it is still hovered and the hover has
// lasted at least the dwell time. Firing sets the consumed flag.
func (m *Menu) Release(ev host.Event) bool {
	if m.armed == nil || ev.Source.ID != m.armedBy {
		return false
	}
	b := m.armed
	m.armed = nil
	if m.hovered != b || ev.Time.Sub(m.hoverSince) < m.dwell {
		return false
	}
	m.consumed = true
	if b.action != nil {
		b.action()
	}
	return true
}

func (m *Menu) styleOf(b *Button) Style {
	switch {
	case b == m.hovered:
		return StyleHovered
	case b.Toggle && b.On:
		return StyleActive
	default:
		return StyleIdle
	}
}

func (m *Menu) repaint(b *Button) {
	style := m.styleOf(b)
	if b.painted && b.style == style {
		return
	}
	b.style = style
	b.painted = true
	if m.painter != nil {
		m.painter.Paint(b, style)
	}
}

// Style returns the style a button was last drawn with
func (b *Button) Style() Style { return b.style }
