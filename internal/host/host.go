// Package host describes what goroom needs from the AR/VR device runtime:
// sessions, per-frame tracking data and input events.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// ErrUnsupported is returned when the runtime lacks a capability
var ErrUnsupported = errors.New("unsupported by the AR runtime")

// Handedness is the physical hand an input source belongs to
type Handedness int

const (
	HandNone Handedness = iota
	HandLeft
	HandRight
)

// String returns "none", "left" or "right"
func (h Handedness) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	default:
		return "none"
	}
}

// Opposite returns the other hand; HandNone stays HandNone
func (h Handedness) Opposite() Handedness {
	switch h {
	case HandLeft:
		return HandRight
	case HandRight:
		return HandLeft
	default:
		return HandNone
	}
}

// ParseHandedness accepts "left", "right" and "none"/""
func ParseHandedness(s string) (Handedness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return HandLeft, nil
	case "right":
		return HandRight, nil
	case "", "none":
		return HandNone, nil
	}
	return HandNone, fmt.Errorf("unknown handedness %q", s)
}

// SourceID identifies an input source for the lifetime of its connection
type SourceID string

// InputSource is one tracked controller or hand
type InputSource struct {
	ID         SourceID
	Handedness Handedness
	HasGamepad bool
	HasHand    bool
	TargetRay  geometry.Pose
	Grip       *geometry.Pose
	Wrist      *geometry.Pose
	IndexTip   *geometry.Pose
	Profiles   []string
}

// SlotKind separates controller slots from hand-tracking slots
type SlotKind int

const (
	SlotController SlotKind = iota
	SlotHand
)

// Slot is one of the four fixed input slots (controller 0/1, hand 0/1)
type Slot struct {
	Kind  SlotKind
	Index int
}

// String returns e.g. "controller0" or "hand1"
func (s Slot) String() string {
	if s.Kind == SlotHand {
		return fmt.Sprintf("hand%d", s.Index)
	}
	return fmt.Sprintf("controller%d", s.Index)
}

// ParseSlot is the inverse of Slot.String
func ParseSlot(s string) (Slot, error) {
	var slot Slot
	switch {
	case strings.HasPrefix(s, "controller"):
		slot.Kind = SlotController
		s = strings.TrimPrefix(s, "controller")
	case strings.HasPrefix(s, "hand"):
		slot.Kind = SlotHand
		s = strings.TrimPrefix(s, "hand")
	default:
		return Slot{}, fmt.Errorf("unknown slot %q", s)
	}
	switch s {
	case "0":
		slot.Index = 0
	case "1":
		slot.Index = 1
	default:
		return Slot{}, fmt.Errorf("slot index must be 0 or 1, got %q", s)
	}
	return slot, nil
}

// DetectedPlane is a planar surface reported by the runtime. The polygon is
// given in plane-local coordinates on the local XZ plane; the pose's +Y is the normal.
type DetectedPlane struct {
	ID      string
	Pose    geometry.Pose
	Polygon []geometry.Vector3
}

// DetectedMesh is a triangulated region reported by the runtime in mesh-local space
type DetectedMesh struct {
	ID       string
	Pose     geometry.Pose
	Vertices []float32
	Indices  []uint32
}

// TransientHit holds the hit-test results of one input source for one profile
type TransientHit struct {
	Source  SourceID
	Results []geometry.Pose
}

// Frame is everything the runtime reports for one rendered frame
type Frame struct {
	Time            time.Time
	Viewer          geometry.Pose
	Sources         []InputSource
	TransientHits   map[string][]TransientHit // by profile
	ViewerHits      []geometry.Pose
	Planes          []DetectedPlane
	Meshes          []DetectedMesh
	PlanesSupported bool
	MeshesSupported bool
}

// Source looks up an input source by id
func (f Frame) Source(id SourceID) (InputSource, bool) {
	for _, s := range f.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return InputSource{}, false
}

// EventKind enumerates the input events the runtime emits
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventSelectStart
	EventSelectEnd
	EventSelect
	EventSessionEnd
)

var eventNames = map[EventKind]string{
	EventConnected:    "connected",
	EventDisconnected: "disconnected",
	EventSelectStart:  "selectstart",
	EventSelectEnd:    "selectend",
	EventSelect:       "select",
	EventSessionEnd:   "end",
}

// String returns the runtime's event name
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind is the inverse of EventKind.String
func ParseEventKind(s string) (EventKind, error) {
	for k, name := range eventNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

// Event is one input event delivered by the runtime
type Event struct {
	Kind   EventKind
	Slot   Slot
	Source InputSource
	Time   time.Time
}

// Mode is the kind of immersive session
type Mode string

const (
	ModeAR Mode = "immersive-ar"
	ModeVR Mode = "immersive-vr"
)

// Features lists the capabilities a session must and may enable
type Features struct {
	Required []string
	Optional []string
}

// ReferenceSpace names a tracking origin
type ReferenceSpace string

const (
	SpaceLocal      ReferenceSpace = "local"
	SpaceLocalFloor ReferenceSpace = "local-floor"
	SpaceViewer     ReferenceSpace = "viewer"
)

// HitTestOptions selects a transient (per-profile) or viewer hit-test source
type HitTestOptions struct {
	Transient bool
	Profile   string
}

// HitTestSource is a subscription to hit-test results
type HitTestSource interface {
	Options() HitTestOptions
	Cancel() error
}

// Session is an active immersive session
type Session interface {
	Mode() Mode
	EnabledFeatures() []string
	RequestReferenceSpace(ctx context.Context, space ReferenceSpace) error
	RequestHitTestSource(ctx context.Context, opts HitTestOptions) (HitTestSource, error)
	InitiateRoomCapture(ctx context.Context) error
	End() error
}

// System is the runtime entry point used to probe and start sessions
type System interface {
	IsSessionSupported(ctx context.Context, mode Mode) (bool, error)
	RequestSession(ctx context.Context, mode Mode, features Features) (Session, error)
}

// HasFeature reports whether the session enabled the named feature
func HasFeature(s Session, feature string) bool {
	for _, f := range s.EnabledFeatures() {
		if f == feature {
			return true
		}
	}
	return false
}
