// Package replay implements the host runtime from a YAML script so whole
// sessions can run headless, in the control panel and in tests.
package replay

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// DefaultInterval separates frames that carry no explicit "at"
const DefaultInterval = 20 * time.Millisecond

var defaultStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Script is the YAML document describing a runtime and its frames
type Script struct {
	Supports          []host.Mode   `yaml:"supports"`
	Features          []string      `yaml:"features"`
	Spaces            []string      `yaml:"spaces"`
	TransientProfiles []string      `yaml:"transient_profiles"`
	RoomCapture       bool          `yaml:"room_capture"`
	Start             time.Time     `yaml:"start"`
	Interval          time.Duration `yaml:"interval"`
	Frames            []ScriptFrame `yaml:"frames"`
}

// PoseSpec is a pose written either with a quaternion or with a forward direction
type PoseSpec struct {
	Position   []float64 `yaml:"position"`
	Quaternion []float64 `yaml:"quaternion"`
	Forward    []float64 `yaml:"forward"`
	Up         []float64 `yaml:"up"`
}

// SourceSpec describes one input source
type SourceSpec struct {
	ID         string    `yaml:"id"`
	Handedness string    `yaml:"handedness"`
	Gamepad    bool      `yaml:"gamepad"`
	Hand       bool      `yaml:"hand"`
	Ray        PoseSpec  `yaml:"ray"`
	Grip       *PoseSpec `yaml:"grip"`
	Wrist      *PoseSpec `yaml:"wrist"`
	IndexTip   *PoseSpec `yaml:"index_tip"`
	Profiles   []string  `yaml:"profiles"`
}

// HitSpec lists hit-test results for one source
type HitSpec struct {
	Source string     `yaml:"source"`
	Hits   []PoseSpec `yaml:"hits"`
}

// PlaneSpec describes a detected plane
type PlaneSpec struct {
	ID      string      `yaml:"id"`
	Pose    PoseSpec    `yaml:"pose"`
	Polygon [][]float64 `yaml:"polygon"`
}

// MeshSpec describes a detected mesh
type MeshSpec struct {
	ID       string    `yaml:"id"`
	Pose     PoseSpec  `yaml:"pose"`
	Vertices []float32 `yaml:"vertices"`
	Indices  []uint32  `yaml:"indices"`
}

// EventSpec describes an input event
type EventSpec struct {
	Kind   string `yaml:"kind"`
	Slot   string `yaml:"slot"`
	Source string `yaml:"source"`
}

// ScriptFrame is one frame. Omitted sources, planes and meshes carry over from
// the previous frame; an explicit empty list clears them.
type ScriptFrame struct {
	At         *time.Duration       `yaml:"at"`
	Viewer     *PoseSpec            `yaml:"viewer"`
	Sources    []SourceSpec         `yaml:"sources"`
	Transient  map[string][]HitSpec `yaml:"transient"`
	ViewerHits []PoseSpec           `yaml:"viewer_hits"`
	Planes     []PlaneSpec          `yaml:"planes"`
	Meshes     []MeshSpec           `yaml:"meshes"`
	Events     []EventSpec          `yaml:"events"`
	Commands   []string             `yaml:"commands"`
}

// Step is a decoded frame plus the events and commands delivered with it
type Step struct {
	Frame    host.Frame
	Events   []host.Event
	Commands []string
}

// LoadFile reads a script from disk
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a YAML script
func Parse(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.Start.IsZero() {
		s.Start = defaultStart
	}
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	if len(s.Supports) == 0 {
		s.Supports = []host.Mode{host.ModeAR}
	}
	if s.Spaces == nil {
		s.Spaces = []string{string(host.SpaceLocal), string(host.SpaceLocalFloor), string(host.SpaceViewer)}
	}
	return &s, nil
}

// Steps decodes every frame, resolving carry-over and timestamps
func (s *Script) Steps() ([]Step, error) {
	steps := make([]Step, 0, len(s.Frames))
	var prev host.Frame
	elapsed := time.Duration(0)
	prev.Viewer = geometry.IdentityPose()

	for i, sf := range s.Frames {
		if sf.At != nil {
			elapsed = *sf.At
		} else if i > 0 {
			elapsed += s.Interval
		}
		frame, err := s.decodeFrame(sf, prev, s.Start.Add(elapsed))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		events := make([]host.Event, 0, len(sf.Events))
		for j, es := range sf.Events {
			ev, err := decodeEvent(es, frame)
			if err != nil {
				return nil, fmt.Errorf("frame %d event %d: %w", i, j, err)
			}
			events = append(events, ev)
		}
		steps = append(steps, Step{Frame: frame, Events: events, Commands: sf.Commands})
		prev = frame
	}
	return steps, nil
}

func (s *Script) decodeFrame(sf ScriptFrame, prev host.Frame, at time.Time) (host.Frame, error) {
	frame := host.Frame{
		Time:            at,
		Viewer:          prev.Viewer,
		Sources:         prev.Sources,
		Planes:          prev.Planes,
		Meshes:          prev.Meshes,
		PlanesSupported: s.hasFeature("plane-detection"),
		MeshesSupported: s.hasFeature("mesh-detection"),
	}

	if sf.Viewer != nil {
		p, err := sf.Viewer.Pose()
		if err != nil {
			return host.Frame{}, fmt.Errorf("viewer: %w", err)
		}
		frame.Viewer = p
	}

	if sf.Sources != nil {
		frame.Sources = make([]host.InputSource, 0, len(sf.Sources))
		for _, ss := range sf.Sources {
			src, err := ss.inputSource()
			if err != nil {
				return host.Frame{}, fmt.Errorf("source %q: %w", ss.ID, err)
			}
			frame.Sources = append(frame.Sources, src)
		}
	}

	if len(sf.Transient) > 0 {
		frame.TransientHits = make(map[string][]host.TransientHit, len(sf.Transient))
		for profile, hits := range sf.Transient {
			for _, hs := range hits {
				th := host.TransientHit{Source: host.SourceID(hs.Source)}
				for _, ps := range hs.Hits {
					p, err := ps.Pose()
					if err != nil {
						return host.Frame{}, fmt.Errorf("transient hit for %q: %w", hs.Source, err)
					}
					th.Results = append(th.Results, p)
				}
				frame.TransientHits[profile] = append(frame.TransientHits[profile], th)
			}
		}
	}

	for _, ps := range sf.ViewerHits {
		p, err := ps.Pose()
		if err != nil {
			return host.Frame{}, fmt.Errorf("viewer hit: %w", err)
		}
		frame.ViewerHits = append(frame.ViewerHits, p)
	}

	if sf.Planes != nil {
		frame.Planes = make([]host.DetectedPlane, 0, len(sf.Planes))
		for _, ps := range sf.Planes {
			// Malformed poses are passed through so ingestion can reject them per entry
			pose, _ := ps.Pose.Pose()
			plane := host.DetectedPlane{ID: ps.ID, Pose: pose}
			for _, pt := range ps.Polygon {
				plane.Polygon = append(plane.Polygon, vec3(pt))
			}
			frame.Planes = append(frame.Planes, plane)
		}
	}

	if sf.Meshes != nil {
		frame.Meshes = make([]host.DetectedMesh, 0, len(sf.Meshes))
		for _, ms := range sf.Meshes {
			pose, _ := ms.Pose.Pose()
			frame.Meshes = append(frame.Meshes, host.DetectedMesh{
				ID:       ms.ID,
				Pose:     pose,
				Vertices: ms.Vertices,
				Indices:  ms.Indices,
			})
		}
	}
	return frame, nil
}

func (s *Script) hasFeature(name string) bool {
	for _, f := range s.Features {
		if f == name {
			return true
		}
	}
	return false
}

func decodeEvent(es EventSpec, frame host.Frame) (host.Event, error) {
	kind, err := host.ParseEventKind(es.Kind)
	if err != nil {
		return host.Event{}, err
	}
	ev := host.Event{Kind: kind, Time: frame.Time}
	if kind == host.EventSessionEnd {
		return ev, nil
	}
	if ev.Slot, err = host.ParseSlot(es.Slot); err != nil {
		return host.Event{}, err
	}
	if es.Source != "" {
		src, ok := frame.Source(host.SourceID(es.Source))
		if !ok {
			return host.Event{}, fmt.Errorf("unknown source %q", es.Source)
		}
		ev.Source = src
	}
	return ev, nil
}

func (ss SourceSpec) inputSource() (host.InputSource, error) {
	hand, err := host.ParseHandedness(ss.Handedness)
	if err != nil {
		return host.InputSource{}, err
	}
	ray, err := ss.Ray.Pose()
	if err != nil {
		return host.InputSource{}, fmt.Errorf("ray: %w", err)
	}
	src := host.InputSource{
		ID:         host.SourceID(ss.ID),
		Handedness: hand,
		HasGamepad: ss.Gamepad,
		HasHand:    ss.Hand,
		TargetRay:  ray,
		Profiles:   ss.Profiles,
	}
	for _, joint := range []struct {
		spec *PoseSpec
		dst  **geometry.Pose
	}{{ss.Grip, &src.Grip}, {ss.Wrist, &src.Wrist}, {ss.IndexTip, &src.IndexTip}} {
		if joint.spec == nil {
			continue
		}
		p, err := joint.spec.Pose()
		if err != nil {
			return host.InputSource{}, err
		}
		*joint.dst = &p
	}
	return src, nil
}

// Pose converts the spec; forward (with optional up) wins over an absent quaternion
func (ps PoseSpec) Pose() (geometry.Pose, error) {
	pose := geometry.IdentityPose()
	if len(ps.Position) != 0 {
		if len(ps.Position) != 3 {
			return pose, fmt.Errorf("position needs 3 values, got %d", len(ps.Position))
		}
		pose.Position = vec3(ps.Position)
	}
	switch {
	case len(ps.Quaternion) == 4:
		pose.Orientation = geometry.QuaternionFromArray([4]float64(ps.Quaternion))
	case len(ps.Quaternion) != 0:
		return pose, fmt.Errorf("quaternion needs 4 values, got %d", len(ps.Quaternion))
	case len(ps.Forward) == 3:
		up := geometry.NewVector3(0, 1, 0)
		if len(ps.Up) == 3 {
			up = vec3(ps.Up)
		}
		forward := vec3(ps.Forward)
		// A forward along up needs a different reference to stay well defined
		if forward.Normalize().Cross(up.Normalize()).Length() < 1e-6 {
			up = forward.AnyPerpendicular()
		}
		pose.Orientation = geometry.QuaternionFromUpForward(up, forward)
	}
	return pose, nil
}

func vec3(v []float64) geometry.Vector3 {
	var out geometry.Vector3
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}
