package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/pkg/geometry"
)

var (
	// ErrTooShort is returned for measurements below the minimum length
	ErrTooShort = errors.New("measurement is too short")
	// ErrUnknownObject is returned when an id is not in the registry
	ErrUnknownObject = errors.New("unknown object")
)

// RemovalObserver is told about every entity leaving the registry, before its
// resources are released. Holders of weak references clear them here.
type RemovalObserver interface {
	Removed(id uuid.UUID)
}

// Releaser frees the graphics resources attached to an entity
type Releaser interface {
	Release(id uuid.UUID) error
}

// Registry owns placed objects, strokes and measurements
type Registry struct {
	cfg       config.ToolConfig
	logger    *slog.Logger
	releaser  Releaser
	observers []RemovalObserver

	objects  []*PlacedObject
	strokes  []*Stroke
	measures []Measurement
	revision uint64
}

// NewRegistry creates an empty registry
func NewRegistry(cfg config.ToolConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{cfg: cfg, logger: logger}
}

// SetReleaser installs the resource release hook
func (r *Registry) SetReleaser(rel Releaser) {
	r.releaser = rel
}

// Observe registers a removal observer
func (r *Registry) Observe(o RemovalObserver) {
	r.observers = append(r.observers, o)
}

// Revision increases with every change and lets views skip redundant redraws
func (r *Registry) Revision() uint64 {
	return r.revision
}

// AddObject places a new primitive
func (r *Registry) AddObject(shape Shape, color uint32, t geometry.Transform) (*PlacedObject, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("cannot place %s", shape)
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot place %s: transform is not finite", shape)
	}
	obj := &PlacedObject{ID: uuid.New(), Shape: shape, Color: color & 0xffffff, Transform: t}
	r.objects = append(r.objects, obj)
	r.revision++
	return obj, nil
}

// Object looks up a placed object
func (r *Registry) Object(id uuid.UUID) (*PlacedObject, bool) {
	for _, o := range r.objects {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Objects returns the placed objects in creation order
func (r *Registry) Objects() []*PlacedObject {
	return slices.Clone(r.objects)
}

// Touch marks the registry changed after an object transform was edited in place
func (r *Registry) Touch() {
	r.revision++
}

// RemoveObject removes and releases a placed object
func (r *Registry) RemoveObject(id uuid.UUID) error {
	i := slices.IndexFunc(r.objects, func(o *PlacedObject) bool { return o.ID == id })
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownObject)
	}
	r.objects = slices.Delete(r.objects, i, i+1)
	r.dispose(id)
	return nil
}

// BeginStroke starts a new empty stroke
func (r *Registry) BeginStroke(color uint32) *Stroke {
	s := newStroke(color&0xffffff, r.cfg.StrokeCapacity, r.cfg.StrokeMinSpacing)
	r.strokes = append(r.strokes, s)
	r.revision++
	return s
}

// AddStroke restores a stroke from stored points; points past the capacity are dropped
func (r *Registry) AddStroke(color uint32, points []geometry.Vector3) *Stroke {
	s := newStroke(color&0xffffff, r.cfg.StrokeCapacity, 0)
	for _, p := range points {
		if s.count >= len(s.points) {
			break
		}
		s.points[s.count] = p
		s.count++
	}
	s.minSpacing = r.cfg.StrokeMinSpacing
	r.strokes = append(r.strokes, s)
	r.revision++
	return s
}

// Strokes returns the strokes in creation order
func (r *Registry) Strokes() []*Stroke {
	return slices.Clone(r.strokes)
}

// AddMeasurement stores a finished measurement
func (r *Registry) AddMeasurement(a, b geometry.Vector3) (Measurement, error) {
	if !a.IsFinite() || !b.IsFinite() {
		return Measurement{}, fmt.Errorf("measurement endpoints are not finite")
	}
	d := a.Distance(b)
	if d < r.cfg.MeasureMinLength {
		return Measurement{}, fmt.Errorf("%s: %w", FormatDistance(d), ErrTooShort)
	}
	m := Measurement{ID: uuid.New(), A: a, B: b, Label: FormatDistance(d)}
	r.measures = append(r.measures, m)
	r.revision++
	return m, nil
}

// Measurements returns the finished measurements
func (r *Registry) Measurements() []Measurement {
	return slices.Clone(r.measures)
}

// ClearMarks removes every stroke and measurement
func (r *Registry) ClearMarks() {
	strokes, measures := r.strokes, r.measures
	r.strokes, r.measures = nil, nil
	for _, s := range strokes {
		r.dispose(s.ID)
	}
	for _, m := range measures {
		r.dispose(m.ID)
	}
	r.revision++
}

// ClearObjects removes every placed object
func (r *Registry) ClearObjects() {
	objects := r.objects
	r.objects = nil
	for _, o := range objects {
		r.dispose(o.ID)
	}
	r.revision++
}

// Clear empties the registry
func (r *Registry) Clear() {
	r.ClearObjects()
	r.ClearMarks()
}

// dispose notifies observers, then releases resources. Release failures are
// logged and otherwise ignored since the entity is already unreachable.
func (r *Registry) dispose(id uuid.UUID) {
	for _, o := range r.observers {
		o.Removed(id)
	}
	r.revision++
	if r.releaser == nil {
		return
	}
	if err := r.releaser.Release(id); err != nil {
		r.logger.Debug("release failed", "id", id, "err", err)
	}
}
