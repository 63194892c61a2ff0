// Package scan keeps one visual per plane and mesh the AR runtime reports,
// refreshing and pruning them frame by frame.
package scan

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/pkg/geometry"
)

var errMalformed = errors.New("malformed surface")

// PlaneVisual is the outline of a detected plane
type PlaneVisual struct {
	ID      string
	Pose    geometry.Pose
	Polygon []geometry.Vector3 // plane-local
}

// Outline returns the polygon in world space, closed by repeating the first point
func (p *PlaneVisual) Outline() []geometry.Vector3 {
	pts := p.WorldPolygon()
	if len(pts) >= 3 {
		pts = append(pts, pts[0])
	}
	return pts
}

// WorldPolygon returns the polygon in world space
func (p *PlaneVisual) WorldPolygon() []geometry.Vector3 {
	out := make([]geometry.Vector3, len(p.Polygon))
	for i, v := range p.Polygon {
		out[i] = p.Pose.Apply(v)
	}
	return out
}

// Normal returns the world normal
func (p *PlaneVisual) Normal() geometry.Vector3 {
	return PlaneNormal(p.Pose)
}

// MeshVisual is the geometry of a detected mesh
type MeshVisual struct {
	ID        string
	Pose      geometry.Pose
	Mesh      geometry.Mesh // mesh-local
	Wireframe bool
}

// WorldMesh returns the mesh transformed by its pose
func (m *MeshVisual) WorldMesh() geometry.Mesh {
	return m.Mesh.Transformed(geometry.TransformFromPose(m.Pose))
}

// Ingestor tracks detected planes and meshes
type Ingestor struct {
	cfg    config.ScanConfig
	logger *slog.Logger

	planes association[PlaneVisual]
	meshes association[MeshVisual]

	showPlanes bool
	showMeshes bool
	frozen     bool
	wireframe  bool
}

// NewIngestor creates an ingestor with plane and mesh display off
func NewIngestor(cfg config.ScanConfig, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingestor{
		cfg:    cfg,
		logger: logger,
		planes: newAssociation[PlaneVisual](),
		meshes: newAssociation[MeshVisual](),
	}
}

// Planes returns the plane visuals
func (in *Ingestor) Planes() []*PlaneVisual { return in.planes.all() }

// Meshes returns the mesh visuals
func (in *Ingestor) Meshes() []*MeshVisual { return in.meshes.all() }

// Plane looks up the visual of a plane id
func (in *Ingestor) Plane(id string) (*PlaneVisual, bool) { return in.planes.lookup(id) }

// Mesh looks up the visual of a mesh id
func (in *Ingestor) Mesh(id string) (*MeshVisual, bool) { return in.meshes.lookup(id) }

// ShowPlanes reports whether plane ingestion is on
func (in *Ingestor) ShowPlanes() bool { return in.showPlanes }

// ShowMeshes reports whether mesh ingestion is on
func (in *Ingestor) ShowMeshes() bool { return in.showMeshes }

// Frozen reports whether refresh is paused
func (in *Ingestor) Frozen() bool { return in.frozen }

// Wireframe reports whether mesh visuals draw as wireframe
func (in *Ingestor) Wireframe() bool { return in.wireframe }

// SetShowPlanes switches plane ingestion; switching off drops every plane visual
func (in *Ingestor) SetShowPlanes(on bool) {
	in.showPlanes = on
	if !on {
		in.planes.clear()
	}
}

// SetShowMeshes switches mesh ingestion; switching off drops every mesh visual
func (in *Ingestor) SetShowMeshes(on bool) {
	in.showMeshes = on
	if !on {
		in.meshes.clear()
	}
}

// SetFrozen pauses or resumes refresh without discarding visuals
func (in *Ingestor) SetFrozen(on bool) {
	in.frozen = on
}

// SetWireframe updates the wireframe flag of all mesh visuals
func (in *Ingestor) SetWireframe(on bool) {
	in.wireframe = on
	for _, m := range in.meshes.visuals {
		m.Wireframe = on
	}
}

// Reset drops every visual
func (in *Ingestor) Reset() {
	in.planes.clear()
	in.meshes.clear()
}

// Update refreshes visuals from a frame and prunes vanished surfaces.
// It returns the number of entries that were rejected.
func (in *Ingestor) Update(frame host.Frame) int {
	if in.frozen {
		return 0
	}
	failed := 0
	if in.showPlanes && frame.PlanesSupported {
		failed += in.updatePlanes(frame.Planes)
	}
	if in.showMeshes && frame.MeshesSupported {
		failed += in.updateMeshes(frame.Meshes)
	}
	return failed
}

func (in *Ingestor) updatePlanes(planes []host.DetectedPlane) int {
	failed := 0
	reported := make(map[string]struct{}, len(planes))
	for _, p := range planes {
		reported[p.ID] = struct{}{}
	}
	for i, p := range planes {
		if i >= in.cfg.PlaneCap {
			break
		}
		if err := in.refreshPlane(p); err != nil {
			failed++
			in.logger.Warn("skipping plane", "surface", p.ID, "kind", "plane", "err", err)
		}
	}
	for _, id := range in.planes.prune(reported) {
		in.logger.Debug("plane gone", "surface", id)
	}
	return failed
}

func (in *Ingestor) updateMeshes(meshes []host.DetectedMesh) int {
	failed := 0
	reported := make(map[string]struct{}, len(meshes))
	for _, m := range meshes {
		reported[m.ID] = struct{}{}
	}
	for i, m := range meshes {
		if i >= in.cfg.MeshCap {
			break
		}
		if err := in.refreshMesh(m); err != nil {
			failed++
			in.logger.Warn("skipping mesh", "surface", m.ID, "kind", "mesh", "err", err)
		}
	}
	for _, id := range in.meshes.prune(reported) {
		in.logger.Debug("mesh gone", "surface", id)
	}
	return failed
}

func (in *Ingestor) refreshPlane(p host.DetectedPlane) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errMalformed, r)
		}
	}()
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", errMalformed)
	}
	if !p.Pose.IsValid() {
		return fmt.Errorf("%w: invalid pose", errMalformed)
	}
	if len(p.Polygon) < 3 {
		return fmt.Errorf("%w: polygon has %d points", errMalformed, len(p.Polygon))
	}
	for _, v := range p.Polygon {
		if !v.IsFinite() {
			return fmt.Errorf("%w: polygon is not finite", errMalformed)
		}
	}

	visual, ok := in.planes.lookup(p.ID)
	if !ok {
		visual = &PlaneVisual{ID: p.ID}
		in.planes.insert(p.ID, visual)
	}
	visual.Pose = p.Pose
	visual.Polygon = append(visual.Polygon[:0], p.Polygon...)
	return nil
}

func (in *Ingestor) refreshMesh(m host.DetectedMesh) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errMalformed, r)
		}
	}()
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", errMalformed)
	}
	if !m.Pose.IsValid() {
		return fmt.Errorf("%w: invalid pose", errMalformed)
	}
	if len(m.Vertices)%3 != 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d vertex floats, %d indices", errMalformed, len(m.Vertices), len(m.Indices))
	}
	mesh := geometry.MeshFromFlat(m.ID, m.Vertices, m.Indices)
	if err := mesh.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	visual, ok := in.meshes.lookup(m.ID)
	if !ok {
		visual = &MeshVisual{ID: m.ID}
		in.meshes.insert(m.ID, visual)
	}
	visual.Pose = m.Pose
	visual.Mesh = mesh
	visual.Wireframe = in.wireframe
	return nil
}
