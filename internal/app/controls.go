package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/plan"
	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/pkg/glb"
)

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// TogglePlanes shows or hides detected plane outlines
func (c *Context) TogglePlanes() {
	c.Scan.SetShowPlanes(!c.Scan.ShowPlanes())
	c.syncLabels()
	c.status.Infof("Planes: %s", onOff(c.Scan.ShowPlanes()))
}

// ToggleMesh shows or hides detected meshes
func (c *Context) ToggleMesh() {
	c.Scan.SetShowMeshes(!c.Scan.ShowMeshes())
	c.syncLabels()
	c.status.Infof("Mesh: %s", onOff(c.Scan.ShowMeshes()))
}

// ToggleFreeze pauses or resumes scan refresh without dropping visuals
func (c *Context) ToggleFreeze() {
	c.Scan.SetFrozen(!c.Scan.Frozen())
	c.syncLabels()
	c.status.Infof("Freeze: %s", onOff(c.Scan.Frozen()))
}

// CycleRoomView advances FULL, WIRE, PLANES. FULL and WIRE show meshes
// without planes; PLANES drops the meshes and shows planes only.
func (c *Context) CycleRoomView() RoomView {
	c.roomView = (c.roomView + 1) % RoomView(len(roomViewNames))
	switch c.roomView {
	case RoomFull, RoomWire:
		wire := c.roomView == RoomWire
		c.Scan.SetShowMeshes(true)
		c.Scan.SetShowPlanes(false)
		c.Scan.SetWireframe(wire)
		if c.model != nil {
			c.model.SetWireframe(wire)
		}
	case RoomPlanes:
		c.Scan.SetShowMeshes(false)
		c.Scan.SetShowPlanes(true)
	}
	c.syncLabels()
	c.status.Infof("Room view: %s", c.roomView)
	return c.roomView
}

// ToggleOcclusion switches the reference model between its own materials and
// a depth-only occluder
func (c *Context) ToggleOcclusion() {
	c.occlusion = !c.occlusion
	c.syncLabels()
	if c.model == nil {
		c.status.Infof("Occlusion: %s (no reference model imported yet)", onOff(c.occlusion))
		return
	}
	c.model.SetOcclusion(c.occlusion)
	c.status.Infof("Occlusion: %s", onOff(c.occlusion))
}

// ResetScan drops every tracked plane and mesh together with everything
// placed, drawn or measured on them
func (c *Context) ResetScan() {
	c.Tools.Reset()
	c.Registry.Clear()
	c.Scan.Reset()
	c.status.Infof("Scan reset: surfaces, objects and marks removed")
}

// SetExportMode picks the room export used by the menu button
func (c *Context) SetExportMode(m export.Mode) { c.exportMode = m }

// ExportMode returns the room export used by the menu button
func (c *Context) ExportMode() export.Mode { return c.exportMode }

// ExportPlan writes the design plan; a .zst suffix compresses it
func (c *Context) ExportPlan(path string) error {
	if err := plan.Save(path, plan.FromScene(c.Registry)); err != nil {
		c.status.Errorf("Export failed: %v", err)
		return err
	}
	c.status.Infof("Exported %s", path)
	return nil
}

// ImportPlan replaces the scene with a design plan. On error the scene is unchanged.
func (c *Context) ImportPlan(path string) error {
	doc, err := plan.Load(path)
	if err == nil {
		err = plan.Apply(doc, c.Registry, c.cfg.Tools.MeasureMinLength)
	}
	if err != nil {
		c.status.Errorf("Import failed: %v", err)
		return err
	}
	c.Tools.Reset()
	c.status.Infof("Imported %d items", len(doc.Items))
	return nil
}

// ExportRoom writes the scanned room, with placed objects, as GLB
func (c *Context) ExportRoom(path string, mode export.Mode) error {
	doc, err := export.Room(c.Scan, mode, c.cfg.Scan.ClassificationThreshold, c.Registry.Objects())
	if errors.Is(err, export.ErrNoGeometry) {
		if mode == export.ModeRaw {
			c.status.Warnf("No raw mesh yet, enable Mesh first")
		} else {
			c.status.Warnf("No planes ready to export, enable Planes and scan the room first")
		}
		return err
	}
	if err != nil {
		c.status.Errorf("Export failed: %v", err)
		return err
	}
	if err := writeGLB(path, doc); err != nil {
		c.status.Errorf("Export failed: %v", err)
		return err
	}
	c.status.Infof("Exported %s", path)
	return nil
}

func writeGLB(path string, doc glb.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := glb.Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportModel loads a reference model off the frame loop. The model is
// installed on the next Tick; the returned channel yields the load result.
func (c *Context) ImportModel(ctx context.Context, path string) <-chan error {
	done := make(chan error, 1)
	renderer := c.renderer
	go func() {
		m, err := refmodel.Load(ctx, path, renderer)
		if err != nil {
			c.Post(Do("import model", func(c *Context) {
				c.status.Errorf("Model import failed: %v", err)
			}))
			done <- err
			return
		}
		c.Post(Do("install model", func(c *Context) { c.SetModel(m) }))
		done <- nil
	}()
	return done
}

// SetModel installs a reference model, carrying over occlusion and room view
func (c *Context) SetModel(m *refmodel.Model) {
	c.model = m
	if m == nil {
		c.Tracker.SetSurface(nil)
		return
	}
	if c.occlusion {
		m.SetOcclusion(true)
	}
	m.SetWireframe(c.roomView == RoomWire)
	c.Tracker.SetSurface(m)
	c.status.Infof("Imported model %s (%d triangles)", m.Path, m.TriangleCount())
}

// ToggleInteraction enables or disables the model as placement surface
func (c *Context) ToggleInteraction() {
	if c.model == nil {
		c.status.Warnf("No reference model imported yet")
		return
	}
	c.model.SetInteraction(!c.model.InteractionEnabled())
	c.status.Infof("Model surface: %s", onOff(c.model.InteractionEnabled()))
}

// CycleModelView advances the reference model through FULL, WIRE and EDGES
func (c *Context) CycleModelView() {
	if c.model == nil {
		c.status.Warnf("No reference model imported yet")
		return
	}
	c.status.Infof("Model view: %s", c.model.CycleView())
}
