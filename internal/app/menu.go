package app

import (
	"context"
	"fmt"

	"github.com/philipparndt/goroom/internal/tools"
)

// Menu button ids
const (
	ButtonCapture = "capture"
	ButtonPlanes  = "planes"
	ButtonMesh    = "mesh"
	ButtonFreeze  = "freeze"
	ButtonExport  = "export"
	ButtonReset   = "reset"
	ButtonView    = "roomView"
	ButtonOcc     = "occ"
	ButtonMode    = "mode"
	ButtonShape   = "shape"
	ButtonColor   = "color"
	ButtonBigger  = "bigger"
	ButtonSmaller = "smaller"
	ButtonDelete  = "delete"
	ButtonClear   = "clear"
)

func (c *Context) buildMenu() {
	c.Menu.AddButton(ButtonCapture, "Capture", func() { _ = c.CaptureRoom(context.Background()) })
	c.Menu.AddToggle(ButtonPlanes, "Planes", false, c.TogglePlanes)
	c.Menu.AddToggle(ButtonMesh, "Mesh", false, c.ToggleMesh)
	c.Menu.AddToggle(ButtonFreeze, "Freeze", false, c.ToggleFreeze)
	c.Menu.AddButton(ButtonExport, "Export", func() { _ = c.ExportRoom(c.exportMode.FileName(), c.exportMode) })
	c.Menu.AddButton(ButtonReset, "Reset", c.ResetScan)
	c.Menu.AddButton(ButtonView, "View", func() { c.CycleRoomView() })
	c.Menu.AddToggle(ButtonOcc, "Occ", false, c.ToggleOcclusion)
	c.Menu.AddButton(ButtonMode, "Mode", c.cycleMode)
	c.Menu.AddButton(ButtonShape, "Shape", func() {
		c.Tools.CycleShape()
		c.syncLabels()
	})
	c.Menu.AddButton(ButtonColor, "Color", func() {
		c.Tools.CycleColor()
		c.syncLabels()
	})
	c.Menu.AddButton(ButtonBigger, "Bigger", func() { c.Tools.ScaleUp() })
	c.Menu.AddButton(ButtonSmaller, "Smaller", func() { c.Tools.ScaleDown() })
	c.Menu.AddButton(ButtonDelete, "Delete", func() { c.Tools.DeleteSelected() })
	c.Menu.AddButton(ButtonClear, "Clear", c.Tools.ClearMarks)
	c.syncLabels()
}

func (c *Context) cycleMode() {
	c.Tools.CycleMode()
	c.syncLabels()
	c.status.Infof("Tool: %s", c.Tools.Mode())
}

// SetMode switches the tool and updates the menu label
func (c *Context) SetMode(m tools.Mode) {
	c.Tools.SetMode(m)
	c.syncLabels()
}

// syncLabels mirrors the current state on the menu
func (c *Context) syncLabels() {
	c.Menu.SetLabel(ButtonPlanes, "Planes:"+onOff(c.Scan.ShowPlanes()))
	c.Menu.SetOn(ButtonPlanes, c.Scan.ShowPlanes())
	c.Menu.SetLabel(ButtonMesh, "Mesh:"+onOff(c.Scan.ShowMeshes()))
	c.Menu.SetOn(ButtonMesh, c.Scan.ShowMeshes())
	c.Menu.SetLabel(ButtonFreeze, "Freeze:"+onOff(c.Scan.Frozen()))
	c.Menu.SetOn(ButtonFreeze, c.Scan.Frozen())
	c.Menu.SetLabel(ButtonOcc, "Occ:"+onOff(c.occlusion))
	c.Menu.SetOn(ButtonOcc, c.occlusion)
	c.Menu.SetLabel(ButtonView, "View:"+c.roomView.String())
	c.Menu.SetLabel(ButtonMode, "Mode:"+c.Tools.Mode().String())
	c.Menu.SetLabel(ButtonShape, "Shape:"+c.Tools.Shape().String())
	c.Menu.SetLabel(ButtonColor, fmt.Sprintf("Color:#%06x", c.Tools.Color()))
}
