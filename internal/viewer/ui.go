package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/pkg/analysis"
	"github.com/philipparndt/goroom/version"
)

// selectionInfo is the analysis of the selected object, kept until the
// selection or the registry changes
type selectionInfo struct {
	id       uuid.UUID
	revision uint64
	shape    string
	color    uint32
	result   *analysis.MeasurementResult
}

var helpLines = []string{
	"Controls:",
	"  Drag: Orbit    Shift+Drag / Middle: Pan    Wheel: Zoom",
	"  Click: Select object    Esc: Deselect",
	"  [ ]: Smaller / bigger    C: Colour    Del: Delete",
	"  Home: Reset    T: Top    1-4: Front, back, left, right",
	"  M: Model view    O: Occlusion    L: Labels    G: Grid",
	"  Ctrl+S: Save plan    H: Hide help",
}

// describeSelection analyses the selected object of the snapshot
func describeSelection(snap app.Snapshot, id uuid.UUID) selectionInfo {
	info := selectionInfo{id: id, revision: snap.Revision}
	for _, o := range snap.Objects {
		if o.ID == id {
			info.shape = o.Shape.String()
			info.color = o.Color
			info.result = analysis.AnalyzeMesh(o.Mesh)
			break
		}
	}
	return info
}

// drawHUD draws the overlay in screen space
func (v *Viewer) drawHUD(snap app.Snapshot) {
	y := float32(10)
	lineHeight := float32(20)
	fontSize16 := float32(16)
	fontSize14 := float32(14)
	screenHeight := float32(rl.GetScreenHeight())

	text := func(s string, size float32, col rl.Color) {
		rl.DrawTextEx(v.UI.font, s, rl.Vector2{X: 10, Y: y}, size, 1, col)
		y += lineHeight
	}

	text("Scene:", fontSize16, rl.Yellow)
	text(fmt.Sprintf("  Objects: %d", len(snap.Objects)), fontSize14, rl.White)
	text(fmt.Sprintf("  Strokes: %d", len(snap.Strokes)), fontSize14, rl.White)
	text(fmt.Sprintf("  Measurements: %d", len(snap.Labels)), fontSize14, rl.White)
	if m, ok := v.c.Model(); ok {
		text(fmt.Sprintf("  Model: %s (%d triangles, %s)", m.Path, m.TriangleCount(), m.View()), fontSize14, rl.White)
	}
	y += lineHeight

	selected := v.c.Tools.Selected()
	if selected != v.UI.info.id || snap.Revision != v.UI.info.revision {
		v.UI.info = describeSelection(snap, selected)
	}
	if r := v.UI.info.result; r != nil {
		text("Selection:", fontSize16, rl.Yellow)
		text(fmt.Sprintf("  %s #%06x", v.UI.info.shape, v.UI.info.color), fontSize14, rl.Green)
		text(fmt.Sprintf("  Size: %.2f x %.2f x %.2f m", r.Dimensions.X, r.Dimensions.Y, r.Dimensions.Z), fontSize14, rl.White)
		text(fmt.Sprintf("  Surface Area: %.2f m2", r.SurfaceArea), fontSize14, rl.White)
		text(fmt.Sprintf("  Volume: %.3f m3", r.Volume), fontSize14, rl.White)
		y += lineHeight
	}

	if v.View.showHelp {
		for _, l := range helpLines {
			text(l, fontSize14, rl.LightGray)
		}
	}

	footer := fmt.Sprintf("goroom %s", version.Version)
	if snap.Status != "" {
		footer = snap.Status
	}
	rl.DrawRectangle(0, int32(screenHeight-28), int32(rl.GetScreenWidth()), 28, rl.NewColor(0, 0, 0, 180))
	rl.DrawTextEx(v.UI.font, footer, rl.Vector2{X: 10, Y: screenHeight - 22}, fontSize14, 1, rl.White)
}
