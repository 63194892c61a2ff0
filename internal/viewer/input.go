package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/pkg/geometry"
)

// clickSlop is how far the mouse may move between press and release for a click
const clickSlop = 5

// pickObject returns the placed object nearest along the ray
func pickObject(objects []app.ObjectView, ray geometry.Ray) (uuid.UUID, bool) {
	best := math.Inf(1)
	var id uuid.UUID
	for _, o := range objects {
		hit, ok := o.Mesh.Raycast(ray)
		if ok && hit.Distance < best {
			best, id = hit.Distance, o.ID
		}
	}
	return id, id != uuid.Nil
}

// command runs a control line and reports failures on the status line
func (v *Viewer) command(line string) {
	if err := v.c.Command(v.ctx, nil, line); err != nil {
		v.c.Status().Errorf("%s: %v", line, err)
	}
}

// handleInput processes keyboard and mouse for one frame
func (v *Viewer) handleInput(snap app.Snapshot) {
	v.handleKeys()
	v.handleMouse(snap)
}

func (v *Viewer) handleKeys() {
	ctrlPressed := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)

	if ctrlPressed {
		if rl.IsKeyPressed(rl.KeyS) {
			v.savePlan()
		}
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyHome):
		v.resetCameraView()
	case rl.IsKeyPressed(rl.KeyT):
		v.setCameraTopView()
	case rl.IsKeyPressed(rl.KeyOne):
		v.setCameraFrontView()
	case rl.IsKeyPressed(rl.KeyTwo):
		v.setCameraBackView()
	case rl.IsKeyPressed(rl.KeyThree):
		v.setCameraLeftView()
	case rl.IsKeyPressed(rl.KeyFour):
		v.setCameraRightView()
	case rl.IsKeyPressed(rl.KeyL):
		v.View.showLabels = !v.View.showLabels
	case rl.IsKeyPressed(rl.KeyG):
		v.View.showGrid = !v.View.showGrid
	case rl.IsKeyPressed(rl.KeyH):
		v.View.showHelp = !v.View.showHelp
	case rl.IsKeyPressed(rl.KeyM):
		v.command("model-view")
	case rl.IsKeyPressed(rl.KeyO):
		v.command("occ")
	case rl.IsKeyPressed(rl.KeyC):
		v.command("color")
	case rl.IsKeyPressed(rl.KeyRightBracket):
		v.command("bigger")
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		v.command("smaller")
	case rl.IsKeyPressed(rl.KeyDelete), rl.IsKeyPressed(rl.KeyBackspace):
		v.command("delete")
	case rl.IsKeyPressed(rl.KeyEscape):
		v.c.Tools.Select(uuid.Nil)
	}
}

func (v *Viewer) handleMouse(snap app.Snapshot) {
	mouse := rl.GetMousePosition()
	width, height := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	ray := pickRay(v.Camera.camera, mouse, width, height)

	if id, ok := pickObject(snap.Objects, ray); ok {
		v.Interaction.hovered = id
	} else {
		v.Interaction.hovered = uuid.Nil
	}

	shiftPressed := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) || rl.IsMouseButtonPressed(rl.MouseMiddleButton) {
		v.Interaction.mouseDownPos = mouse
		v.Interaction.mouseMoved = false
		v.Interaction.isPanning = shiftPressed || rl.IsMouseButtonDown(rl.MouseMiddleButton)
	}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) || rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		if rl.Vector2Distance(mouse, v.Interaction.mouseDownPos) > clickSlop {
			v.Interaction.mouseMoved = true
		}
		delta := rl.GetMouseDelta()
		if v.Interaction.mouseMoved {
			if v.Interaction.isPanning {
				v.doPan(delta)
			} else {
				v.Camera.angleY -= delta.X * 0.01
				v.Camera.angleX += delta.Y * 0.01
				v.Camera.angleX = float32(geometry.Clamp(float64(v.Camera.angleX), -math.Pi/2+0.01, math.Pi/2-0.01))
			}
		}
	}

	if rl.IsMouseButtonReleased(rl.MouseLeftButton) && !v.Interaction.mouseMoved {
		v.c.Tools.Select(v.Interaction.hovered)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.Camera.distance *= 1 - wheel*0.1
		v.Camera.distance = float32(math.Max(float64(v.Camera.distance), 0.05))
	}
}
