package viewer

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var axisNames = [3]string{"X", "Y", "Z"}

// screenAxis is a world axis as seen by the camera
type screenAxis struct {
	axis  int
	dir   rl.Vector2 // screen direction, y pointing down
	depth float32    // positive when the axis points away from the viewer
}

// projectAxes returns the world axes for the orbit angles, back to front
func projectAxes(angleX, angleY float32) []screenAxis {
	pos := orbitPosition(rl.Vector3{}, 1, angleX, angleY)
	forward := rl.Vector3Normalize(rl.Vector3Negate(pos))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, rl.Vector3{Y: 1}))
	up := rl.Vector3CrossProduct(right, forward)

	units := [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	axes := make([]screenAxis, 0, 3)
	for i, u := range units {
		axes = append(axes, screenAxis{
			axis:  i,
			dir:   rl.Vector2{X: rl.Vector3DotProduct(u, right), Y: -rl.Vector3DotProduct(u, up)},
			depth: rl.Vector3DotProduct(u, forward),
		})
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i].depth > axes[j].depth })
	return axes
}

// drawAxes draws the orientation indicator in the top-right corner
func (v *Viewer) drawAxes() {
	const length = 40
	origin := rl.Vector2{X: float32(rl.GetScreenWidth()) - length - 40, Y: length + 40}

	for _, a := range projectAxes(v.Camera.angleX, v.Camera.angleY) {
		col := axisColors[a.axis]
		if a.depth > 0 {
			col = rl.Fade(col, 0.5)
		}
		end := rl.Vector2Add(origin, rl.Vector2Scale(a.dir, length))
		rl.DrawLineEx(origin, end, 2, col)
		rl.DrawTextEx(v.UI.font, axisNames[a.axis], rl.Vector2{X: end.X + 4*a.dir.X - 4, Y: end.Y + 4*a.dir.Y - 6}, 14, 1, col)
	}
}
