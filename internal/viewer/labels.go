package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/label"
)

var distanceStyle = label.Style{
	Foreground: label.Hex(app.MeasurementColor),
	Background: color.RGBA{A: 200},
	Border:     label.Hex(app.MeasurementColor),
}

// labelTextures uploads each distinct label text once
type labelTextures struct {
	images   *label.Cache
	textures map[string]rl.Texture2D
}

func newLabelTextures() *labelTextures {
	return &labelTextures{images: label.NewCache(), textures: make(map[string]rl.Texture2D)}
}

func (l *labelTextures) texture(text string) rl.Texture2D {
	if tex, ok := l.textures[text]; ok {
		return tex
	}
	img := rl.NewImageFromImage(l.images.Get(text, distanceStyle))
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	l.textures[text] = tex
	return tex
}

// draw places the label centred above its screen position. Labels behind
// the camera are skipped.
func (l *labelTextures) draw(cam rl.Camera3D, text string, pos rl.Vector3) {
	forward := rl.Vector3Subtract(cam.Target, cam.Position)
	if rl.Vector3DotProduct(forward, rl.Vector3Subtract(pos, cam.Position)) <= 0 {
		return
	}
	screen := rl.GetWorldToScreen(pos, cam)
	tex := l.texture(text)
	rl.DrawTexture(tex, int32(screen.X)-tex.Width/2, int32(screen.Y)-tex.Height, rl.White)
}

// unload frees every texture; labels are uploaded again on next use
func (l *labelTextures) unload() {
	for _, tex := range l.textures {
		rl.UnloadTexture(tex)
	}
	clear(l.textures)
	l.images.Reset()
}
