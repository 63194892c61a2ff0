package label

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/ui3d"
)

func TestRenderSizeAndColours(t *testing.T) {
	style := Style{Foreground: color.White, Background: Hex(0x112233), Border: Hex(0xff0000)}
	img := Render("2.00 m", style)
	w, h := Measure("2.00 m")
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())
	assert.Equal(t, 6*7+2*Padding, w, "basic font is 7 px wide")

	assert.Equal(t, Hex(0xff0000), img.RGBAAt(0, 0))
	assert.Equal(t, Hex(0x112233), img.RGBAAt(1, 1))

	lit := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{255, 255, 255, 255}) {
				lit++
			}
		}
	}
	assert.Positive(t, lit, "text pixels drawn")
}

func TestCacheReusesImages(t *testing.T) {
	c := NewCache()
	a := c.Get("Planes:ON", IdleStyle)
	assert.Same(t, a, c.Get("Planes:ON", IdleStyle))
	assert.NotSame(t, a, c.Get("Planes:ON", HoveredStyle))
	assert.Equal(t, 2, c.Len())
	c.Reset()
	assert.Zero(t, c.Len())
}

type allUI struct{}

func (allUI) IsUIHand(host.InputSource) bool { return true }

func TestButtonPainterFollowsMenu(t *testing.T) {
	p := NewButtonPainter()
	menu := ui3d.New(config.Default().Menu, allUI{}, p)
	menu.AddToggle("planes", "Planes:OFF", false, nil)

	idle, ok := p.Face("planes")
	require.True(t, ok)
	assert.Equal(t, IdleStyle.Background, idle.RGBAAt(1, 1))

	menu.SetOn("planes", true)
	menu.SetLabel("planes", "Planes:ON")
	active, _ := p.Face("planes")
	assert.Equal(t, ActiveStyle.Background, active.RGBAAt(1, 1))

	before := p.Paints()
	menu.SetLabel("planes", "Planes:ON")
	assert.Equal(t, before, p.Paints(), "unchanged label is not repainted")
}
