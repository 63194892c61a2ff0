// Package label rasterises short texts (button faces, distance labels) into
// RGBA images that renderers upload as textures.
package label

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Padding around the text in pixels
const Padding = 4

// Style is the colour pair of a label
type Style struct {
	Foreground color.Color
	Background color.Color
	Border     color.Color
}

// Hex converts a 0xRRGGBB value to an opaque colour
func Hex(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}

// Face is the font used for every label
var Face font.Face = basicfont.Face7x13

// Measure returns the image size Render produces for text
func Measure(text string) (width, height int) {
	advance := font.MeasureString(Face, text)
	metrics := Face.Metrics()
	return advance.Ceil() + Padding*2, metrics.Height.Ceil() + Padding*2
}

// Render draws text on a filled background, with a one pixel border when
// the style has one
func Render(text string, style Style) *image.RGBA {
	w, h := Measure(text)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if style.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)
	}
	if style.Border != nil {
		border(img, style.Border)
	}

	fg := style.Foreground
	if fg == nil {
		fg = color.White
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: Face,
		Dot:  fixed.Point26_6{X: fixed.I(Padding), Y: fixed.I(Padding) + Face.Metrics().Ascent},
	}
	d.DrawString(text)
	return img
}

func border(img *image.RGBA, c color.Color) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		img.Set(x, b.Min.Y, c)
		img.Set(x, b.Max.Y-1, c)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		img.Set(b.Min.X, y, c)
		img.Set(b.Max.X-1, y, c)
	}
}

// Cache keeps rendered labels by text and style
type Cache struct {
	images map[cacheKey]*image.RGBA
}

type cacheKey struct {
	text  string
	style Style
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{images: make(map[cacheKey]*image.RGBA)}
}

// Get returns the rendered label, rendering it on first use
func (c *Cache) Get(text string, style Style) *image.RGBA {
	key := cacheKey{text, style}
	if img, ok := c.images[key]; ok {
		return img
	}
	img := Render(text, style)
	c.images[key] = img
	return img
}

// Len returns the number of cached images
func (c *Cache) Len() int { return len(c.images) }

// Reset drops every cached image
func (c *Cache) Reset() {
	clear(c.images)
}
