package label

import (
	"image"
	"sync"

	"github.com/philipparndt/goroom/internal/ui3d"
)

// Menu button colours per style
var (
	IdleStyle    = Style{Foreground: Hex(0xe5e7eb), Background: Hex(0x1f2937), Border: Hex(0x374151)}
	HoveredStyle = Style{Foreground: Hex(0xffffff), Background: Hex(0x3b82f6), Border: Hex(0x93c5fd)}
	ActiveStyle  = Style{Foreground: Hex(0x052e16), Background: Hex(0x22c55e), Border: Hex(0x86efac)}
)

// StyleFor maps a menu button style to label colours
func StyleFor(s ui3d.Style) Style {
	switch s {
	case ui3d.StyleHovered:
		return HoveredStyle
	case ui3d.StyleActive:
		return ActiveStyle
	default:
		return IdleStyle
	}
}

// ButtonPainter renders menu button faces. Faces are read by the render
// goroutine, so access is locked.
type ButtonPainter struct {
	mu     sync.Mutex
	faces  map[string]*image.RGBA
	paints int
	cache  *Cache
}

// NewButtonPainter creates a painter with no faces
func NewButtonPainter() *ButtonPainter {
	return &ButtonPainter{faces: make(map[string]*image.RGBA), cache: NewCache()}
}

// Paint implements ui3d.Painter
func (p *ButtonPainter) Paint(b *ui3d.Button, style ui3d.Style) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faces[b.ID] = p.cache.Get(b.Label, StyleFor(style))
	p.paints++
}

// Face returns the last painted face of a button
func (p *ButtonPainter) Face(id string) (*image.RGBA, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.faces[id]
	return img, ok
}

// Paints returns how many times a face was redrawn
func (p *ButtonPainter) Paints() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paints
}
