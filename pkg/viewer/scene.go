// Package viewer draws a room preview with a software rasteriser and wraps
// it in a fyne widget with orbit, zoom and pick.
package viewer

import (
	"image/color"
	"math"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// Shape is a mesh drawn filled or as edges
type Shape struct {
	Mesh      geometry.Mesh
	Color     uint32 // 0xRRGGBB
	Wireframe bool
}

// Polyline is an overlay line strip drawn on top of every shape
type Polyline struct {
	Points []geometry.Vector3
	Color  uint32
}

// Scene is what the preview draws
type Scene struct {
	Shapes []Shape
	Lines  []Polyline
}

// Bounds returns the box around every shape and line
func (s Scene) Bounds() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	for _, sh := range s.Shapes {
		for _, p := range sh.Mesh.Positions {
			b.Extend(p)
		}
	}
	for _, l := range s.Lines {
		for _, p := range l.Points {
			b.Extend(p)
		}
	}
	return b
}

// Pick returns the index of the nearest filled shape hit by the ray
func (s Scene) Pick(ray geometry.Ray) (int, geometry.MeshHit, bool) {
	best, bestHit := -1, geometry.MeshHit{Distance: math.Inf(1)}
	for i, sh := range s.Shapes {
		if sh.Wireframe {
			continue
		}
		if hit, ok := sh.Mesh.Raycast(ray); ok && hit.Distance < bestHit.Distance {
			best, bestHit = i, hit
		}
	}
	return best, bestHit, best >= 0
}

// RGBA unpacks a 0xRRGGBB colour
func RGBA(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}
