package viewer

import (
	"image"
	"image/color"
	"math"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// Background is the clear colour of a rendered frame
var Background = color.RGBA{R: 15, G: 18, B: 25, A: 255}

const (
	nearPlane = 0.01
	// wireBias pulls edges toward the camera so they win against coplanar faces
	wireBias = 1e-3
)

// Render rasterises the scene as seen by the camera. Filled shapes are lit
// by a head light, wireframe shapes are depth tested and polylines are drawn
// on top of everything.
func Render(s Scene, cam *Camera, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = Background.R, Background.G, Background.B, Background.A
	}
	zbuffer := make([]float64, width*height)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	w, h := float64(width), float64(height)
	forward, _, _ := cam.basis()
	for _, sh := range s.Shapes {
		base := RGBA(sh.Color)
		for i := 0; i < sh.Mesh.TriangleCount(); i++ {
			tri := sh.Mesh.Triangle(i)
			x1, y1, z1 := cam.Project(tri.V1, w, h)
			x2, y2, z2 := cam.Project(tri.V2, w, h)
			x3, y3, z3 := cam.Project(tri.V3, w, h)
			if z1 <= nearPlane || z2 <= nearPlane || z3 <= nearPlane {
				continue
			}
			if sh.Wireframe {
				drawLine(img, zbuffer, x1, y1, z1-wireBias, x2, y2, z2-wireBias, base)
				drawLine(img, zbuffer, x2, y2, z2-wireBias, x3, y3, z3-wireBias, base)
				drawLine(img, zbuffer, x3, y3, z3-wireBias, x1, y1, z1-wireBias, base)
				continue
			}
			shade := 0.35 + 0.65*math.Abs(tri.CalculateNormal().Dot(forward))
			fillTriangleWithDepth(img, zbuffer, x1, y1, z1, x2, y2, z2, x3, y3, z3, scale(base, shade))
		}
	}

	for _, l := range s.Lines {
		col := RGBA(l.Color)
		for i := 1; i < len(l.Points); i++ {
			x1, y1, z1 := cam.Project(l.Points[i-1], w, h)
			x2, y2, z2 := cam.Project(l.Points[i], w, h)
			if z1 <= nearPlane || z2 <= nearPlane {
				continue
			}
			drawLine(img, nil, x1, y1, z1, x2, y2, z2, col)
		}
	}
	return img
}

func scale(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(geometry.Clamp(float64(c.R)*f, 0, 255)),
		G: uint8(geometry.Clamp(float64(c.G)*f, 0, 255)),
		B: uint8(geometry.Clamp(float64(c.B)*f, 0, 255)),
		A: c.A,
	}
}

// fillTriangleWithDepth fills a triangle with depth testing
func fillTriangleWithDepth(img *image.RGBA, zbuffer []float64, x1, y1, z1, x2, y2, z2, x3, y3, z3 float64, col color.RGBA) {
	v := [3][3]float64{{x1, y1, z1}, {x2, y2, z2}, {x3, y3, z3}}

	// Sort vertices by Y coordinate (top to bottom)
	if v[0][1] > v[1][1] {
		v[0], v[1] = v[1], v[0]
	}
	if v[1][1] > v[2][1] {
		v[1], v[2] = v[2], v[1]
	}
	if v[0][1] > v[1][1] {
		v[0], v[1] = v[1], v[0]
	}

	bounds := img.Bounds()
	width := bounds.Max.X
	edges := [3][2]int{{0, 2}, {0, 1}, {1, 2}}

	yStart := int(math.Max(0, math.Ceil(v[0][1])))
	yEnd := int(math.Min(float64(bounds.Max.Y-1), v[2][1]))
	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)

		var xs, zs [2]float64
		found := 0
		for _, e := range edges {
			a, b := v[e[0]], v[e[1]]
			if a[1] == b[1] || fy < a[1] || fy > b[1] || found == 2 {
				continue
			}
			t := (fy - a[1]) / (b[1] - a[1])
			xs[found] = a[0] + t*(b[0]-a[0])
			zs[found] = a[2] + t*(b[2]-a[2])
			found++
		}
		if found < 2 {
			continue
		}
		if xs[0] > xs[1] {
			xs[0], xs[1] = xs[1], xs[0]
			zs[0], zs[1] = zs[1], zs[0]
		}

		xFrom := int(math.Max(0, math.Ceil(xs[0])))
		xTo := int(math.Min(float64(bounds.Max.X-1), xs[1]))
		for x := xFrom; x <= xTo; x++ {
			t := 0.0
			if xs[1] != xs[0] {
				t = (float64(x) - xs[0]) / (xs[1] - xs[0])
			}
			z := zs[0] + t*(zs[1]-zs[0])
			idx := y*width + x
			if z < zbuffer[idx] {
				zbuffer[idx] = z
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLine draws a line with Bresenham's algorithm. A nil zbuffer draws
// the line unconditionally.
func drawLine(img *image.RGBA, zbuffer []float64, fx1, fy1, z1, fx2, fy2, z2 float64, col color.RGBA) {
	bounds := img.Bounds()
	x1, y1 := int(math.Round(fx1)), int(math.Round(fy1))
	x2, y2 := int(math.Round(fx2)), int(math.Round(fy2))

	// Lines far outside the frame would make the walk below arbitrarily long
	limit := 4 * (bounds.Dx() + bounds.Dy())
	if abs(x1) > limit || abs(y1) > limit || abs(x2) > limit || abs(y2) > limit {
		return
	}

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steps := max(dx, dy)

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for step := 0; ; step++ {
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			if zbuffer == nil {
				img.SetRGBA(x1, y1, col)
			} else {
				t := 0.0
				if steps > 0 {
					t = float64(step) / float64(steps)
				}
				z := z1 + t*(z2-z1)
				idx := y1*bounds.Max.X + x1
				if z <= zbuffer[idx] {
					zbuffer[idx] = z
					img.SetRGBA(x1, y1, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
