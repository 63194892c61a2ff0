package geometry

import "math"

// Box creates an axis-aligned box centred on the origin
func Box(width, height, depth float64) Mesh {
	hw, hh, hd := width/2, height/2, depth/2
	return Mesh{
		Name: "box",
		Positions: []Vector3{
			{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {-hw, hh, -hd},
			{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd},
		},
		Indices: []uint32{
			4, 5, 6, 4, 6, 7, // +Z
			0, 2, 1, 0, 3, 2, // -Z
			1, 2, 6, 1, 6, 5, // +X
			0, 4, 7, 0, 7, 3, // -X
			3, 7, 6, 3, 6, 2, // +Y
			0, 1, 5, 0, 5, 4, // -Y
		},
	}
}

// Sphere creates a UV sphere centred on the origin
func Sphere(radius float64, widthSegments, heightSegments int) Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	m := Mesh{Name: "sphere"}

	grid := make([][]uint32, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		grid[iy] = make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi
			theta := v * math.Pi
			grid[iy][ix] = uint32(len(m.Positions))
			m.Positions = append(m.Positions, Vector3{
				X: -radius * math.Cos(phi) * math.Sin(theta),
				Y: radius * math.Cos(theta),
				Z: radius * math.Sin(phi) * math.Sin(theta),
			})
		}
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m
}

// Cylinder creates a capped cylinder along Y; a zero top radius yields a cone
func Cylinder(radiusTop, radiusBottom, height float64, radialSegments int) Mesh {
	radialSegments = max(radialSegments, 3)
	m := Mesh{Name: "cylinder"}
	half := height / 2

	var rows [2][]uint32
	for y := 0; y < 2; y++ {
		radius := radiusTop + float64(y)*(radiusBottom-radiusTop)
		rows[y] = make([]uint32, radialSegments+1)
		for x := 0; x <= radialSegments; x++ {
			theta := float64(x) / float64(radialSegments) * 2 * math.Pi
			rows[y][x] = uint32(len(m.Positions))
			m.Positions = append(m.Positions, Vector3{
				X: radius * math.Sin(theta),
				Y: half - float64(y)*height,
				Z: radius * math.Cos(theta),
			})
		}
	}
	for x := 0; x < radialSegments; x++ {
		a, b := rows[0][x], rows[1][x]
		c, d := rows[1][x+1], rows[0][x+1]
		if radiusTop > 0 {
			m.Indices = append(m.Indices, a, b, d)
		}
		if radiusBottom > 0 {
			m.Indices = append(m.Indices, b, c, d)
		}
	}

	// Caps
	if radiusTop > 0 {
		center := uint32(len(m.Positions))
		m.Positions = append(m.Positions, Vector3{Y: half})
		for x := 0; x < radialSegments; x++ {
			m.Indices = append(m.Indices, center, rows[0][x], rows[0][x+1])
		}
	}
	if radiusBottom > 0 {
		center := uint32(len(m.Positions))
		m.Positions = append(m.Positions, Vector3{Y: -half})
		for x := 0; x < radialSegments; x++ {
			m.Indices = append(m.Indices, center, rows[1][x+1], rows[1][x])
		}
	}
	return m
}
