package viewer

import (
	"math"

	"github.com/philipparndt/goroom/pkg/geometry"
)

const (
	defaultTilt = 0.5
	minDistance = 0.1
)

// Camera orbits a target point
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	RotationX float64 // Rotation around X axis (vertical)
	RotationY float64 // Rotation around Y axis (horizontal)
}

// NewCamera creates a camera looking down at a bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	c := &Camera{
		Up:        geometry.NewVector3(0, 1, 0),
		FOV:       math.Pi / 4,
		RotationX: defaultTilt,
	}
	c.Frame(bbox)
	return c
}

// Frame centres the camera on a box and backs off far enough to see it.
// An empty box frames a 4 m room around the origin.
func (c *Camera) Frame(bbox geometry.BoundingBox) {
	if bbox.IsEmpty() {
		bbox = geometry.BoundingBox{Min: geometry.NewVector3(-2, 0, -2), Max: geometry.NewVector3(2, 2.5, 2)}
	}
	size := bbox.Size()
	c.Target = bbox.Center()
	c.Distance = math.Max(math.Max(size.X, math.Max(size.Y, size.Z))*2.0, minDistance)
	c.UpdatePosition()
}

// UpdatePosition updates camera position based on rotation angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate rotates the camera by the given angles
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	// Clamp X rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	c.RotationX = geometry.Clamp(c.RotationX, -maxAngle, maxAngle)

	c.UpdatePosition()
}

// Zoom changes the camera distance
func (c *Camera) Zoom(delta float64) {
	c.Distance = math.Max(c.Distance*(1.0+delta), minDistance)
	c.UpdatePosition()
}

func (c *Camera) basis() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project maps a world point to screen coordinates and view depth. Points
// behind the camera report a depth <= 0.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (x, y, depth float64) {
	forward, right, up := c.basis()

	relative := point.Sub(c.Position)
	cx := relative.Dot(right)
	cy := relative.Dot(up)
	depth = relative.Dot(forward)

	z := math.Max(depth, 0.01)
	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	x = (cx/(z*fovScale*aspect))*(width/2) + (width / 2)
	y = (-cy/(z*fovScale))*(height/2) + (height / 2)
	return x, y, depth
}

// Unproject returns the world ray through a screen position
func (c *Camera) Unproject(screenX, screenY, width, height float64) geometry.Ray {
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	forward, right, up := c.basis()
	dir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	return geometry.NewRay(c.Position, dir.Normalize())
}
