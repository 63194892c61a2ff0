package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/philipparndt/goroom/pkg/geometry"
)

const (
	defaultAngleX = 0.6
	defaultAngleY = 0.4
	fovy          = 45.0
)

// frameBox points the camera at a box, or at a 4 m room when the box is empty
func (v *Viewer) frameBox(box geometry.BoundingBox) {
	if box.IsEmpty() {
		box = geometry.BoundingBox{Min: geometry.NewVector3(-2, 0, -2), Max: geometry.NewVector3(2, 2.5, 2)}
	}
	center := box.Center()
	size := box.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))

	v.Camera.defaultTarget = toRL(center)
	v.Camera.defaultDist = float32(math.Max(maxDim*2.0, 0.5))
	v.resetCameraView()
}

// resetCameraView resets the camera to the default view
func (v *Viewer) resetCameraView() {
	v.Camera.distance = v.Camera.defaultDist
	v.Camera.angleX = defaultAngleX
	v.Camera.angleY = defaultAngleY
	v.Camera.target = v.Camera.defaultTarget
}

// setCameraTopView looks straight down on the floor plan
func (v *Viewer) setCameraTopView() {
	v.Camera.angleX = math.Pi/2 - 0.01
	v.Camera.angleY = 0
	v.Camera.target = v.Camera.defaultTarget
}

// setCameraFrontView looks along -Z
func (v *Viewer) setCameraFrontView() {
	v.Camera.angleX = 0
	v.Camera.angleY = 0
	v.Camera.target = v.Camera.defaultTarget
}

// setCameraBackView looks along +Z
func (v *Viewer) setCameraBackView() {
	v.Camera.angleX = 0
	v.Camera.angleY = math.Pi
	v.Camera.target = v.Camera.defaultTarget
}

// setCameraLeftView looks along +X
func (v *Viewer) setCameraLeftView() {
	v.Camera.angleX = 0
	v.Camera.angleY = -math.Pi / 2
	v.Camera.target = v.Camera.defaultTarget
}

// setCameraRightView looks along -X
func (v *Viewer) setCameraRightView() {
	v.Camera.angleX = 0
	v.Camera.angleY = math.Pi / 2
	v.Camera.target = v.Camera.defaultTarget
}

// orbitPosition returns the camera position for the orbit angles
func orbitPosition(target rl.Vector3, distance, angleX, angleY float32) rl.Vector3 {
	x := distance * float32(math.Cos(float64(angleX))) * float32(math.Sin(float64(angleY)))
	y := distance * float32(math.Sin(float64(angleX)))
	z := distance * float32(math.Cos(float64(angleX))) * float32(math.Cos(float64(angleY)))
	return rl.Vector3{X: target.X + x, Y: target.Y + y, Z: target.Z + z}
}

// updateCamera updates camera position based on angles
func (v *Viewer) updateCamera() {
	v.Camera.camera.Position = orbitPosition(v.Camera.target, v.Camera.distance, v.Camera.angleX, v.Camera.angleY)
	v.Camera.camera.Target = v.Camera.target
}

// doPan performs camera panning based on mouse delta
func (v *Viewer) doPan(delta rl.Vector2) {
	forward := rl.Vector3Normalize(rl.Vector3Subtract(v.Camera.target, v.Camera.camera.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, v.Camera.camera.Up))
	up := rl.Vector3Normalize(rl.Vector3CrossProduct(right, forward))

	panSpeed := v.Camera.distance * 0.001

	v.Camera.target = rl.Vector3Add(v.Camera.target, rl.Vector3Scale(right, -delta.X*panSpeed))
	v.Camera.target = rl.Vector3Add(v.Camera.target, rl.Vector3Scale(up, delta.Y*panSpeed))
}

// pickRay returns the world ray through a screen position for a perspective camera
func pickRay(cam rl.Camera3D, mouse rl.Vector2, width, height float32) geometry.Ray {
	pos, target, worldUp := fromRL(cam.Position), fromRL(cam.Target), fromRL(cam.Up)
	forward := target.Sub(pos).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)

	ndcX := float64(2*mouse.X/width - 1)
	ndcY := float64(1 - 2*mouse.Y/height)
	tanHalf := math.Tan(float64(cam.Fovy) * math.Pi / 360)
	aspect := float64(width / height)

	dir := forward.Add(right.Mul(ndcX * tanHalf * aspect)).Add(up.Mul(ndcY * tanHalf))
	return geometry.NewRay(pos, dir)
}

func toRL(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func fromRL(v rl.Vector3) geometry.Vector3 {
	return geometry.NewVector3(float64(v.X), float64(v.Y), float64(v.Z))
}
