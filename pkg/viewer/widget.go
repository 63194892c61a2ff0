package viewer

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/goroom/pkg/geometry"
)

// View is a fyne widget showing a Scene. Drag orbits, scroll zooms and a tap
// picks the shape under the pointer.
type View struct {
	widget.BaseWidget

	mu      sync.Mutex
	scene   Scene
	camera  *Camera
	framed  bool
	raster  *canvas.Raster
	dragged bool
	onPick  func(index int, hit geometry.MeshHit)
	size    fyne.Size
}

// NewView creates an empty preview
func NewView() *View {
	v := &View{camera: NewCamera(geometry.NewBoundingBox())}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// SetOnPick sets the callback for taps that hit a filled shape
func (v *View) SetOnPick(callback func(index int, hit geometry.MeshHit)) {
	v.mu.Lock()
	v.onPick = callback
	v.mu.Unlock()
}

// SetScene replaces the drawn scene. The camera frames the first non-empty
// scene and keeps its placement afterwards.
func (v *View) SetScene(s Scene) {
	v.mu.Lock()
	v.scene = s
	if !v.framed {
		if b := s.Bounds(); !b.IsEmpty() {
			v.camera.Frame(b)
			v.framed = true
		}
	}
	v.mu.Unlock()
	v.raster.Refresh()
}

// ResetCamera frames the current scene again
func (v *View) ResetCamera() {
	v.mu.Lock()
	v.camera.Frame(v.scene.Bounds())
	v.mu.Unlock()
	v.raster.Refresh()
}

func (v *View) draw(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Render(v.scene, v.camera, w, h)
}

// CreateRenderer creates the renderer for the widget
func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return &viewRenderer{view: v}
}

// Dragged handles mouse drag events for rotation
func (v *View) Dragged(event *fyne.DragEvent) {
	v.mu.Lock()
	v.camera.Rotate(float64(event.Dragged.DY)*0.01, float64(-event.Dragged.DX)*0.01)
	v.dragged = true
	v.mu.Unlock()
	v.raster.Refresh()
}

// DragEnd handles the end of a drag event
func (v *View) DragEnd() {
	v.mu.Lock()
	v.dragged = false
	v.mu.Unlock()
}

// Scrolled handles scroll events for zooming
func (v *View) Scrolled(event *fyne.ScrollEvent) {
	v.mu.Lock()
	v.camera.Zoom(-float64(event.Scrolled.DY) * 0.001)
	v.mu.Unlock()
	v.raster.Refresh()
}

// Tapped picks the shape under the pointer
func (v *View) Tapped(event *fyne.PointEvent) {
	v.mu.Lock()
	if v.dragged || v.size.Width <= 0 || v.size.Height <= 0 {
		v.mu.Unlock()
		return
	}
	ray := v.camera.Unproject(float64(event.Position.X), float64(event.Position.Y), float64(v.size.Width), float64(v.size.Height))
	index, hit, ok := v.scene.Pick(ray)
	callback := v.onPick
	v.mu.Unlock()

	if ok && callback != nil {
		callback(index, hit)
	}
}

type viewRenderer struct {
	view *View
}

func (r *viewRenderer) Layout(size fyne.Size) {
	r.view.mu.Lock()
	r.view.size = size
	r.view.mu.Unlock()
	r.view.raster.Resize(size)
}

func (r *viewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *viewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *viewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *viewRenderer) Destroy() {}
