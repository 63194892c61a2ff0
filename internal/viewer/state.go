package viewer

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/pkg/watcher"
)

// CameraState is the orbit camera around the room
type CameraState struct {
	camera        rl.Camera3D
	distance      float32
	angleX        float32
	angleY        float32
	target        rl.Vector3 // orbit centre, moved by panning
	defaultTarget rl.Vector3
	defaultDist   float32
	framed        bool
}

// SceneMeshes holds the GPU copies of the snapshot geometry
type SceneMeshes struct {
	revision uint64
	model    *refmodel.Model
	objects  []gpuMesh
	parts    []gpuMesh
	material rl.Material
}

// ViewSettings are the keyboard toggles
type ViewSettings struct {
	showLabels bool
	showHelp   bool
	showGrid   bool
}

// InteractionState tracks the mouse between press and release
type InteractionState struct {
	mouseDownPos rl.Vector2
	mouseMoved   bool
	isPanning    bool
	hovered      uuid.UUID
}

// FileWatchState is the plan and model on disk
type FileWatchState struct {
	planFile    string
	modelFile   string
	fileWatcher *watcher.FileWatcher
	savedAt     time.Time // last plan save, so our own write does not reload
}

// UIState is what the overlay draws with
type UIState struct {
	font   rl.Font
	labels *labelTextures
	info   selectionInfo
}
