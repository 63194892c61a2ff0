// Package viewer is the GPU desktop viewer: it shows a saved design plan on
// top of a reference model, lets the placed objects be edited with mouse and
// keyboard and reloads both files when they change on disk.
package viewer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/pkg/openscad"
	"github.com/philipparndt/goroom/pkg/watcher"
)

const (
	screenWidth  = 1400
	screenHeight = 900

	watchDebounce = 300 * time.Millisecond
	// saveGrace ignores change events caused by our own plan save
	saveGrace = time.Second
)

// Options configures the viewer
type Options struct {
	PlanFile  string // design plan shown and saved back, may be empty
	ModelFile string // reference model (.glb, .stl or .scad), may be empty
	Config    config.Config
	Logger    *slog.Logger
	Status    *status.Log
	Watch     bool
}

// Viewer is the state of one viewer window. It runs on a single goroutine,
// which also ticks the context.
type Viewer struct {
	c        *app.Context
	ctx      context.Context
	renderer *openscad.Renderer
	logger   *slog.Logger

	Camera      CameraState
	Meshes      SceneMeshes
	View        ViewSettings
	Interaction InteractionState
	FileWatch   FileWatchState
	UI          UIState
}

func newViewer(ctx context.Context, opts Options) *Viewer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	renderer := openscad.NewRenderer(".")
	c := app.New(app.Options{
		Config:   opts.Config,
		Status:   opts.Status,
		Logger:   opts.Logger,
		Renderer: renderer,
	})
	return &Viewer{
		c:        c,
		ctx:      ctx,
		renderer: renderer,
		logger:   opts.Logger,
		View:     ViewSettings{showLabels: true, showGrid: true},
		FileWatch: FileWatchState{
			planFile:  opts.PlanFile,
			modelFile: opts.ModelFile,
		},
	}
}

// Run opens the window and blocks until it is closed
func Run(opts Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := newViewer(ctx, opts)
	if err := v.load(); err != nil {
		return err
	}

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(screenWidth, screenHeight, v.title())
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	v.Meshes.material = rl.LoadMaterialDefault()
	v.UI.font = rl.GetFontDefault()
	v.UI.labels = newLabelTextures()
	defer v.unload()

	v.Camera.camera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	}
	bounds := v.c.Snapshot().Bounds()
	v.frameBox(bounds)
	v.Camera.framed = !bounds.IsEmpty()

	if opts.Watch {
		if err := v.startWatching(); err != nil {
			v.c.Status().Warnf("File watching disabled: %v", err)
		} else {
			defer v.FileWatch.fileWatcher.Close()
		}
	}

	for !rl.WindowShouldClose() {
		v.c.Tick(host.Frame{Time: time.Now()})
		snap := v.c.Snapshot()
		v.syncMeshes(snap)

		v.handleInput(snap)
		v.updateCamera()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(15, 18, 25, 255))

		rl.BeginMode3D(v.Camera.camera)
		v.drawScene(snap)
		rl.EndMode3D()

		if v.View.showLabels {
			for _, l := range snap.Labels {
				v.UI.labels.draw(v.Camera.camera, l.Text, toRL(l.Position))
			}
		}
		v.drawHUD(snap)
		v.drawAxes()

		rl.EndDrawing()
	}
	return nil
}

func (v *Viewer) title() string {
	names := []string{"goroom"}
	for _, f := range []string{v.FileWatch.planFile, v.FileWatch.modelFile} {
		if f != "" {
			names = append(names, filepath.Base(f))
		}
	}
	return strings.Join(names, " - ")
}

// load reads the plan and the model synchronously before the window opens
func (v *Viewer) load() error {
	if f := v.FileWatch.modelFile; f != "" {
		if err := v.c.Command(v.ctx, nil, "import-model "+f); err != nil {
			return err
		}
	}
	if f := v.FileWatch.planFile; f != "" {
		// A plan that does not exist yet is created on first save
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			v.c.Status().Infof("%s does not exist yet, it is created on save", f)
			return nil
		}
		if err := v.c.ImportPlan(f); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) unload() {
	unloadAll(v.Meshes.objects)
	unloadAll(v.Meshes.parts)
	v.Meshes.objects, v.Meshes.parts = nil, nil
	v.UI.labels.unload()
}

// savePlan writes the plan back to the file it was loaded from
func (v *Viewer) savePlan() {
	if v.FileWatch.planFile == "" {
		v.c.Status().Warnf("No plan file given, nothing to save to")
		return
	}
	if err := v.c.ExportPlan(v.FileWatch.planFile); err == nil {
		v.FileWatch.savedAt = time.Now()
	}
}

// watchFiles lists the files whose change triggers a reload: the plan, the
// model and for OpenSCAD models every included source
func (v *Viewer) watchFiles() (plan, model []string, err error) {
	if f := v.FileWatch.planFile; f != "" {
		plan = []string{f}
	}
	if f := v.FileWatch.modelFile; f != "" {
		model = []string{f}
		if strings.EqualFold(filepath.Ext(f), ".scad") {
			model, err = v.renderer.ResolveDependencies(f)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return plan, model, nil
}

func (v *Viewer) startWatching() error {
	plan, model, err := v.watchFiles()
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(watchDebounce, v.logger)
	if err != nil {
		return err
	}
	if err := fw.Watch(plan, v.onPlanChanged); err != nil {
		fw.Close()
		return err
	}
	if err := fw.Watch(model, v.onModelChanged); err != nil {
		fw.Close()
		return err
	}
	fw.Start(v.ctx)
	v.FileWatch.fileWatcher = fw
	return nil
}

// onPlanChanged runs on the watcher goroutine
func (v *Viewer) onPlanChanged(string) {
	v.c.Post(app.Do("reload plan", func(c *app.Context) {
		if time.Since(v.FileWatch.savedAt) < saveGrace {
			return
		}
		_ = c.ImportPlan(v.FileWatch.planFile)
	}))
}

// onModelChanged runs on the watcher goroutine
func (v *Viewer) onModelChanged(changed string) {
	v.c.Post(app.Do("reload model", func(c *app.Context) {
		c.Status().Infof("%s changed, reloading model", filepath.Base(changed))
		c.ImportModel(v.ctx, v.FileWatch.modelFile)
	}))
}
