package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/host/replay"
	"github.com/philipparndt/goroom/internal/label"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/viewer"
)

const frameInterval = time.Second / 15

// menuCommands maps in-scene menu buttons to control commands
var menuCommands = map[string]string{
	app.ButtonCapture: "capture",
	app.ButtonPlanes:  "planes",
	app.ButtonMesh:    "mesh",
	app.ButtonFreeze:  "freeze",
	app.ButtonExport:  "export-room",
	app.ButtonReset:   "reset",
	app.ButtonView:    "view",
	app.ButtonOcc:     "occ",
	app.ButtonMode:    "next-mode",
	app.ButtonShape:   "shape",
	app.ButtonColor:   "color",
	app.ButtonBigger:  "bigger",
	app.ButtonSmaller: "smaller",
	app.ButtonDelete:  "delete",
	app.ButtonClear:   "clear",
}

// menuLabel is a menu button as the frame loop last saw it
type menuLabel struct {
	ID, Label string
}

// GUI is the desktop control panel. Fields below the frame loop marker are
// only touched from the goroutine running run; the rest from the fyne thread.
type GUI struct {
	c       *app.Context
	painter *label.ButtonPainter
	window  fyne.Window

	view       *viewer.View
	current    preview
	hud        *widget.Label
	statusList *widget.List
	entries    []status.Entry
	buttons    map[string]*widget.Button
	faces      map[string]*canvas.Image
	order      []string
	paints     int

	// frame loop
	ctx       context.Context
	player    *app.Player
	playing   bool
	stepOnce  bool
	frameTime time.Time
}

func newGUI(c *app.Context, painter *label.ButtonPainter, script *replay.Script, w fyne.Window) (*GUI, error) {
	g := &GUI{
		c:       c,
		painter: painter,
		window:  w,
		view:    viewer.NewView(),
		hud:     widget.NewLabel(""),
		buttons: make(map[string]*widget.Button),
		faces:   make(map[string]*canvas.Image),
		entries: c.Status().Entries(),
	}
	if script != nil {
		p, err := c.NewPlayer(script)
		if err != nil {
			return nil, err
		}
		g.player = p
	}

	g.statusList = widget.NewList(
		func() int { return len(g.entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(g.entries[len(g.entries)-1-i].String())
		},
	)
	c.Status().Subscribe(func(e status.Entry) {
		fyne.Do(func() {
			g.entries = append(g.entries, e)
			g.statusList.Refresh()
		})
	})

	g.view.SetOnPick(func(index int, hit geometry.MeshHit) {
		id, ok := g.current.objectAt(index)
		if !ok {
			return
		}
		g.post("select", func(c *app.Context) {
			c.Tools.Select(id)
			c.Status().Infof("Selected %s", id.String()[:8])
		})
	})

	for _, b := range c.Menu.Buttons() {
		id, line := b.ID, menuCommands[b.ID]
		g.order = append(g.order, id)
		g.buttons[id] = widget.NewButton(b.Label, func() { g.command(line) })
		img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(120, 28))
		g.faces[id] = img
	}
	return g, nil
}

// post queues work for the frame loop
func (g *GUI) post(name string, fn func(c *app.Context)) {
	g.c.Post(app.Do(name, fn))
}

// command queues a control line for the frame loop
func (g *GUI) command(line string) {
	g.post(line, func(c *app.Context) {
		var system host.System
		if g.player != nil {
			system = g.player.System()
		}
		if err := c.Command(g.ctx, system, line); err != nil {
			c.Status().Errorf("%s: %v", line, err)
		}
	})
}

func (g *GUI) content() fyne.CanvasObject {
	session := container.NewGridWithColumns(2,
		widget.NewButton("Start", func() { g.command("start") }),
		widget.NewButton("End", func() { g.command("end") }),
		widget.NewButton("Play / Pause", func() {
			g.post("play", func(*app.Context) { g.playing = !g.playing })
		}),
		widget.NewButton("Step", func() {
			g.post("step", func(*app.Context) { g.playing, g.stepOnce = false, true })
		}),
	)

	controls := container.NewGridWithColumns(2)
	for _, id := range g.order {
		controls.Add(g.buttons[id])
	}

	exportMode := widget.NewRadioGroup([]string{"planes", "raw"}, func(s string) {
		if s != "" {
			g.command("export-mode " + s)
		}
	})
	exportMode.Horizontal = true
	exportMode.SetSelected("planes")

	files := container.NewGridWithColumns(2,
		widget.NewButton("Export plan", g.exportPlan),
		widget.NewButton("Import plan", g.importPlan),
		widget.NewButton("Export room", g.exportRoom),
		widget.NewButton("Import model", g.importModel),
		widget.NewButton("Remove model", func() { g.command("remove-model") }),
		widget.NewButton("Interaction", func() { g.command("interaction") }),
		widget.NewButton("Model view", func() { g.command("model-view") }),
		widget.NewButton("Reset camera", g.view.ResetCamera),
	)

	faces := container.NewGridWithColumns(2)
	for _, id := range g.order {
		faces.Add(g.faces[id])
	}

	panel := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		g.hud,
		session,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Controls", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		controls,
		widget.NewSeparator(),
		widget.NewLabel("Room export:"),
		exportMode,
		files,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("In-scene menu", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		faces,
	)
	side := container.NewVScroll(panel)
	side.SetMinSize(fyne.NewSize(320, 0))

	statusScroll := container.NewStack(g.statusList)
	bottom := container.NewGridWrap(fyne.NewSize(1200, 140), statusScroll)

	return container.NewBorder(nil, bottom, nil, side, g.view)
}

func (g *GUI) exportPlan() {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		g.post("export plan", func(c *app.Context) { _ = c.ExportPlan(path) })
	}, g.window)
}

func (g *GUI) importPlan() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		g.post("import plan", func(c *app.Context) { _ = c.ImportPlan(path) })
	}, g.window)
}

func (g *GUI) exportRoom() {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		g.post("export room", func(c *app.Context) { _ = c.ExportRoom(path, c.ExportMode()) })
	}, g.window)
}

func (g *GUI) importModel() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		g.post("import model", func(c *app.Context) { c.ImportModel(g.ctx, path) })
	}, g.window)
}

// run is the frame loop. It owns the context: every Tick happens here.
func (g *GUI) run(ctx context.Context) {
	g.ctx = ctx
	g.frameTime = time.Now()
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.frame()
		}
	}
}

func (g *GUI) frame() {
	if (g.playing || g.stepOnce) && g.player != nil && !g.player.Done() {
		g.stepOnce = false
		g.stepScript()
	} else {
		// Repeat the last runtime frame so tracked surfaces and sources stay put
		f := host.Frame{}
		if g.c.Active() {
			f = g.c.LastFrame()
		}
		g.frameTime = g.frameTime.Add(frameInterval)
		if f.Time.After(g.frameTime) {
			g.frameTime = f.Time
		}
		f.Time = g.frameTime
		g.c.Tick(f)
	}

	snap := g.c.Snapshot()
	var labels []menuLabel
	for _, b := range g.c.Menu.Buttons() {
		labels = append(labels, menuLabel{ID: b.ID, Label: b.Label})
	}
	hud := g.hudText()
	fyne.Do(func() { g.apply(snap, labels, hud) })
}

func (g *GUI) stepScript() {
	if g.player == nil || g.player.Done() {
		return
	}
	if err := g.player.Step(g.ctx); err != nil {
		g.c.Status().Errorf("Replay stopped: %v", err)
		g.playing = false
	}
	g.frameTime = g.c.LastFrame().Time
}

func (g *GUI) hudText() string {
	session := "OFF"
	if g.c.Active() {
		session = "ON"
	}
	text := fmt.Sprintf("Session: %s  Hit-test: %s  Mode: %s  Room: %s",
		session, g.c.HitTestMode(), g.c.Tools.Mode(), g.c.RoomView())
	if g.player != nil {
		text += fmt.Sprintf("\nScript frame %d/%d", g.player.Frame(), g.player.Len())
		if g.playing {
			text += " (playing)"
		}
	}
	return text
}

// apply runs on the fyne thread
func (g *GUI) apply(snap app.Snapshot, labels []menuLabel, hud string) {
	g.current = previewOf(snap)
	g.view.SetScene(g.current.scene)
	g.hud.SetText(hud)

	for _, l := range labels {
		if b, ok := g.buttons[l.ID]; ok && b.Text != l.Label {
			b.SetText(l.Label)
		}
	}
	if paints := g.painter.Paints(); paints != g.paints {
		g.paints = paints
		for id, img := range g.faces {
			if face, ok := g.painter.Face(id); ok {
				img.Image = face
				img.Refresh()
			}
		}
	}
}
