// Package app ties the goroom components into one frame-driven context:
// session lifecycle, the event queue and the per-frame update order.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/input"
	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/internal/scan"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/internal/tools"
	"github.com/philipparndt/goroom/internal/ui3d"
	"github.com/philipparndt/goroom/pkg/geometry"
)

var (
	// ErrNoSession is returned by operations that need a running session
	ErrNoSession = errors.New("no active session")
	// ErrSessionActive is returned when a session is started twice
	ErrSessionActive = errors.New("session already active")
)

// RoomView is how the scanned room is shown
type RoomView int

const (
	RoomFull RoomView = iota
	RoomWire
	RoomPlanes
)

var roomViewNames = [...]string{"FULL", "WIRE", "PLANES"}

// String returns FULL, WIRE or PLANES
func (v RoomView) String() string {
	if v < 0 || int(v) >= len(roomViewNames) {
		return fmt.Sprintf("view(%d)", int(v))
	}
	return roomViewNames[v]
}

// Event is work queued for the frame loop: an input event from the runtime
// or a function posted by another goroutine
type Event struct {
	Name  string
	Input *host.Event
	Do    func(c *Context)
}

// InputEvent wraps a runtime event
func InputEvent(ev host.Event) Event {
	return Event{Name: ev.Kind.String(), Input: &ev}
}

// Do wraps a function to run on the frame loop
func Do(name string, fn func(c *Context)) Event {
	return Event{Name: name, Do: fn}
}

// Options configures a Context
type Options struct {
	Config   config.Config
	Status   *status.Log
	Logger   *slog.Logger
	Painter  ui3d.Painter
	Renderer refmodel.Renderer
}

// Context owns every piece of session state. Apart from Post, its methods
// must only be called from the goroutine that calls Tick.
type Context struct {
	cfg      config.Config
	logger   *slog.Logger
	status   *status.Log
	renderer refmodel.Renderer

	Registry *scene.Registry
	Tracker  *input.Tracker
	Tools    *tools.Machine
	Scan     *scan.Ingestor
	Menu     *ui3d.Menu

	model      *refmodel.Model
	occlusion  bool
	roomView   RoomView
	exportMode export.Mode

	session    host.Session
	hitSources []host.HitTestSource
	hitMode    string
	lastFrame  host.Frame

	mu    sync.Mutex
	queue []Event
}

// New creates a context with no session
func New(opts Options) *Context {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Status == nil {
		opts.Status = status.New(io.Discard)
	}
	cfg := opts.Config
	c := &Context{
		cfg:      cfg,
		logger:   opts.Logger,
		status:   opts.Status,
		renderer: opts.Renderer,
		Registry: scene.NewRegistry(cfg.Tools, opts.Logger),
		Tracker:  input.NewTracker(cfg.Input),
		Scan:     scan.NewIngestor(cfg.Scan, opts.Logger),
		hitMode:  "OFF",
	}
	c.Tools = tools.NewMachine(cfg, c.Registry, c.Tracker, c.Tracker.Roles, opts.Logger)
	c.Menu = ui3d.New(cfg.Menu, c.Tracker.Roles, opts.Painter)
	c.buildMenu()
	return c
}

// Status returns the user-facing log
func (c *Context) Status() *status.Log { return c.status }

// Config returns the tunables the context was created with
func (c *Context) Config() config.Config { return c.cfg }

// Active reports whether a session is running
func (c *Context) Active() bool { return c.session != nil }

// Session returns the running session
func (c *Context) Session() (host.Session, bool) { return c.session, c.session != nil }

// HitTestMode returns TRANSIENT, VIEWER or OFF
func (c *Context) HitTestMode() string { return c.hitMode }

// Model returns the imported reference model
func (c *Context) Model() (*refmodel.Model, bool) { return c.model, c.model != nil }

// Occlusion reports whether the reference model is drawn depth-only
func (c *Context) Occlusion() bool { return c.occlusion }

// RoomView returns the current room view
func (c *Context) RoomView() RoomView { return c.roomView }

// LastFrame returns the most recent frame seen during a session
func (c *Context) LastFrame() host.Frame { return c.lastFrame }

// Post queues an event for the next Tick. It is safe for concurrent use.
func (c *Context) Post(ev Event) {
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()
}

func (c *Context) drain() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.queue
	c.queue = nil
	return events
}

// Tick runs one frame: scan ingestion, input tracking, menu placement and
// hover, queued events, then the tool update. A panic in one step is logged
// and does not stop the others.
func (c *Context) Tick(frame host.Frame) {
	c.Menu.BeginFrame()
	if c.session != nil {
		c.lastFrame = frame
		c.step("scan", func() {
			if failed := c.Scan.Update(frame); failed > 0 {
				c.logger.Debug("surfaces skipped", "count", failed)
			}
		})
		c.step("input", func() { c.Tracker.Update(frame, c.hitSources) })
		c.step("menu", func() { c.updateMenu(frame) })
	}
	for _, ev := range c.drain() {
		c.step(ev.Name, func() { c.handle(ev) })
	}
	if c.session != nil {
		c.step("tools", func() { c.Tools.Tick(frame.Time) })
	}
}

func (c *Context) step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("frame step failed", "step", name, "err", r)
		}
	}()
	fn()
}

func (c *Context) handle(ev Event) {
	if ev.Do != nil {
		ev.Do(c)
		return
	}
	if ev.Input == nil {
		return
	}
	in := *ev.Input
	switch in.Kind {
	case host.EventConnected:
		c.Tracker.Roles.Connect(in.Slot, in.Source)
	case host.EventDisconnected:
		c.Tools.End(in)
		id := in.Source.ID
		if bound, ok := c.Tracker.Roles.Bound(in.Slot); ok {
			id = bound.ID
		}
		c.Menu.Disconnect(id)
		c.Tracker.Roles.Disconnect(in.Slot)
	case host.EventSelectStart:
		if c.Menu.Press(in) {
			return
		}
		c.Tools.Begin(in)
	case host.EventSelectEnd:
		if c.Menu.Release(in) {
			return
		}
		c.Tools.End(in)
	case host.EventSelect:
		if c.Menu.Consumed() {
			return
		}
		c.Tools.Click(in)
	case host.EventSessionEnd:
		if c.session != nil {
			c.cleanup()
		}
	}
}

// updateMenu keeps the panel on the UI hand, or in front of the viewer when
// the UI hand is not tracked, and hit tests the UI-hand ray
func (c *Context) updateMenu(frame host.Frame) {
	if !c.Menu.Visible() {
		return
	}
	if anchor, ok := c.uiAnchor(); ok {
		c.Menu.PlaceOnAnchor(anchor, frame.Viewer)
	} else {
		c.Menu.PlaceInFront(frame.Viewer)
	}
	src, ok := c.Tracker.Roles.UISource()
	var ray geometry.Ray
	if ok {
		ray = c.Tracker.Ray(src)
	}
	c.Menu.UpdateHover(ray, ok, frame.Time)
}

func (c *Context) uiAnchor() (geometry.Pose, bool) {
	if j, ok := c.Tracker.Joints(host.HandLeft); ok && j.Wrist != nil {
		return *j.Wrist, true
	}
	src, ok := c.Tracker.Roles.UISource()
	if !ok {
		return geometry.Pose{}, false
	}
	src = c.Tracker.Source(src)
	if src.Grip != nil {
		return *src.Grip, true
	}
	return src.TargetRay, src.TargetRay.IsValid()
}
