package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/host"
	"github.com/philipparndt/goroom/internal/host/replay"
	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/internal/tools"
)

// ErrUnknownCommand is returned for command lines no handler accepts
var ErrUnknownCommand = errors.New("unknown command")

// Commands lists the command names accepted by Command
var Commands = []string{
	"start", "end", "capture",
	"planes", "mesh", "freeze", "view", "occ", "reset",
	"mode", "next-mode", "shape", "color", "bigger", "smaller", "delete", "clear",
	"export-mode", "export-room", "export-plan", "import-plan",
	"import-model", "remove-model", "interaction", "model-view",
}

// Command runs one control line such as "mode measure" or "export-plan out.json".
// It must be called from the frame goroutine.
func (c *Context) Command(ctx context.Context, system host.System, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	arg := func() (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s: expected one argument, got %d", name, len(args))
		}
		return args[0], nil
	}

	switch name {
	case "start":
		return c.StartSession(ctx, system)
	case "end":
		return c.EndSession()
	case "capture":
		return c.CaptureRoom(ctx)
	case "planes":
		c.TogglePlanes()
	case "mesh":
		c.ToggleMesh()
	case "freeze":
		c.ToggleFreeze()
	case "view":
		c.CycleRoomView()
	case "occ":
		c.ToggleOcclusion()
	case "reset":
		c.ResetScan()
	case "mode":
		a, err := arg()
		if err != nil {
			return err
		}
		m, err := tools.ParseMode(a)
		if err != nil {
			return err
		}
		c.SetMode(m)
	case "next-mode":
		c.cycleMode()
	case "shape":
		c.Tools.CycleShape()
		c.syncLabels()
	case "color":
		c.Tools.CycleColor()
		c.syncLabels()
	case "bigger":
		c.Tools.ScaleUp()
	case "smaller":
		c.Tools.ScaleDown()
	case "delete":
		c.Tools.DeleteSelected()
	case "clear":
		c.Tools.ClearMarks()
	case "export-mode":
		a, err := arg()
		if err != nil {
			return err
		}
		m, err := export.ParseMode(a)
		if err != nil {
			return err
		}
		c.SetExportMode(m)
	case "export-room":
		path := c.exportMode.FileName()
		if len(args) > 0 {
			path = args[0]
		}
		return c.ExportRoom(path, c.exportMode)
	case "export-plan":
		a, err := arg()
		if err != nil {
			return err
		}
		return c.ExportPlan(a)
	case "import-plan":
		a, err := arg()
		if err != nil {
			return err
		}
		return c.ImportPlan(a)
	case "import-model":
		a, err := arg()
		if err != nil {
			return err
		}
		m, err := refmodel.Load(ctx, a, c.renderer)
		if err != nil {
			c.status.Errorf("Model import failed: %v", err)
			return err
		}
		c.SetModel(m)
	case "remove-model":
		c.SetModel(nil)
	case "interaction":
		c.ToggleInteraction()
	case "model-view":
		c.CycleModelView()
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
	return nil
}

// Player steps a context through a script one frame at a time
type Player struct {
	c      *Context
	system *replay.System
	steps  []replay.Step
	next   int
}

// NewPlayer decodes the script frames
func (c *Context) NewPlayer(script *replay.Script) (*Player, error) {
	steps, err := script.Steps()
	if err != nil {
		return nil, err
	}
	return &Player{c: c, system: replay.NewSystem(script), steps: steps}, nil
}

// System returns the scripted runtime sessions are requested from
func (p *Player) System() *replay.System { return p.system }

// Done reports whether every frame was played
func (p *Player) Done() bool { return p.next >= len(p.steps) }

// Frame returns the index of the next frame
func (p *Player) Frame() int { return p.next }

// Len returns the number of frames
func (p *Player) Len() int { return len(p.steps) }

// Step plays the next frame: its commands first, then its events, then the
// tick. Command failures are reported to the status log and logger; only an
// unknown command is returned.
func (p *Player) Step(ctx context.Context) error {
	if p.Done() {
		return nil
	}
	i, st := p.next, p.steps[p.next]
	p.next++
	for _, line := range st.Commands {
		if err := p.c.Command(ctx, p.system, line); err != nil {
			if errors.Is(err, ErrUnknownCommand) {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			p.c.logger.Debug("command failed", "frame", i, "command", line, "err", err)
		}
	}
	for _, ev := range st.Events {
		p.c.Post(InputEvent(ev))
	}
	p.c.Tick(st.Frame)
	return nil
}

// Replay plays a whole script. Only unknown commands and a cancelled context
// stop it early.
func (c *Context) Replay(ctx context.Context, script *replay.Script) (*replay.System, error) {
	p, err := c.NewPlayer(script)
	if err != nil {
		return nil, err
	}
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return p.system, err
		}
		if err := p.Step(ctx); err != nil {
			return p.system, err
		}
	}
	return p.system, nil
}
