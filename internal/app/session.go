package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/goroom/internal/host"
)

// featureConfigs are tried in order, most capable first
var featureConfigs = []host.Features{
	{
		Required: []string{"local", "hit-test", "dom-overlay"},
		Optional: []string{"local-floor", "bounded-floor", "hand-tracking", "anchors", "plane-detection", "mesh-detection"},
	},
	{
		Required: []string{"local", "hit-test"},
		Optional: []string{"dom-overlay", "local-floor", "bounded-floor", "hand-tracking", "anchors", "plane-detection", "mesh-detection"},
	},
	{
		Required: []string{"local"},
		Optional: []string{"hit-test", "dom-overlay", "hand-tracking", "anchors"},
	},
}

// StartSession probes the runtime, requests the most capable session it
// grants and subscribes to hit testing. A nil system means the device has no
// AR runtime at all.
func (c *Context) StartSession(ctx context.Context, system host.System) error {
	if c.session != nil {
		return ErrSessionActive
	}
	if system == nil {
		c.status.Errorf("Session start failed: no AR runtime available")
		return fmt.Errorf("start session: %w", host.ErrUnsupported)
	}

	mode := host.ModeVR
	if ok, err := system.IsSessionSupported(ctx, host.ModeAR); err != nil {
		c.logger.Debug("AR probe failed", "err", err)
	} else if ok {
		mode = host.ModeAR
	}

	var (
		session host.Session
		errs    []error
	)
	for i, features := range featureConfigs {
		s, err := system.RequestSession(ctx, mode, features)
		if err != nil {
			c.logger.Debug("session configuration rejected", "config", i, "err", err)
			errs = append(errs, err)
			continue
		}
		session = s
		break
	}
	if session == nil {
		err := fmt.Errorf("start %s session: %w", mode, errors.Join(errs...))
		c.status.Errorf("Session start failed: %v", err)
		return err
	}

	c.session = session
	if err := session.RequestReferenceSpace(ctx, host.SpaceLocalFloor); err != nil {
		if err := session.RequestReferenceSpace(ctx, host.SpaceLocal); err != nil {
			c.logger.Warn("no local reference space", "err", err)
		}
	}
	viewerSpace := session.RequestReferenceSpace(ctx, host.SpaceViewer) == nil

	c.hitSources = nil
	for _, profile := range c.cfg.Input.HitTestProfiles {
		src, err := session.RequestHitTestSource(ctx, host.HitTestOptions{Transient: true, Profile: profile})
		if err != nil {
			c.logger.Debug("transient hit test unavailable", "profile", profile, "err", err)
			continue
		}
		c.hitSources = append(c.hitSources, src)
	}
	c.hitMode = "TRANSIENT"
	if len(c.hitSources) == 0 {
		c.hitMode = "OFF"
		if host.HasFeature(session, "hit-test") && viewerSpace {
			if src, err := session.RequestHitTestSource(ctx, host.HitTestOptions{}); err == nil {
				c.hitSources = append(c.hitSources, src)
				c.hitMode = "VIEWER"
			} else {
				c.logger.Debug("viewer hit test unavailable", "err", err)
			}
		}
	}

	c.Menu.Show()
	c.syncLabels()

	enabled := strings.Join(session.EnabledFeatures(), ", ")
	if enabled == "" {
		enabled = "(none)"
	}
	c.status.Infof("Session started: %s\nfeatures: %s\nhit test: %s", mode, enabled, c.hitMode)
	c.logger.Info("session started", "mode", mode, "hit_test", c.hitMode)
	return nil
}

// EndSession ends the running session and releases everything it held
func (c *Context) EndSession() error {
	if c.session == nil {
		return ErrNoSession
	}
	err := c.session.End()
	c.cleanup()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// cleanup releases session-scoped resources. It runs for user-requested and
// runtime-reported session ends alike.
func (c *Context) cleanup() {
	for _, src := range c.hitSources {
		if err := src.Cancel(); err != nil {
			c.logger.Debug("cancel hit test source", "err", err)
		}
	}
	c.hitSources = nil
	c.hitMode = "OFF"
	c.session = nil
	c.lastFrame = host.Frame{}
	c.Tracker.Reset()
	c.Tools.Reset()
	c.Menu.Hide()
	c.status.Infof("Session ended")
}

// CaptureRoom asks the runtime to run its room setup flow
func (c *Context) CaptureRoom(ctx context.Context) error {
	if c.session == nil {
		c.status.Warnf("Start a session first")
		return ErrNoSession
	}
	if err := c.session.InitiateRoomCapture(ctx); err != nil {
		if errors.Is(err, host.ErrUnsupported) {
			c.status.Warnf("Room capture is not available on this runtime")
		} else {
			c.status.Errorf("Room capture failed: %v", err)
		}
		return fmt.Errorf("capture room: %w", err)
	}
	c.status.Infof("Room capture requested, confirm it and then try Planes or Mesh")
	return nil
}
