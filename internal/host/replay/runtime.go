package replay

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/philipparndt/goroom/internal/host"
)

// System is a host.System driven by a script
type System struct {
	script *Script

	mu       sync.Mutex
	sessions []*Session
}

// NewSystem creates a runtime for the script
func NewSystem(script *Script) *System {
	return &System{script: script}
}

// IsSessionSupported reports whether the script lists the mode
func (s *System) IsSessionSupported(_ context.Context, mode host.Mode) (bool, error) {
	return slices.Contains(s.script.Supports, mode), nil
}

// RequestSession fails when a required feature is not offered by the script
func (s *System) RequestSession(ctx context.Context, mode host.Mode, features host.Features) (host.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !slices.Contains(s.script.Supports, mode) {
		return nil, fmt.Errorf("mode %s: %w", mode, host.ErrUnsupported)
	}
	for _, f := range features.Required {
		if !s.script.hasFeature(f) {
			return nil, fmt.Errorf("required feature %q: %w", f, host.ErrUnsupported)
		}
	}
	enabled := append([]string(nil), features.Required...)
	for _, f := range features.Optional {
		if s.script.hasFeature(f) && !slices.Contains(enabled, f) {
			enabled = append(enabled, f)
		}
	}
	session := &Session{script: s.script, mode: mode, enabled: enabled}
	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
	return session, nil
}

// Sessions returns every session handed out so far
func (s *System) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.sessions...)
}

// Session is a scripted immersive session
type Session struct {
	script  *Script
	mode    host.Mode
	enabled []string

	mu           sync.Mutex
	ended        bool
	spaces       []host.ReferenceSpace
	sources      []*HitTestSource
	roomCaptures int
}

// Mode returns the session mode
func (s *Session) Mode() host.Mode {
	return s.mode
}

// EnabledFeatures returns the granted features
func (s *Session) EnabledFeatures() []string {
	return append([]string(nil), s.enabled...)
}

// RequestReferenceSpace succeeds for the spaces listed in the script
func (s *Session) RequestReferenceSpace(_ context.Context, space host.ReferenceSpace) error {
	if !slices.Contains(s.script.Spaces, string(space)) {
		return fmt.Errorf("reference space %s: %w", space, host.ErrUnsupported)
	}
	s.mu.Lock()
	s.spaces = append(s.spaces, space)
	s.mu.Unlock()
	return nil
}

// RequestHitTestSource grants transient sources for scripted profiles and a
// viewer source when hit-test is enabled
func (s *Session) RequestHitTestSource(_ context.Context, opts host.HitTestOptions) (host.HitTestSource, error) {
	if opts.Transient {
		if !slices.Contains(s.script.TransientProfiles, opts.Profile) {
			return nil, fmt.Errorf("transient hit test for %q: %w", opts.Profile, host.ErrUnsupported)
		}
	} else if !slices.Contains(s.enabled, "hit-test") {
		return nil, fmt.Errorf("viewer hit test: %w", host.ErrUnsupported)
	}
	src := &HitTestSource{opts: opts}
	s.mu.Lock()
	s.sources = append(s.sources, src)
	s.mu.Unlock()
	return src, nil
}

// InitiateRoomCapture succeeds only when the script enables room capture
func (s *Session) InitiateRoomCapture(_ context.Context) error {
	if !s.script.RoomCapture {
		return fmt.Errorf("room capture: %w", host.ErrUnsupported)
	}
	s.mu.Lock()
	s.roomCaptures++
	s.mu.Unlock()
	return nil
}

// End marks the session ended
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	return nil
}

// Ended reports whether End was called
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// RoomCaptures returns how often a room capture was requested
func (s *Session) RoomCaptures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCaptures
}

// HitTestSources returns every granted source
func (s *Session) HitTestSources() []*HitTestSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*HitTestSource(nil), s.sources...)
}

// HitTestSource is a scripted hit-test subscription
type HitTestSource struct {
	opts      host.HitTestOptions
	mu        sync.Mutex
	cancelled bool
}

// Options returns the options the source was requested with
func (h *HitTestSource) Options() host.HitTestOptions {
	return h.opts
}

// Cancel stops the subscription
func (h *HitTestSource) Cancel() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
	return nil
}

// Cancelled reports whether Cancel was called
func (h *HitTestSource) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}
