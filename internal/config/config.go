// Package config holds the tunables of a goroom session and loads them from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is looked up in the working directory when no --config flag is given
const DefaultPath = "goroom.toml"

// Duration is a time.Duration written as a string ("250ms") in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText writes the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// InputConfig tunes the spatial input resolver
type InputConfig struct {
	ReticleFreshness     Duration `toml:"reticle_freshness"`
	FallbackRayDistance  float64  `toml:"fallback_ray_distance"`
	HitTestProfiles      []string `toml:"hit_test_profiles"`
	SelectFallbackRadius float64  `toml:"select_fallback_radius"`
}

// ToolConfig tunes the tool state machine
type ToolConfig struct {
	StrokeMinSpacing float64  `toml:"stroke_min_spacing"`
	StrokeCapacity   int      `toml:"stroke_capacity"`
	MeasureMinLength float64  `toml:"measure_min_length"`
	MeasureDebounce  Duration `toml:"measure_debounce"`
	MeasureAbandon   Duration `toml:"measure_abandon"`
	GizmoSize        float64  `toml:"gizmo_size"`
	GizmoPickRadius  float64  `toml:"gizmo_pick_radius"`
	ScaleMin         float64  `toml:"scale_min"`
	ScaleMax         float64  `toml:"scale_max"`
	ScaleStepUp      float64  `toml:"scale_step_up"`
	ScaleStepDown    float64  `toml:"scale_step_down"`
	Colors           []uint32 `toml:"colors"`
}

// ScanConfig tunes scan ingestion and classification
type ScanConfig struct {
	PlaneCap                int     `toml:"plane_cap"`
	MeshCap                 int     `toml:"mesh_cap"`
	ClassificationThreshold float64 `toml:"classification_threshold"`
}

// MenuConfig tunes the in-scene menu
type MenuConfig struct {
	Dwell Duration `toml:"dwell"`
}

// Config is the complete set of tunables
type Config struct {
	Input InputConfig `toml:"input"`
	Tools ToolConfig  `toml:"tools"`
	Scan  ScanConfig  `toml:"scan"`
	Menu  MenuConfig  `toml:"menu"`
}

// Default returns the built-in tunables
func Default() Config {
	return Config{
		Input: InputConfig{
			ReticleFreshness:     Duration{250 * time.Millisecond},
			FallbackRayDistance:  0.8,
			HitTestProfiles:      []string{"generic-trigger", "oculus-touch-v3"},
			SelectFallbackRadius: 0.12,
		},
		Tools: ToolConfig{
			StrokeMinSpacing: 0.01,
			StrokeCapacity:   4096,
			MeasureMinLength: 0.01,
			MeasureDebounce:  Duration{160 * time.Millisecond},
			MeasureAbandon:   Duration{8 * time.Second},
			GizmoSize:        0.25,
			GizmoPickRadius:  0.035,
			ScaleMin:         0.1,
			ScaleMax:         10,
			ScaleStepUp:      1.15,
			ScaleStepDown:    0.87,
			Colors:           []uint32{0x3b82f6, 0x22c55e, 0xef4444, 0xf59e0b, 0xffffff},
		},
		Scan: ScanConfig{
			PlaneCap:                30,
			MeshCap:                 20,
			ClassificationThreshold: 0.75,
		},
		Menu: MenuConfig{
			Dwell: Duration{120 * time.Millisecond},
		},
	}
}

// Load reads a TOML file on top of the defaults. Keys absent from the file keep their default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise returns the defaults.
// An explicitly requested path that is missing is an error.
func LoadOrDefault(path string, explicit bool) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	return Load(path)
}

// Validate rejects non-positive thresholds and inconsistent ranges
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"input.reticle_freshness", c.Input.ReticleFreshness.Seconds()},
		{"input.fallback_ray_distance", c.Input.FallbackRayDistance},
		{"input.select_fallback_radius", c.Input.SelectFallbackRadius},
		{"tools.stroke_min_spacing", c.Tools.StrokeMinSpacing},
		{"tools.stroke_capacity", float64(c.Tools.StrokeCapacity)},
		{"tools.measure_min_length", c.Tools.MeasureMinLength},
		{"tools.measure_debounce", c.Tools.MeasureDebounce.Seconds()},
		{"tools.measure_abandon", c.Tools.MeasureAbandon.Seconds()},
		{"tools.gizmo_size", c.Tools.GizmoSize},
		{"tools.gizmo_pick_radius", c.Tools.GizmoPickRadius},
		{"tools.scale_min", c.Tools.ScaleMin},
		{"tools.scale_step_up", c.Tools.ScaleStepUp},
		{"tools.scale_step_down", c.Tools.ScaleStepDown},
		{"scan.plane_cap", float64(c.Scan.PlaneCap)},
		{"scan.mesh_cap", float64(c.Scan.MeshCap)},
		{"scan.classification_threshold", c.Scan.ClassificationThreshold},
		{"menu.dwell", c.Menu.Dwell.Seconds()},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}
	if c.Tools.ScaleMax <= c.Tools.ScaleMin {
		return fmt.Errorf("tools.scale_max (%v) must exceed tools.scale_min (%v)", c.Tools.ScaleMax, c.Tools.ScaleMin)
	}
	if c.Scan.ClassificationThreshold >= 1 {
		return fmt.Errorf("scan.classification_threshold must be below 1, got %v", c.Scan.ClassificationThreshold)
	}
	if len(c.Tools.Colors) == 0 {
		return errors.New("tools.colors must not be empty")
	}
	for _, col := range c.Tools.Colors {
		if col > 0xffffff {
			return fmt.Errorf("tools.colors entry %#x is not a packed RGB value", col)
		}
	}
	if len(c.Input.HitTestProfiles) == 0 {
		return errors.New("input.hit_test_profiles must not be empty")
	}
	return nil
}
