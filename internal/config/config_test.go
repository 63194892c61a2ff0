package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goroom.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 250*time.Millisecond, cfg.Input.ReticleFreshness.Duration)
	assert.Equal(t, 30, cfg.Scan.PlaneCap)
	assert.Equal(t, 20, cfg.Scan.MeshCap)
	assert.Equal(t, uint32(0x3b82f6), cfg.Tools.Colors[0])
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
[tools]
measure_debounce = "200ms"
colors = [0xff0000, 0x00ff00]

[scan]
plane_cap = 12
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, cfg.Tools.MeasureDebounce.Duration)
	assert.Equal(t, []uint32{0xff0000, 0x00ff00}, cfg.Tools.Colors)
	assert.Equal(t, 12, cfg.Scan.PlaneCap)
	// untouched keys keep defaults
	assert.Equal(t, 20, cfg.Scan.MeshCap)
	assert.Equal(t, 8*time.Second, cfg.Tools.MeasureAbandon.Duration)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative cap":      "[scan]\nplane_cap = -1\n",
		"bad duration":      "[menu]\ndwell = \"soon\"\n",
		"unknown key":       "[scan]\nplanes = 3\n",
		"inverted scale":    "[tools]\nscale_min = 5.0\nscale_max = 2.0\n",
		"threshold too big": "[scan]\nclassification_threshold = 1.5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := LoadOrDefault(missing, false)
	require.NoError(t, err)
	assert.Equal(t, Default().Scan, cfg.Scan)

	_, err = LoadOrDefault(missing, true)
	assert.Error(t, err)
}
