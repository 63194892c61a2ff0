package openscad

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveDependencies(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "room.scad"), "use <lib/shelf.scad>\n// include <ignored.scad>\ninclude <./common.scad>\nshelf();\n")
	write(t, filepath.Join(dir, "lib", "shelf.scad"), "include <../common.scad>\nmodule shelf() {}\n")
	write(t, filepath.Join(dir, "common.scad"), "use <room.scad>\n")

	deps, err := NewRenderer(dir).ResolveDependencies("room.scad")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "room.scad"),
		filepath.Join(dir, "lib", "shelf.scad"),
		filepath.Join(dir, "common.scad"),
	}, deps)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := NewRenderer(t.TempDir()).ResolveDependencies("nope.scad")
	assert.Error(t, err)
}

func TestRenderWithoutBinary(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.binary = "openscad-missing-for-test"
	err := r.RenderToSTL(context.Background(), "a.scad", "a.stl")
	assert.ErrorIs(t, err, ErrNotInstalled)
}
