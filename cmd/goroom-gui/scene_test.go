package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
)

func TestPreviewMapsShapesToObjects(t *testing.T) {
	c := app.New(app.Options{Config: config.Default()})
	tr := geometry.IdentityTransform()
	first, err := c.Registry.AddObject(scene.ShapeBox, 0xff0000, tr)
	require.NoError(t, err)
	tr.Position = geometry.NewVector3(1, 0, 0)
	second, err := c.Registry.AddObject(scene.ShapeCircle, 0x00ff00, tr)
	require.NoError(t, err)
	c.Tools.Select(second.ID)

	_, err = c.Registry.AddMeasurement(geometry.Vector3{}, geometry.NewVector3(2, 0, 0))
	require.NoError(t, err)
	stroke := c.Registry.BeginStroke(0xffffff)
	stroke.Append(geometry.NewVector3(0, 1, 0))
	stroke.Append(geometry.NewVector3(0, 1, 0.5))

	p := previewOf(c.Snapshot())

	require.Len(t, p.scene.Shapes, 3, "two objects plus the selection outline")
	assert.False(t, p.scene.Shapes[0].Wireframe)
	assert.True(t, p.scene.Shapes[2].Wireframe)
	assert.Equal(t, uint32(app.SelectionColor), p.scene.Shapes[2].Color)

	id, ok := p.objectAt(0)
	assert.True(t, ok)
	assert.Equal(t, first.ID, id)
	id, ok = p.objectAt(1)
	assert.True(t, ok)
	assert.Equal(t, second.ID, id)
	_, ok = p.objectAt(2)
	assert.False(t, ok, "outlines are not pickable objects")
	_, ok = p.objectAt(9)
	assert.False(t, ok)

	var colors []uint32
	for _, l := range p.scene.Lines {
		colors = append(colors, l.Color)
	}
	assert.Contains(t, colors, uint32(app.MeasurementColor))
	assert.Contains(t, colors, uint32(0xffffff))
	assert.Contains(t, colors, axisColors[0], "the selection gizmo is drawn")
}

func TestPreviewOfEmptyContext(t *testing.T) {
	c := app.New(app.Options{Config: config.Default()})
	p := previewOf(c.Snapshot())
	assert.Empty(t, p.scene.Shapes)
	assert.Empty(t, p.scene.Lines)
	_, ok := p.objectAt(0)
	assert.False(t, ok)
	assert.True(t, p.scene.Bounds().IsEmpty())
}

func TestMenuCommandsCoverEveryButton(t *testing.T) {
	c := app.New(app.Options{Config: config.Default()})
	for _, b := range c.Menu.Buttons() {
		line, ok := menuCommands[b.ID]
		assert.True(t, ok, b.ID)
		assert.NotEmpty(t, line)
	}
}
