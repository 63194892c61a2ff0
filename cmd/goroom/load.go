package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/plan"
	"github.com/philipparndt/goroom/internal/refmodel"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/openscad"
)

var errNotPlan = errors.New("not a design plan")

// isPlan reports whether path names a design plan (.json or .json.zst)
func isPlan(path string) bool {
	p := strings.TrimSuffix(strings.ToLower(path), plan.CompressedSuffix)
	return filepath.Ext(p) == ".json"
}

// loadRegistry reads a plan into a fresh registry
func loadRegistry(path string, cfg config.Config) (plan.Document, *scene.Registry, error) {
	if !isPlan(path) {
		return plan.Document{}, nil, fmt.Errorf("%s: %w", path, errNotPlan)
	}
	doc, err := plan.Load(path)
	if err != nil {
		return plan.Document{}, nil, err
	}
	reg := scene.NewRegistry(cfg.Tools, newLogger())
	if err := plan.Apply(doc, reg, cfg.Tools.MeasureMinLength); err != nil {
		return plan.Document{}, nil, err
	}
	return doc, reg, nil
}

// loadMesh reads a plan's furnishing or a model file as one world-space mesh
func loadMesh(ctx context.Context, path string, cfg config.Config) (geometry.Mesh, error) {
	if isPlan(path) {
		_, reg, err := loadRegistry(path, cfg)
		if err != nil {
			return geometry.Mesh{}, err
		}
		doc, err := export.Furnishing(reg.Objects())
		if err != nil {
			return geometry.Mesh{}, err
		}
		return geometry.MergeMeshes(filepath.Base(path), doc.WorldMeshes()...), nil
	}

	model, err := refmodel.Load(ctx, path, openscad.NewRenderer(filepath.Dir(path)))
	if err != nil {
		return geometry.Mesh{}, err
	}
	meshes := make([]geometry.Mesh, 0, len(model.Parts()))
	for _, p := range model.Parts() {
		meshes = append(meshes, p.Mesh)
	}
	return geometry.MergeMeshes(filepath.Base(path), meshes...), nil
}
