package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/plan"
	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/geometry"
	"github.com/philipparndt/goroom/pkg/glb"
	"github.com/philipparndt/goroom/pkg/stl"
)

var convertCmd = &cobra.Command{
	Use:   "convert [plan] [output]",
	Short: "Convert a design plan",
	Long: `Rewrite a design plan in the current format (.json, or .json.zst for a
compressed plan), or export its furnishing as .glb or .stl. Older plan
versions are upgraded on the way.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, reg, err := loadRegistry(in, cfg)
	if err != nil {
		return err
	}

	switch {
	case isPlan(out):
		err = plan.Save(out, plan.FromScene(reg))
	case strings.EqualFold(filepath.Ext(out), ".glb"):
		err = writeFurnishing(out, reg.Objects(), func(f *os.File, doc glb.Document) error {
			return glb.Encode(f, doc)
		})
	case strings.EqualFold(filepath.Ext(out), ".stl"):
		err = writeFurnishing(out, reg.Objects(), func(f *os.File, doc glb.Document) error {
			return stl.Write(f, geometry.MergeMeshes("furnishing", doc.WorldMeshes()...))
		})
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(out))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", in, out)
	return nil
}

func writeFurnishing(path string, objects []*scene.PlacedObject, write func(*os.File, glb.Document) error) error {
	doc, err := export.Furnishing(objects)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
