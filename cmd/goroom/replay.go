package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/export"
	"github.com/philipparndt/goroom/internal/host/replay"
	"github.com/philipparndt/goroom/internal/label"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/pkg/openscad"
)

var (
	replayPlanOut string
	replayGLBOut  string
	replayMode    string
	replayModel   string
)

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Run a recorded session script headlessly",
	Long: `Replay a YAML session script: frames with input sources, hit-test results,
detected planes and meshes, input events and control commands. The resulting
layout can be written as a design plan and the scanned room as GLB.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayPlanOut, "plan-out", "", "Write the design plan to this file (.json or .json.zst)")
	replayCmd.Flags().StringVar(&replayGLBOut, "glb-out", "", "Write the scanned room to this GLB file")
	replayCmd.Flags().StringVar(&replayMode, "mode", "planes", "Room export mode: planes or raw")
	replayCmd.Flags().StringVar(&replayModel, "model", "", "Reference model to import before the first frame")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := export.ParseMode(replayMode)
	if err != nil {
		return err
	}
	script, err := replay.LoadFile(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	ctx := cmd.Context()
	c := app.New(app.Options{
		Config:   cfg,
		Status:   status.New(w),
		Logger:   newLogger(),
		Painter:  label.NewButtonPainter(),
		Renderer: openscad.NewRenderer("."),
	})
	c.SetExportMode(mode)

	if replayModel != "" {
		if err := c.Command(ctx, nil, "import-model "+replayModel); err != nil {
			return err
		}
	}

	if _, err := c.Replay(ctx, script); err != nil {
		return err
	}

	fmt.Fprintln(w)
	section(w, "Result:")
	fmt.Fprintf(w, "  Objects: %d\n", len(c.Registry.Objects()))
	fmt.Fprintf(w, "  Strokes: %d\n", len(c.Registry.Strokes()))
	fmt.Fprintf(w, "  Measurements: %d\n", len(c.Registry.Measurements()))
	fmt.Fprintf(w, "  Planes: %d\n", len(c.Scan.Planes()))
	fmt.Fprintf(w, "  Meshes: %d\n", len(c.Scan.Meshes()))

	if replayPlanOut != "" {
		if err := c.ExportPlan(replayPlanOut); err != nil {
			return err
		}
	}
	if replayGLBOut != "" {
		if err := c.ExportRoom(replayGLBOut, mode); err != nil {
			return err
		}
	}
	return nil
}
