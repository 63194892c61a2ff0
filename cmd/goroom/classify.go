package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/host/replay"
	"github.com/philipparndt/goroom/internal/scan"
	"github.com/philipparndt/goroom/pkg/analysis"
	"github.com/philipparndt/goroom/pkg/geometry"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [script]",
	Short: "Classify the detected planes of a session script",
	Long:  "Ingest every frame of a session script and print floor, wall and ceiling classes of the planes still tracked at the end.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	script, err := replay.LoadFile(args[0])
	if err != nil {
		return err
	}
	steps, err := script.Steps()
	if err != nil {
		return err
	}

	in := scan.NewIngestor(cfg.Scan, newLogger())
	in.SetShowPlanes(true)
	in.SetShowMeshes(true)
	rejected := 0
	for _, st := range steps {
		rejected += in.Update(st.Frame)
	}

	w := cmd.OutOrStdout()
	heading(w, "Plane Classification")
	totals := make(map[scan.Class]float64)
	for _, p := range in.Planes() {
		class := scan.Classify(p.Normal(), cfg.Scan.ClassificationThreshold)
		area := geometry.PolygonArea3D(p.WorldPolygon())
		totals[class] += area
		fmt.Fprintf(w, "  %-12s %-8s %s  normal %s\n", p.ID, class, analysis.FormatMeasurement(area, "m²"), analysis.FormatVector(p.Normal()))
	}
	fmt.Fprintln(w)
	for _, class := range []scan.Class{scan.ClassFloor, scan.ClassWall, scan.ClassCeiling} {
		fmt.Fprintf(w, "%s: %s\n", class, analysis.FormatMeasurement(totals[class], "m²"))
	}
	fmt.Fprintf(w, "meshes: %d\n", len(in.Meshes()))
	if rejected > 0 {
		fmt.Fprintf(w, "rejected surface updates: %d\n", rejected)
	}
	return nil
}
