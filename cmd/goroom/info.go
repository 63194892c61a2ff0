package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/scene"
	"github.com/philipparndt/goroom/pkg/analysis"
	"github.com/philipparndt/goroom/pkg/geometry"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display information about a design plan or model",
	Long: `Show the contents of a design plan (.json, .json.zst): objects per shape,
strokes and measurements, plus the furnishing dimensions. For a model file
(.glb, .stl, .scad) show triangle count, surface area and dimensions.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if isPlan(filename) {
		doc, reg, err := loadRegistry(filename, cfg)
		if err != nil {
			return err
		}
		heading(w, "Design Plan")
		fmt.Fprintf(w, "File: %s\n", filename)
		fmt.Fprintf(w, "Version: %d\n\n", doc.Version)
		printRegistry(w, reg)
	} else {
		heading(w, "Model Information")
		fmt.Fprintf(w, "File: %s\n\n", filename)
	}

	mesh, err := loadMesh(cmd.Context(), filename, cfg)
	if err != nil {
		return err
	}
	if mesh.IsEmpty() {
		return nil
	}
	printMesh(w, analysis.AnalyzeMesh(mesh))
	return nil
}

func printRegistry(w io.Writer, reg *scene.Registry) {
	counts := make(map[string]int)
	for _, o := range reg.Objects() {
		counts[o.Shape.String()]++
	}
	shapes := make([]string, 0, len(counts))
	for s := range counts {
		shapes = append(shapes, s)
	}
	sort.Strings(shapes)

	section(w, "Objects:")
	fmt.Fprintf(w, "  Total: %d\n", len(reg.Objects()))
	for _, s := range shapes {
		fmt.Fprintf(w, "  %s: %d\n", s, counts[s])
	}

	strokes := reg.Strokes()
	points, length := 0, 0.0
	for _, s := range strokes {
		points += s.Len()
		length += s.Length()
	}
	fmt.Fprintln(w)
	section(w, "Strokes:")
	fmt.Fprintf(w, "  Count: %d\n", len(strokes))
	fmt.Fprintf(w, "  Points: %d\n", points)
	fmt.Fprintf(w, "  Length: %s\n", analysis.FormatMeasurement(length, "m"))

	fmt.Fprintln(w)
	section(w, "Measurements:")
	for i, m := range reg.Measurements() {
		fmt.Fprintf(w, "  %d. %s  %s -> %s\n", i+1, m.Label, analysis.FormatVector(m.A), analysis.FormatVector(m.B))
	}
	if len(reg.Measurements()) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	fmt.Fprintln(w)
}

func printMesh(w io.Writer, result *analysis.MeasurementResult) {
	section(w, "Geometry:")
	fmt.Fprintf(w, "  Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(w, "  Edges: %d\n", result.EdgeCount)
	fmt.Fprintf(w, "  Surface Area: %s\n\n", analysis.FormatMeasurement(result.SurfaceArea, "m²"))

	section(w, "Bounding Box:")
	fmt.Fprintf(w, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(w, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(w, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	section(w, "Dimensions:")
	fmt.Fprintf(w, "  Width (X): %s\n", analysis.FormatMeasurement(result.Dimensions.X, "m"))
	fmt.Fprintf(w, "  Height (Y): %s\n", analysis.FormatMeasurement(result.Dimensions.Y, "m"))
	fmt.Fprintf(w, "  Depth (Z): %s\n", analysis.FormatMeasurement(result.Dimensions.Z, "m"))
	fmt.Fprintf(w, "  Floor area: %s\n", analysis.FormatMeasurement(footprint(result.BoundingBox), "m²"))
}

func footprint(b geometry.BoundingBox) float64 {
	size := b.Size()
	return size.X * size.Z
}
