package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/pkg/analysis"
)

var (
	edgesCount     int
	edgesShortest  bool
	edgesMinLength float64
	edgesMaxLength float64
)

var edgesCmd = &cobra.Command{
	Use:   "edges [file]",
	Short: "List the longest or shortest edges of a model or plan",
	Long:  "Find and measure edges of a reference model or of a plan's furnishing, longest first or within a length range.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdges,
}

func init() {
	rootCmd.AddCommand(edgesCmd)

	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "Number of edges to display")
	edgesCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "Show shortest edges")
	edgesCmd.Flags().Float64Var(&edgesMinLength, "min", 0.0, "Minimum edge length filter")
	edgesCmd.Flags().Float64Var(&edgesMaxLength, "max", 0.0, "Maximum edge length filter")
}

func runEdges(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mesh, err := loadMesh(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}
	result := analysis.AnalyzeMesh(mesh)

	var edges []analysis.EdgeInfo
	var title string
	switch {
	case edgesMinLength > 0 || edgesMaxLength > 0:
		maxLength := edgesMaxLength
		if maxLength == 0 {
			maxLength = result.MaxEdgeLength
		}
		edges = analysis.FindEdgesByLength(result, edgesMinLength, maxLength)
		title = fmt.Sprintf("Edges between %s and %s", analysis.FormatMeasurement(edgesMinLength, "m"), analysis.FormatMeasurement(maxLength, "m"))
		if len(edges) > edgesCount {
			edges = edges[:edgesCount]
		}
	case edgesShortest:
		edges = analysis.FindShortestEdges(result, edgesCount)
		title = fmt.Sprintf("%d Shortest Edges", len(edges))
	default:
		edges = analysis.FindLongestEdges(result, edgesCount)
		title = fmt.Sprintf("%d Longest Edges", len(edges))
	}

	w := cmd.OutOrStdout()
	heading(w, title)
	for i, e := range edges {
		fmt.Fprintf(w, "%3d. %s  %s -> %s (triangle %d)\n", i+1,
			analysis.FormatMeasurement(e.Length, "m"),
			analysis.FormatVector(e.Start), analysis.FormatVector(e.End), e.TriangleID)
	}
	return nil
}
