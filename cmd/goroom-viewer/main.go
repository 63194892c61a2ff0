package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/internal/viewer"
	"github.com/philipparndt/goroom/version"
)

var (
	configPath string
	verbose    bool
	noWatch    bool
)

var rootCmd = &cobra.Command{
	Use:   "goroom-viewer [plan] [model]",
	Short: "GPU viewer for design plans and reference models",
	Long: `goroom-viewer shows a design plan on top of a reference model (.glb, .stl
or .scad). Placed objects can be selected, resized, recoloured and deleted;
Ctrl+S saves the plan. Both files are reloaded when they change on disk.`,
	Args:          cobra.RangeArgs(1, 2),
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		planFile, modelFile, err := classify(args)
		if err != nil {
			return err
		}
		return viewer.Run(viewer.Options{
			PlanFile:  planFile,
			ModelFile: modelFile,
			Config:    cfg,
			Logger:    status.NewLogger(os.Stderr, verbose),
			Status:    status.New(os.Stdout),
			Watch:     !noWatch,
		})
	},
}

// classify sorts the arguments into plan and model by extension
func classify(args []string) (planFile, modelFile string, err error) {
	for _, arg := range args {
		switch strings.ToLower(filepath.Ext(arg)) {
		case ".glb", ".stl", ".scad":
			if modelFile != "" {
				return "", "", fmt.Errorf("more than one model given: %s and %s", modelFile, arg)
			}
			modelFile = arg
		default:
			if planFile != "" {
				return "", "", fmt.Errorf("more than one plan given: %s and %s", planFile, arg)
			}
			planFile = arg
		}
	}
	return planFile, modelFile, nil
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload files when they change")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
