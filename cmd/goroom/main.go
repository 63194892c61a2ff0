package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/version"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "goroom",
	Short: "Room scanning and furnishing layout tool",
	Long: `goroom places, measures and sketches furnishing in a scanned room.
It replays recorded AR sessions headlessly, inspects and converts design plans
and exports the scanned room as GLB.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config; the default path may be absent
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.LoadOrDefault(configPath, cmd.Flags().Changed("config"))
}

func newLogger() *slog.Logger {
	return status.NewLogger(os.Stderr, verbose)
}

// heading prints a bold coloured title with an underline, like the
// plain "Title\n=====" blocks but styled when the terminal supports it
func heading(w io.Writer, title string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String(title).Bold().Foreground(out.Color("#3b82f6")))
	underline := make([]byte, len(title))
	for i := range underline {
		underline[i] = '='
	}
	fmt.Fprintln(w, string(underline))
}

// section prints a bold sub heading
func section(w io.Writer, title string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String(title).Bold())
}
