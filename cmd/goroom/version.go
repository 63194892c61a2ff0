package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goroom/internal/plan"
	"github.com/philipparndt/goroom/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "goroom %s\n", version.GetFullVersion())
		fmt.Fprintf(cmd.OutOrStdout(), "plan format: %d\n", plan.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
