package main

import (
	"github.com/spf13/cobra"
)

var persistenceCmd = &cobra.Command{
	Use:   "persistence",
	Short: "Build the water persistence raster",
	Long:  "Resamples every valid cropped raster onto a common grid, sums water occurrences per cell across the observation window, and writes the result at full and display resolution.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "persistence", stageFn("persistence"))
	},
}

func init() {
	rootCmd.AddCommand(persistenceCmd)
}
