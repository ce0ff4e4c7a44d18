package main

import (
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Convert raw swath imagery to GeoTIFF and delete the originals",
	Long:  "Converts each year's paired binary+header rasters under the imagery root into self-describing GeoTIFFs, then removes the leftover originals. Destructive: reprocessing requires re-fetching the source files.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "normalize", stageFn("normalize"))
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
