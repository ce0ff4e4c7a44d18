package main

import (
	"github.com/spf13/cobra"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Prepare the study-region boundary layers",
	Long:  "Clips the county to the alluvial basin, clips zip-code polygons to that region, drops sliver polygons, and writes the display-ready GeoJSON layers.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "boundaries", stageFn("boundaries"))
	},
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}
