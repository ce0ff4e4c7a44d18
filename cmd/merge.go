package main

import (
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Mask, merge, and crop the swath imagery per acquisition date",
	Long:  "For every date present in both swath rows, masks each swath with its quality flags, mosaics the pair, writes the full-extent merged raster, and writes a copy cropped to the study region.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "merge", stageFn("merge"))
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
