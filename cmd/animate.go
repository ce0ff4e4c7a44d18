package main

import (
	"github.com/spf13/cobra"
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Render one water animation video per zip code",
	Long:  "For each zip code, draws a basemap frame per valid acquisition date with the zip boundary and that date's water extent, then encodes the frames into a video. Zips are rendered strictly sequentially because the scratch frame is shared.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "animate", stageFn("animate"))
	},
}

func init() {
	rootCmd.AddCommand(animateCmd)
}
