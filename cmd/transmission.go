package main

import (
	"github.com/spf13/cobra"
)

var transmissionCmd = &cobra.Command{
	Use:   "transmission",
	Short: "Summarize transmission efficiency per zip and county-wide",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "transmission", stageFn("transmission"))
	},
}

func init() {
	rootCmd.AddCommand(transmissionCmd)
}
