package main

import (
	"github.com/spf13/cobra"
)

var temperatureCmd = &cobra.Command{
	Use:   "temperature",
	Short: "Tidy and classify the per-zip temperature table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "temperature", stageFn("temperature"))
	},
}

func init() {
	rootCmd.AddCommand(temperatureCmd)
}
