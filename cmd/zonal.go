package main

import (
	"github.com/spf13/cobra"
)

var zonalCmd = &cobra.Command{
	Use:   "zonal",
	Short: "Aggregate flooded pixels per zip and date into the water table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "zonal", stageFn("zonal"))
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Apply the cloud-correction policy to the water table",
	Long:  "Drops, averages, or interpolates the configured cloud-contaminated dates in each zip's water series, overwriting the canonical table in place.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "repair", stageFn("repair"))
	},
}

func init() {
	rootCmd.AddCommand(zonalCmd)
	rootCmd.AddCommand(repairCmd)
}
