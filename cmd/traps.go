package main

import (
	"github.com/spf13/cobra"
)

var trapsCmd = &cobra.Command{
	Use:   "traps",
	Short: "Assign trap clusters to zips and tidy the trap tables",
	Long:  "Spatially joins each trap cluster's centroid to its enclosing zip polygon, applies the configured manual overrides, and tidies the MIR, pooled-sample, and abundance tables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "traps", stageFn("traps"))
	},
}

func init() {
	rootCmd.AddCommand(trapsCmd)
}
