package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kernmvcd/wnv-pipeline/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline stage runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stage, _ := cmd.Flags().GetString("stage")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, stage, limit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No stage runs recorded.")
			return nil
		}

		formatStageRuns(os.Stdout, runs)
		return nil
	},
}

func formatStageRuns(w io.Writer, runs []store.StageRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATUS\tSTARTED\tDURATION\tDETAIL")
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Stage,
			r.Status,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			r.Detail,
		)
	}
	tw.Flush()
}

func init() {
	statusCmd.Flags().String("stage", "", "filter by stage name")
	statusCmd.Flags().Int("limit", 20, "max number of runs to display")
	rootCmd.AddCommand(statusCmd)
}
