package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/boundary"
	"github.com/kernmvcd/wnv-pipeline/internal/raster"
	"github.com/kernmvcd/wnv-pipeline/internal/render"
	"github.com/kernmvcd/wnv-pipeline/internal/temps"
	"github.com/kernmvcd/wnv-pipeline/internal/transmission"
	"github.com/kernmvcd/wnv-pipeline/internal/traps"
	"github.com/kernmvcd/wnv-pipeline/internal/zonal"
)

type pipelineStage struct {
	name string
	fn   func(ctx context.Context) (string, error)
}

// pipelineStages is the full pipeline in dependency order: boundaries feed
// everything; normalize feeds merge; merge feeds zonal, repair, persistence,
// and animate; the three tidy stages need only the boundary layers.
func pipelineStageList() []pipelineStage {
	return []pipelineStage{
		{"boundaries", func(ctx context.Context) (string, error) {
			if err := boundary.Prepare(cfg); err != nil {
				return "", err
			}
			return "boundary layers written to " + cfg.Paths.BoundaryDir, nil
		}},
		{"normalize", func(ctx context.Context) (string, error) {
			total := 0
			for _, year := range cfg.Raster.Years {
				for _, row := range []string{raster.RowADir, raster.RowBDir} {
					n, err := raster.Normalize(filepath.Join(cfg.Paths.ImageryRoot, fmt.Sprint(year), row))
					if err != nil {
						return "", err
					}
					total += n
				}
			}
			return fmt.Sprintf("%d rasters normalized", total), nil
		}},
		{"merge", func(ctx context.Context) (string, error) {
			regionPath := filepath.Join(cfg.Paths.BoundaryDir, boundary.RegionFile)
			total := 0
			for _, year := range cfg.Raster.Years {
				n, err := raster.MergeYear(cfg, year, regionPath)
				if err != nil {
					return "", err
				}
				total += n
			}
			return fmt.Sprintf("%d acquisitions merged", total), nil
		}},
		{"zonal", func(ctx context.Context) (string, error) {
			n, err := zonal.BuildSeries(cfg)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d observations written", n), nil
		}},
		{"repair", func(ctx context.Context) (string, error) {
			if err := zonal.RepairSeries(cfg); err != nil {
				return "", err
			}
			return "water series repaired", nil
		}},
		{"persistence", func(ctx context.Context) (string, error) {
			if err := raster.BuildPersistence(cfg); err != nil {
				return "", err
			}
			return "persistence rasters written to " + cfg.Paths.PersistenceDir, nil
		}},
		{"animate", func(ctx context.Context) (string, error) {
			if err := render.Animate(ctx, cfg); err != nil {
				return "", err
			}
			return "videos written to " + cfg.Paths.VideoDir, nil
		}},
		{"temperature", func(ctx context.Context) (string, error) {
			n, err := temps.Run(cfg)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d observations classified", n), nil
		}},
		{"traps", func(ctx context.Context) (string, error) {
			if err := traps.Run(cfg); err != nil {
				return "", err
			}
			return "trap tables written to " + cfg.Paths.TablesDir, nil
		}},
		{"transmission", func(ctx context.Context) (string, error) {
			n, err := transmission.Run(cfg)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d records written", n), nil
		}},
	}
}

// stageFn returns the named stage's work function for standalone
// subcommands.
func stageFn(name string) func(ctx context.Context) (string, error) {
	for _, s := range pipelineStageList() {
		if s.name == name {
			return s.fn
		}
	}
	panic("unknown stage " + name)
}

var runSkip []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline in dependency order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, stage := range pipelineStageList() {
			if slices.Contains(runSkip, stage.name) {
				zap.L().Info("stage skipped", zap.String("stage", stage.name))
				continue
			}
			if err := runStage(cmd.Context(), stage.name, stage.fn); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSkip, "skip", nil, "stage names to skip (e.g. animate)")
	rootCmd.AddCommand(runCmd)
}
