package raster

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
)

// Persistence raster file names.
const (
	PersistenceFile        = "water_persistence.tif"
	PersistenceDisplayFile = "water_persistence_display.tif"
)

// DisplayAggregation is the spatial aggregation factor of the coarse display
// raster.
const DisplayAggregation = 3

// DisplayEPSG is the web-mercator CRS the display raster is reprojected to.
const DisplayEPSG = 3857

// BuildPersistence counts, per cell, how often water was flagged across the
// whole observation window (bad dates excluded), writes the full-resolution
// occurrence raster, and derives the coarse display version.
func BuildPersistence(cfg *config.Config) error {
	log := zap.L().With(zap.String("stage", "persistence"))

	rasters, err := CroppedRasters(cfg, ExcludedDates(cfg.Repair))
	if err != nil {
		return err
	}
	if len(rasters) == 0 {
		return eris.New("raster: no cropped rasters to accumulate")
	}

	// The first raster supplies the common resampling grid.
	target, err := Load(rasters[0].Path)
	if err != nil {
		return err
	}
	acc := NewGrid(target.W, target.H, target.GT, DefaultNoData)
	acc.SrcPath = target.SrcPath

	scratch := filepath.Join(cfg.Paths.ScratchDir, "resampled.tif")
	if err := os.MkdirAll(cfg.Paths.ScratchDir, 0o755); err != nil {
		return eris.Wrap(err, "raster: create scratch dir")
	}

	for _, r := range rasters {
		g := target
		if r.Path != rasters[0].Path {
			// Nearest-neighbor keeps the categorical flags intact.
			if err := ResampleToGrid(r.Path, scratch, target); err != nil {
				return err
			}
			if g, err = Load(scratch); err != nil {
				return err
			}
		}
		if err := SumFlagInto(acc, g, WaterFlag); err != nil {
			return eris.Wrapf(err, "raster: accumulate %s", r.Path)
		}
	}

	// A cell with zero observed water events is "never flooded": absence,
	// not zero.
	ReclassifyZeroToNoData(acc)

	full := filepath.Join(cfg.Paths.PersistenceDir, PersistenceFile)
	if err := Save(acc, full); err != nil {
		return err
	}

	display := filepath.Join(cfg.Paths.PersistenceDir, PersistenceDisplayFile)
	if err := AggregateForDisplay(full, display, DisplayAggregation, DisplayEPSG); err != nil {
		return err
	}

	log.Info("water persistence rasters written",
		zap.Int("acquisitions", len(rasters)),
		zap.String("full", full),
		zap.String("display", display),
	)
	return nil
}
