// Package transmission summarizes the transmission-efficiency raster per zip
// code and for the whole county.
package transmission

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/boundary"
	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/raster"
	"github.com/kernmvcd/wnv-pipeline/internal/tables"
	"github.com/kernmvcd/wnv-pipeline/internal/vector"
	"github.com/kernmvcd/wnv-pipeline/internal/zonal"
)

// TidyFile is the efficiency summary table.
const TidyFile = "transmission_by_zip.csv"

// CountyLabel tags the whole-county record. It can never collide with a zip
// code, which is always numeric.
const CountyLabel = "countywide"

// Record is the mean transmission efficiency over one zone.
type Record struct {
	Zip        string  `csv:"zipcode"`
	Efficiency float64 `csv:"mean_efficiency"`
	Cells      int     `csv:"n_cells"`
}

// Run computes the county-wide and per-zip mean efficiency and writes the
// summary table. It returns the number of records written.
func Run(cfg *config.Config) (int, error) {
	log := zap.L().With(zap.String("stage", "transmission"))

	g, err := raster.Load(cfg.Paths.EfficiencyRaster)
	if err != nil {
		return 0, err
	}

	zips, err := boundary.LoadZips(cfg)
	if err != nil {
		return 0, err
	}
	if err := vector.Reproject(zips, cfg.Raster.SourceEPSG); err != nil {
		return 0, err
	}

	countyMean, countyCells := zonal.MeanAll(g)
	if countyCells == 0 {
		return 0, eris.Errorf("transmission: %s has no valid cells", cfg.Paths.EfficiencyRaster)
	}

	records := []Record{{Zip: CountyLabel, Efficiency: countyMean, Cells: countyCells}}
	for _, f := range zips.Features {
		mean, n := zonal.MeanInZone(g, vector.ToOrb(f.Geom))
		records = append(records, Record{
			Zip:        boundary.ZipID(f, cfg.Boundary.ZipField),
			Efficiency: mean,
			Cells:      n,
		})
	}

	path := filepath.Join(cfg.Paths.TablesDir, TidyFile)
	if err := tables.WriteCSV(path, records); err != nil {
		return 0, err
	}
	log.Info("transmission summary written",
		zap.Int("zips", len(records)-1),
		zap.Float64("county_mean", countyMean),
		zap.String("path", path),
	)
	return len(records), nil
}
