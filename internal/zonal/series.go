package zonal

import (
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/boundary"
	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/raster"
	"github.com/kernmvcd/wnv-pipeline/internal/tables"
	"github.com/kernmvcd/wnv-pipeline/internal/vector"
)

// SeriesFile is the canonical per-zip water table. The repair stage edits it
// in place and the dashboard reads it directly.
const SeriesFile = "water_by_zip.csv"

// M2PerAcre converts planar square meters to acres.
const M2PerAcre = 4046.86

// DateLabelFormat is the human-readable date shown on the dashboard axis.
const DateLabelFormat = "Jan 02, 2006"

// Record is one zonal water observation: flooded extent of a zip polygon on
// an acquisition date.
type Record struct {
	Zip       string  `csv:"zipcode"`
	Date      string  `csv:"date"`
	DateLabel string  `csv:"date_label"`
	Cells     int     `csv:"flooded_cells"`
	Acres     float64 `csv:"flooded_acres"`
}

// AcresFromCells converts a flooded-cell count to acres.
func AcresFromCells(cells int, cellAreaM2 float64) float64 {
	return float64(cells) * cellAreaM2 / M2PerAcre
}

// NewRecord builds an observation from a raw cell count.
func NewRecord(zip string, date time.Time, cells int, cellAreaM2 float64) Record {
	return Record{
		Zip:       zip,
		Date:      raster.DateKey(date),
		DateLabel: date.Format(DateLabelFormat),
		Cells:     cells,
		Acres:     AcresFromCells(cells, cellAreaM2),
	}
}

// BuildSeries counts flooded cells per zip for every cropped acquisition, in
// date order across the configured year batches, and writes the canonical
// water table. It returns the number of observations written.
func BuildSeries(cfg *config.Config) (int, error) {
	log := zap.L().With(zap.String("stage", "zonal"))

	zips, err := boundary.LoadZips(cfg)
	if err != nil {
		return 0, err
	}
	// Zip polygons are persisted in the display CRS; the cell-center test
	// needs them in the imagery CRS.
	if err := vector.Reproject(zips, cfg.Raster.SourceEPSG); err != nil {
		return 0, err
	}

	type zone struct {
		id   string
		poly orb.MultiPolygon
	}
	zones := make([]zone, 0, len(zips.Features))
	for _, f := range zips.Features {
		zones = append(zones, zone{
			id:   boundary.ZipID(f, cfg.Boundary.ZipField),
			poly: vector.ToOrb(f.Geom),
		})
	}

	rasters, err := raster.CroppedRasters(cfg, nil)
	if err != nil {
		return 0, err
	}
	if len(rasters) == 0 {
		return 0, eris.New("zonal: no cropped rasters to aggregate")
	}

	bar := progressbar.Default(int64(len(rasters)), "zonal stats")
	records := make([]Record, 0, len(rasters)*len(zones))
	for _, r := range rasters {
		g, err := raster.Load(r.Path)
		if err != nil {
			return 0, err
		}
		for _, z := range zones {
			n := CountFlag(g, z.poly, raster.WaterFlag)
			records = append(records, NewRecord(z.id, r.Date, n, cfg.Zonal.CellAreaM2))
		}
		_ = bar.Add(1)
	}

	path := filepath.Join(cfg.Paths.TablesDir, SeriesFile)
	if err := tables.WriteCSV(path, records); err != nil {
		return 0, err
	}
	log.Info("zonal series written",
		zap.Int("acquisitions", len(rasters)),
		zap.Int("zips", len(zones)),
		zap.String("path", path),
	)
	return len(records), nil
}
