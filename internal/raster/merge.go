package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
)

// Swath directory names under <imagery_root>/<year>/. Row A covers the
// northern part of the study area and is preferred on overlap.
const (
	RowADir = "rowA"
	RowBDir = "rowB"
)

// SwathPair is one acquisition date with imagery present in both swath rows.
type SwathPair struct {
	Date   time.Time
	WaterA string
	QAA    string
	WaterB string
	QAB    string
}

// PairSwaths matches the two swath directories by parsed acquisition date.
// A date present in only one directory is silently excluded; a water raster
// without its companion quality file is a fatal missing artifact.
func PairSwaths(rowA, rowB string, rc config.RasterConfig) ([]SwathPair, error) {
	aWater, aQA, err := indexSwathDir(rowA, rc)
	if err != nil {
		return nil, err
	}
	bWater, bQA, err := indexSwathDir(rowB, rc)
	if err != nil {
		return nil, err
	}

	var pairs []SwathPair
	for key, pathA := range aWater {
		pathB, ok := bWater[key]
		if !ok {
			zap.L().Debug("raster: date only present in row A, skipping", zap.String("date", key))
			continue
		}
		qaA, ok := aQA[key]
		if !ok {
			return nil, eris.Errorf("raster: %s has no quality companion", pathA)
		}
		qaB, ok := bQA[key]
		if !ok {
			return nil, eris.Errorf("raster: %s has no quality companion", pathB)
		}
		date, _ := time.Parse("2006-01-02", key)
		pairs = append(pairs, SwathPair{Date: date, WaterA: pathA, QAA: qaA, WaterB: pathB, QAB: qaB})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Date.Before(pairs[j].Date) })
	return pairs, nil
}

// indexSwathDir maps date key to the water and quality raster paths of one
// swath directory.
func indexSwathDir(dir string, rc config.RasterConfig) (water, qa map[string]string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "raster: read swath dir %s", dir)
	}

	water = make(map[string]string)
	qa = make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !IsNormalized(e.Name()) {
			continue
		}
		date, err := ParseAcquisitionDate(e.Name(), rc)
		if err != nil {
			return nil, nil, err
		}
		key := DateKey(date)
		path := filepath.Join(dir, e.Name())
		switch {
		case strings.HasPrefix(e.Name(), WaterPrefix+"_"):
			water[key] = path
		case strings.HasPrefix(e.Name(), QualityPrefix+"_"):
			qa[key] = path
		}
	}
	return water, qa, nil
}

// MergeYear masks and mosaics every paired acquisition of one year, writing
// the full-extent merged raster and the region-cropped raster.
func MergeYear(cfg *config.Config, year int, regionPath string) (int, error) {
	log := zap.L().With(zap.String("stage", "merge"), zap.Int("year", year))

	yearDir := filepath.Join(cfg.Paths.ImageryRoot, fmt.Sprint(year))
	pairs, err := PairSwaths(filepath.Join(yearDir, RowADir), filepath.Join(yearDir, RowBDir), cfg.Raster)
	if err != nil {
		return 0, err
	}
	if len(pairs) == 0 {
		return 0, eris.Errorf("raster: no paired acquisitions under %s", yearDir)
	}

	for _, p := range pairs {
		merged, err := mergePair(p, cfg.Raster.QualityBadFlag)
		if err != nil {
			return 0, eris.Wrapf(err, "raster: merge %s", DateKey(p.Date))
		}

		name := fmt.Sprintf("%s_%s%s", WaterPrefix, p.Date.Format(cfg.Raster.DateFormat), NormalizedExt)
		mergedPath := filepath.Join(cfg.Paths.MergedDir, fmt.Sprint(year), name)
		if err := Save(merged, mergedPath); err != nil {
			return 0, err
		}

		croppedPath := filepath.Join(cfg.Paths.CroppedDir, fmt.Sprint(year), name)
		if err := CropToCutline(mergedPath, regionPath, croppedPath, merged.NoData); err != nil {
			return 0, err
		}
		log.Debug("merged acquisition", zap.String("date", DateKey(p.Date)))
	}

	log.Info("merged swath imagery", zap.Int("acquisitions", len(pairs)))
	return len(pairs), nil
}

// mergePair masks both swaths with their quality flags and mosaics them,
// row A preferred.
func mergePair(p SwathPair, badFlag float64) (*Grid, error) {
	a, err := Load(p.WaterA)
	if err != nil {
		return nil, err
	}
	qaA, err := Load(p.QAA)
	if err != nil {
		return nil, err
	}
	if err := MaskQuality(a, qaA, badFlag); err != nil {
		return nil, err
	}

	b, err := Load(p.WaterB)
	if err != nil {
		return nil, err
	}
	qaB, err := Load(p.QAB)
	if err != nil {
		return nil, err
	}
	if err := MaskQuality(b, qaB, badFlag); err != nil {
		return nil, err
	}

	return Merge(a, b)
}

// DatedRaster is a raster file tagged with its parsed acquisition date.
type DatedRaster struct {
	Date time.Time
	Path string
}

// CroppedRasters lists the region-cropped rasters of every configured year
// in date order, excluding the given dates.
func CroppedRasters(cfg *config.Config, exclude map[string]bool) ([]DatedRaster, error) {
	var out []DatedRaster
	for _, year := range cfg.Raster.Years {
		dir := filepath.Join(cfg.Paths.CroppedDir, fmt.Sprint(year))
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: read cropped dir %s, run the merge stage first", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !IsNormalized(e.Name()) {
				continue
			}
			date, err := ParseAcquisitionDate(e.Name(), cfg.Raster)
			if err != nil {
				return nil, err
			}
			if exclude[DateKey(date)] {
				continue
			}
			out = append(out, DatedRaster{Date: date, Path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
