package raster

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
)

// Imagery product prefixes. Within a swath directory every raster is either
// a water indicator or its companion quality-flag file, distinguished by the
// first underscore-delimited filename field.
const (
	WaterPrefix   = "water"
	QualityPrefix = "qa"
)

// ParseAcquisitionDate extracts the acquisition date from an imagery file
// name. The provider's naming convention is stable: underscore-delimited
// fields with the date (year plus day-of-year) at a fixed position. A name
// that does not follow the convention is a fatal parse failure.
func ParseAcquisitionDate(path string, rc config.RasterConfig) (time.Time, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "_")
	if rc.DateField >= len(parts) {
		return time.Time{}, eris.Errorf("raster: %s does not follow the provider naming convention (field %d missing)", base, rc.DateField)
	}

	t, err := time.Parse(rc.DateFormat, parts[rc.DateField])
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "raster: cannot parse date from %s", base)
	}
	return t, nil
}

// DateKey is the canonical yyyy-mm-dd form used for exclusion lists and the
// zonal time series.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// ExcludedDates returns the union of the three cloud-correction date lists.
// Raster-wide stages (persistence, animation) skip these acquisitions
// entirely; their zonal values are repaired instead of re-measured.
func ExcludedDates(rc config.RepairConfig) map[string]bool {
	out := make(map[string]bool)
	for _, list := range [][]string{rc.DropDates, rc.SmallGapDates, rc.LargeGapDates} {
		for _, d := range list {
			out[d] = true
		}
	}
	return out
}
