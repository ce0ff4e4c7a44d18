// Package temps tidies the externally produced per-zip daily temperature
// table and classifies each observation against the thermal-suitability
// breakpoints for vector transmission.
package temps

import (
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/tables"
)

// TidyFile is the tidied temperature table.
const TidyFile = "temperature_by_zip.csv"

// Thermal-suitability categories.
const (
	CategoryOptimal  = "optimal"
	CategoryInRange  = "in range"
	CategoryOutRange = "out range"
)

// Thermal breakpoints in °C. The optimal band is inclusive on both ends; the
// in-range band surrounds it, closed at its outer ends.
const (
	inRangeMinC = 12.1
	optimalMinC = 22.9
	optimalMaxC = 27.1
	inRangeMaxC = 31.9
)

// rawRecord is one row of the upstream export. The image identifier embeds
// the acquisition date as its first eight digits.
type rawRecord struct {
	ImageID string  `csv:"system:index"`
	Zip     string  `csv:"zipcode"`
	MeanC   float64 `csv:"mean"`
}

// Record is one tidied temperature observation.
type Record struct {
	Zip      string  `csv:"zipcode"`
	Date     string  `csv:"date"`
	MeanC    float64 `csv:"mean_c"`
	MeanF    float64 `csv:"mean_f"`
	Category string  `csv:"category"`
}

// ParseImageDate extracts the acquisition date from the leading yyyymmdd
// digits of an image identifier.
func ParseImageDate(imageID string) (time.Time, error) {
	if len(imageID) < 8 {
		return time.Time{}, eris.Errorf("temps: image id %q too short to carry a date", imageID)
	}
	date, err := time.Parse("20060102", imageID[:8])
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "temps: parse date from image id %q", imageID)
	}
	return date, nil
}

// Fahrenheit converts a Celsius temperature.
func Fahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Classify assigns the thermal-suitability category for a mean temperature
// in °C.
func Classify(c float64) string {
	switch {
	case c >= optimalMinC && c <= optimalMaxC:
		return CategoryOptimal
	case c >= inRangeMinC && c <= inRangeMaxC:
		return CategoryInRange
	default:
		return CategoryOutRange
	}
}

// tidy converts one upstream row into a tidied record.
func tidy(raw rawRecord) (Record, error) {
	date, err := ParseImageDate(raw.ImageID)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Zip:      raw.Zip,
		Date:     date.Format("2006-01-02"),
		MeanC:    raw.MeanC,
		MeanF:    Fahrenheit(raw.MeanC),
		Category: Classify(raw.MeanC),
	}, nil
}

// Run tidies the configured temperature CSV and writes the result. It
// returns the number of observations written.
func Run(cfg *config.Config) (int, error) {
	log := zap.L().With(zap.String("stage", "temperature"))

	var raw []rawRecord
	if err := tables.ReadCSV(cfg.Paths.TemperatureCSV, &raw); err != nil {
		return 0, err
	}

	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec, err := tidy(r)
		if err != nil {
			return 0, err
		}
		out = append(out, rec)
	}

	path := filepath.Join(cfg.Paths.TablesDir, TidyFile)
	if err := tables.WriteCSV(path, out); err != nil {
		return 0, err
	}
	log.Info("temperature table tidied", zap.Int("rows", len(out)), zap.String("path", path))
	return len(out), nil
}
