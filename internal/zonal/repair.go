package zonal

import (
	"math"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/tables"
)

// RepairSeries applies the cloud-correction policy to the canonical water
// table in place: read, repair, overwrite.
func RepairSeries(cfg *config.Config) error {
	log := zap.L().With(zap.String("stage", "repair"))

	path := filepath.Join(cfg.Paths.TablesDir, SeriesFile)
	var records []Record
	if err := tables.ReadCSV(path, &records); err != nil {
		return eris.Wrap(err, "zonal: run the zonal stage first")
	}

	repaired, err := Repair(records, cfg.Repair)
	if err != nil {
		return err
	}

	if err := tables.WriteCSV(path, repaired); err != nil {
		return err
	}
	log.Info("water series repaired",
		zap.Int("in", len(records)),
		zap.Int("out", len(repaired)),
	)
	return nil
}

// Repair applies the three date lists of the cloud-correction policy to
// every zip's series independently: drop dates are removed, small-gap dates
// become the mean of their two neighbors, large-gap dates are nulled and
// linearly interpolated in date order. Both acres and cell counts are
// repaired; counts are rounded to whole cells. Dates named in no list are
// never altered.
func Repair(records []Record, rc config.RepairConfig) ([]Record, error) {
	drop := dateSet(rc.DropDates)
	small := dateSet(rc.SmallGapDates)
	large := dateSet(rc.LargeGapDates)

	groups, order := groupByZip(records)

	var out []Record
	for _, zip := range order {
		series := groups[zip]
		sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

		kept := series[:0]
		for _, r := range series {
			if !drop[r.Date] {
				kept = append(kept, r)
			}
		}

		if err := repairSmallGaps(kept, small, zip); err != nil {
			return nil, err
		}
		if err := repairLargeGaps(kept, large, zip); err != nil {
			return nil, err
		}
		out = append(out, kept...)
	}
	return out, nil
}

// repairSmallGaps replaces each listed date with the mean of the two
// adjacent observations.
func repairSmallGaps(series []Record, small map[string]bool, zip string) error {
	for i := range series {
		if !small[series[i].Date] {
			continue
		}
		if i == 0 || i == len(series)-1 {
			return eris.Errorf("zonal: small-gap date %s has no neighbors on both sides for zip %s", series[i].Date, zip)
		}
		prev, next := series[i-1], series[i+1]
		series[i].Acres = (prev.Acres + next.Acres) / 2
		series[i].Cells = int(math.Round(float64(prev.Cells+next.Cells) / 2))
	}
	return nil
}

// repairLargeGaps nulls each listed date and fills runs of them by linear
// interpolation between the surrounding valid observations.
func repairLargeGaps(series []Record, large map[string]bool, zip string) error {
	i := 0
	for i < len(series) {
		if !large[series[i].Date] {
			i++
			continue
		}
		start := i
		for i < len(series) && large[series[i].Date] {
			i++
		}
		if start == 0 || i == len(series) {
			return eris.Errorf("zonal: large-gap run at %s touches the series edge for zip %s", series[start].Date, zip)
		}
		a, b := series[start-1], series[i]
		span := float64(i - start + 1)
		for k := start; k < i; k++ {
			t := float64(k-start+1) / span
			series[k].Acres = a.Acres + (b.Acres-a.Acres)*t
			series[k].Cells = int(math.Round(float64(a.Cells) + float64(b.Cells-a.Cells)*t))
		}
	}
	return nil
}

func groupByZip(records []Record) (map[string][]Record, []string) {
	groups := make(map[string][]Record)
	var order []string
	for _, r := range records {
		if _, ok := groups[r.Zip]; !ok {
			order = append(order, r.Zip)
		}
		groups[r.Zip] = append(groups[r.Zip], r)
	}
	return groups, order
}

func dateSet(dates []string) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}
