package traps

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/tables"
)

// Tidied table file names.
const (
	MIRFile       = "trap_mir_by_zip.csv"
	PoolsFile     = "trap_pools_by_zip.csv"
	AbundanceFile = "trap_abundance_by_zip.csv"
)

// observationDateLayouts are the date formats seen in the raw trap exports.
var observationDateLayouts = []string{"2006-01-02", "1/2/2006"}

type rawMIR struct {
	Cluster string  `csv:"cluster_id"`
	Date    string  `csv:"date"`
	MIR     float64 `csv:"mir"`
}

type rawPools struct {
	Cluster       string `csv:"cluster_id"`
	Date          string `csv:"date"`
	PositivePools int    `csv:"positive_pools"`
	TotalPools    int    `csv:"total_pools"`
}

type rawAbundance struct {
	Cluster   string  `csv:"cluster_id"`
	Date      string  `csv:"date"`
	Abundance float64 `csv:"abundance"`
}

// MIRRecord is one tidied minimum-infection-rate observation.
type MIRRecord struct {
	Zip     string  `csv:"zipcode"`
	Cluster string  `csv:"cluster_id"`
	Date    string  `csv:"date"`
	Month   string  `csv:"month"`
	MIR     float64 `csv:"mir"`
}

// PoolsRecord is one tidied pooled-sample observation.
type PoolsRecord struct {
	Zip           string `csv:"zipcode"`
	Cluster       string `csv:"cluster_id"`
	Date          string `csv:"date"`
	Month         string `csv:"month"`
	PositivePools int    `csv:"positive_pools"`
	TotalPools    int    `csv:"total_pools"`
}

// AbundanceRecord is one tidied trap-abundance observation.
type AbundanceRecord struct {
	Zip       string  `csv:"zipcode"`
	Cluster   string  `csv:"cluster_id"`
	Date      string  `csv:"date"`
	Month     string  `csv:"month"`
	Abundance float64 `csv:"abundance"`
}

// Run builds the cluster→zip assignments and tidies the three trap tables.
func Run(cfg *config.Config) error {
	log := zap.L().With(zap.String("stage", "traps"))

	assignments, err := BuildAssignments(cfg)
	if err != nil {
		return err
	}

	var mir []rawMIR
	if err := tables.ReadCSV(cfg.Paths.TrapMIRCSV, &mir); err != nil {
		return err
	}
	mirOut, err := tidyMIR(mir, assignments)
	if err != nil {
		return err
	}
	if err := tables.WriteCSV(filepath.Join(cfg.Paths.TablesDir, MIRFile), mirOut); err != nil {
		return err
	}

	var pools []rawPools
	if err := tables.ReadCSV(cfg.Paths.TrapPoolsCSV, &pools); err != nil {
		return err
	}
	poolsOut, err := tidyPools(pools, assignments)
	if err != nil {
		return err
	}
	if err := tables.WriteCSV(filepath.Join(cfg.Paths.TablesDir, PoolsFile), poolsOut); err != nil {
		return err
	}

	abundance, err := readAbundance(cfg.Paths.TrapAbundanceCSV)
	if err != nil {
		return err
	}
	abundanceOut, err := tidyAbundance(abundance, assignments)
	if err != nil {
		return err
	}
	if err := tables.WriteCSV(filepath.Join(cfg.Paths.TablesDir, AbundanceFile), abundanceOut); err != nil {
		return err
	}

	log.Info("trap tables tidied",
		zap.Int("mir", len(mirOut)),
		zap.Int("pools", len(poolsOut)),
		zap.Int("abundance", len(abundanceOut)),
	)
	return nil
}

func tidyMIR(raw []rawMIR, assignments map[string]Assignment) ([]MIRRecord, error) {
	out := make([]MIRRecord, 0, len(raw))
	for _, r := range raw {
		a, ok := assignments[r.Cluster]
		if !ok {
			continue
		}
		date, month, err := observationMonth(r.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, MIRRecord{Zip: a.Zip, Cluster: r.Cluster, Date: date, Month: month, MIR: r.MIR})
	}
	return out, nil
}

func tidyPools(raw []rawPools, assignments map[string]Assignment) ([]PoolsRecord, error) {
	out := make([]PoolsRecord, 0, len(raw))
	for _, r := range raw {
		a, ok := assignments[r.Cluster]
		if !ok {
			continue
		}
		date, month, err := observationMonth(r.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, PoolsRecord{
			Zip: a.Zip, Cluster: r.Cluster, Date: date, Month: month,
			PositivePools: r.PositivePools, TotalPools: r.TotalPools,
		})
	}
	return out, nil
}

func tidyAbundance(raw []rawAbundance, assignments map[string]Assignment) ([]AbundanceRecord, error) {
	out := make([]AbundanceRecord, 0, len(raw))
	for _, r := range raw {
		a, ok := assignments[r.Cluster]
		if !ok {
			continue
		}
		date, month, err := observationMonth(r.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, AbundanceRecord{
			Zip: a.Zip, Cluster: r.Cluster, Date: date, Month: month, Abundance: r.Abundance,
		})
	}
	return out, nil
}

// observationMonth normalizes a raw observation date and derives its month
// bucket.
func observationMonth(raw string) (date, month string, err error) {
	for _, layout := range observationDateLayouts {
		t, perr := time.Parse(layout, raw)
		if perr == nil {
			return t.Format("2006-01-02"), t.Format("2006-01"), nil
		}
	}
	return "", "", eris.Errorf("traps: unparseable observation date %q", raw)
}

// readAbundance reads the abundance table, which the entomology lab delivers
// either as CSV or as an xlsx workbook.
func readAbundance(path string) ([]rawAbundance, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		var out []rawAbundance
		if err := tables.ReadCSV(path, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "traps: open workbook %s", path)
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.Errorf("traps: workbook %s has no sheets", path)
	}

	sheet := wb.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("traps: workbook %s has no observation rows", path)
	}

	col := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		col[strings.TrimSpace(cell.String())] = i
	}
	for _, name := range []string{"cluster_id", "date", "abundance"} {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("traps: workbook %s missing column %q", path, name)
		}
	}

	var out []rawAbundance
	for _, row := range sheet.Rows[1:] {
		get := func(name string) string {
			i := col[name]
			if i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}
		cluster := get("cluster_id")
		if cluster == "" {
			continue
		}
		abundance, err := strconv.ParseFloat(get("abundance"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "traps: abundance value for cluster %s", cluster)
		}
		out = append(out, rawAbundance{Cluster: cluster, Date: get("date"), Abundance: abundance})
	}
	return out, nil
}
