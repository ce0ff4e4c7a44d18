package zonal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
)

func rec(zip, date string, cells int) Record {
	return Record{Zip: zip, Date: date, Cells: cells, Acres: AcresFromCells(cells, 900)}
}

func TestRepairDropsListedDates(t *testing.T) {
	in := []Record{
		rec("93280", "2020-03-05", 50),
		rec("93280", "2020-03-21", 60),
		rec("93280", "2020-04-06", 70),
	}
	out, err := Repair(in, config.RepairConfig{DropDates: []string{"2020-03-05"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2020-03-21", out[0].Date)
	assert.Equal(t, "2020-04-06", out[1].Date)
}

func TestRepairSmallGapIsExactNeighborMean(t *testing.T) {
	in := []Record{
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 9999),
		rec("93280", "2020-07-07", 301),
	}
	out, err := Repair(in, config.RepairConfig{SmallGapDates: []string{"2020-06-21"}})
	require.NoError(t, err)
	require.Len(t, out, 3)

	fixed := out[1]
	assert.Equal(t, "2020-06-21", fixed.Date)
	assert.InDelta(t, (out[0].Acres+out[2].Acres)/2, fixed.Acres, 1e-12)
	// (100+301)/2 = 200.5 rounds to whole cells.
	assert.Equal(t, 201, fixed.Cells)

	// Neighbors are untouched.
	assert.Equal(t, 100, out[0].Cells)
	assert.Equal(t, 301, out[2].Cells)
}

func TestRepairLargeGapLinearInterpolation(t *testing.T) {
	in := []Record{
		rec("93280", "2020-10-01", 100),
		rec("93280", "2020-10-15", 1),
		rec("93280", "2020-10-31", 2),
		rec("93280", "2020-11-16", 400),
	}
	out, err := Repair(in, config.RepairConfig{LargeGapDates: []string{"2020-10-15", "2020-10-31"}})
	require.NoError(t, err)
	require.Len(t, out, 4)

	// Two nulled observations between 100 and 400: thirds of the span.
	assert.Equal(t, 200, out[1].Cells)
	assert.Equal(t, 300, out[2].Cells)
	assert.InDelta(t, AcresFromCells(200, 900), out[1].Acres, 1e-9)
	assert.InDelta(t, AcresFromCells(300, 900), out[2].Acres, 1e-9)
}

func TestRepairNeverAltersUnlistedDates(t *testing.T) {
	in := []Record{
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 50),
		rec("93280", "2020-07-07", 300),
		rec("93308", "2020-06-05", 7),
		rec("93308", "2020-06-21", 8),
		rec("93308", "2020-07-07", 9),
	}
	out, err := Repair(in, config.RepairConfig{
		DropDates:     []string{"1999-01-01"},
		SmallGapDates: []string{"2020-06-21"},
	})
	require.NoError(t, err)
	require.Len(t, out, 6)

	for _, r := range out {
		if r.Date == "2020-06-21" {
			continue
		}
		for _, orig := range in {
			if orig.Zip == r.Zip && orig.Date == r.Date {
				assert.Equal(t, orig.Cells, r.Cells, "zip %s date %s", r.Zip, r.Date)
				assert.InDelta(t, orig.Acres, r.Acres, 1e-12)
			}
		}
	}
}

func TestRepairEachZipIndependently(t *testing.T) {
	in := []Record{
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 0),
		rec("93280", "2020-07-07", 200),
		rec("93308", "2020-06-05", 10),
		rec("93308", "2020-06-21", 0),
		rec("93308", "2020-07-07", 30),
	}
	out, err := Repair(in, config.RepairConfig{SmallGapDates: []string{"2020-06-21"}})
	require.NoError(t, err)

	byZip := map[string]int{}
	for _, r := range out {
		if r.Date == "2020-06-21" {
			byZip[r.Zip] = r.Cells
		}
	}
	assert.Equal(t, 150, byZip["93280"])
	assert.Equal(t, 20, byZip["93308"])
}

func TestRepairSmallGapAtSeriesEdgeFails(t *testing.T) {
	in := []Record{
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 50),
	}
	_, err := Repair(in, config.RepairConfig{SmallGapDates: []string{"2020-06-21"}})
	assert.Error(t, err)
}

func TestRepairLargeGapAtSeriesEdgeFails(t *testing.T) {
	in := []Record{
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 50),
	}
	_, err := Repair(in, config.RepairConfig{LargeGapDates: []string{"2020-06-21"}})
	assert.Error(t, err)
}

func TestRepairSortsWithinZipByDate(t *testing.T) {
	in := []Record{
		rec("93280", "2020-07-07", 300),
		rec("93280", "2020-06-05", 100),
		rec("93280", "2020-06-21", 0),
	}
	out, err := Repair(in, config.RepairConfig{SmallGapDates: []string{"2020-06-21"}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "2020-06-05", out[0].Date)
	assert.Equal(t, 200, out[1].Cells)
	assert.Equal(t, "2020-07-07", out[2].Date)
}
