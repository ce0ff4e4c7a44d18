package zonal

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernmvcd/wnv-pipeline/internal/raster"
)

// zoneRect builds a rectangular zone from (minX, minY) to (maxX, maxY).
func zoneRect(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	return orb.MultiPolygon{{
		{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}},
	}}
}

// testGrid is a 4x4 grid of 30 m cells with origin (0, 120), north-up.
func testGrid() *raster.Grid {
	return raster.NewGrid(4, 4, [6]float64{0, 30, 0, 120, 0, -30}, raster.DefaultNoData)
}

func TestCountFlagCountsOnlyFlaggedCellsInZone(t *testing.T) {
	g := testGrid()
	// Top-left 2x2 block flooded, rest dry.
	g.Set(0, 0, 1)
	g.Set(1, 0, 1)
	g.Set(0, 1, 1)
	g.Set(1, 1, 1)
	g.Set(2, 0, 0)
	g.Set(3, 3, 0)

	// Zone covering the left half of the grid.
	zone := zoneRect(0, 0, 60, 120)
	assert.Equal(t, 4, CountFlag(g, zone, 1))

	// Zone covering only the top-left cell's center (15, 105).
	zone = zoneRect(0, 100, 20, 120)
	assert.Equal(t, 1, CountFlag(g, zone, 1))
}

func TestCountFlagIgnoresNoDataAndOtherValues(t *testing.T) {
	g := testGrid()
	g.Set(0, 0, 1)
	g.Set(1, 0, 0)                    // dry
	g.Set(2, 0, raster.DefaultNoData) // masked

	zone := zoneRect(0, 0, 120, 120)
	assert.Equal(t, 1, CountFlag(g, zone, 1))
}

func TestCountFlagZoneOutsideGrid(t *testing.T) {
	g := testGrid()
	g.Set(0, 0, 1)
	zone := zoneRect(1000, 1000, 2000, 2000)
	assert.Equal(t, 0, CountFlag(g, zone, 1))
}

func TestMeanInZoneSkipsNoData(t *testing.T) {
	g := testGrid()
	g.Set(0, 0, 10)
	g.Set(1, 0, 20)
	g.Set(2, 0, raster.DefaultNoData)

	zone := zoneRect(0, 90, 90, 120)
	mean, n := MeanInZone(g, zone)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 15, mean, 1e-9)
}

func TestMeanInZoneEmpty(t *testing.T) {
	g := testGrid()
	zone := zoneRect(0, 0, 120, 120)
	mean, n := MeanInZone(g, zone)
	assert.Equal(t, 0, n)
	assert.InDelta(t, 0, mean, 1e-9)
}

func TestMeanAll(t *testing.T) {
	g := raster.NewGrid(2, 1, [6]float64{0, 30, 0, 30, 0, -30}, raster.DefaultNoData)
	g.Set(0, 0, 4)
	g.Set(1, 0, 8)
	mean, n := MeanAll(g)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 6, mean, 1e-9)
}

func TestAcresFromCells(t *testing.T) {
	// One 30 m cell is 900 m2, about 0.2224 acres.
	assert.InDelta(t, 0.22239, AcresFromCells(1, 900), 1e-4)
	assert.InDelta(t, 0, AcresFromCells(0, 900), 1e-12)
	// Conversion is linear in the cell count.
	assert.InDelta(t, 10*AcresFromCells(1, 900), AcresFromCells(10, 900), 1e-9)
}

func TestNewRecord(t *testing.T) {
	date, err := time.Parse("2006-01-02", "2020-06-21")
	require.NoError(t, err)

	r := NewRecord("93280", date, 100, 900)
	assert.Equal(t, "93280", r.Zip)
	assert.Equal(t, "2020-06-21", r.Date)
	assert.Equal(t, "Jun 21, 2020", r.DateLabel)
	assert.Equal(t, 100, r.Cells)
	assert.InDelta(t, 100*900/4046.86, r.Acres, 1e-9)
}
