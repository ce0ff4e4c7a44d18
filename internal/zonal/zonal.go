// Package zonal aggregates the cropped water rasters into per-zip time
// series and applies the cloud-correction policy to them.
package zonal

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/kernmvcd/wnv-pipeline/internal/raster"
)

// CountFlag counts the cells whose value equals flag and whose center falls
// inside the zone. The zone must be expressed in the grid's CRS.
func CountFlag(g *raster.Grid, zone orb.MultiPolygon, flag float64) int {
	c0, r0, c1, r1 := cellWindow(g, zone)
	n := 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			v := g.At(col, row)
			if g.IsNoData(v) || v != flag {
				continue
			}
			x, y := g.CellCenter(col, row)
			if zoneContains(zone, x, y) {
				n++
			}
		}
	}
	return n
}

// MeanInZone returns the mean of the valid cells whose center falls inside
// the zone, and how many cells contributed. Nodata cells are excluded rather
// than counted as zero.
func MeanInZone(g *raster.Grid, zone orb.MultiPolygon) (float64, int) {
	c0, r0, c1, r1 := cellWindow(g, zone)
	sum, n := 0.0, 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			v := g.At(col, row)
			if g.IsNoData(v) {
				continue
			}
			x, y := g.CellCenter(col, row)
			if zoneContains(zone, x, y) {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// MeanAll returns the mean of every valid cell in the grid and how many
// cells contributed.
func MeanAll(g *raster.Grid) (float64, int) {
	sum, n := 0.0, 0
	for _, v := range g.Data {
		if g.IsNoData(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// cellWindow clamps the zone's bounding box to grid cell indices so the scan
// skips cells that cannot intersect the zone.
func cellWindow(g *raster.Grid, zone orb.MultiPolygon) (c0, r0, c1, r1 int) {
	b := zone.Bound()
	c0, r0 = g.ColRow(b.Min[0], b.Max[1])
	c1, r1 = g.ColRow(b.Max[0], b.Min[1])
	c0 = clamp(c0, 0, g.W-1)
	c1 = clamp(c1, 0, g.W-1)
	r0 = clamp(r0, 0, g.H-1)
	r1 = clamp(r1, 0, g.H-1)
	return c0, r0, c1, r1
}

func zoneContains(zone orb.MultiPolygon, x, y float64) bool {
	return planar.MultiPolygonContains(zone, orb.Point{x, y})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
