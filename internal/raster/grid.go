// Package raster handles the satellite water imagery: format normalization,
// quality masking, swath merging, boundary cropping, and the water
// persistence summary.
package raster

import (
	"math"

	"github.com/rotisserie/eris"
)

// DefaultNoData is assigned when a source raster carries no nodata value but
// an operation needs one.
const DefaultNoData = -9999

// WaterFlag is the cell value marking surface water in the classified
// imagery.
const WaterFlag = 1

// Grid is a single-band raster held in memory: cell values over a
// georeferenced extent described by a GDAL-style geotransform.
type Grid struct {
	W, H int
	// GT is the geotransform: origin x, cell width, 0, origin y, 0, cell
	// height (negative for north-up).
	GT        [6]float64
	Data      []float64
	NoData    float64
	HasNoData bool
	// SrcPath is the file this grid was loaded from, used as the spatial
	// reference donor when saving derived grids.
	SrcPath string
}

// NewGrid allocates a grid matching the given shape, filled with the nodata
// value.
func NewGrid(w, h int, gt [6]float64, nodata float64) *Grid {
	g := &Grid{W: w, H: h, GT: gt, NoData: nodata, HasNoData: true, Data: make([]float64, w*h)}
	for i := range g.Data {
		g.Data[i] = nodata
	}
	return g
}

// At returns the value at (col, row).
func (g *Grid) At(col, row int) float64 { return g.Data[row*g.W+col] }

// Set writes the value at (col, row).
func (g *Grid) Set(col, row int, v float64) { g.Data[row*g.W+col] = v }

// IsNoData reports whether v is the grid's nodata marker.
func (g *Grid) IsNoData(v float64) bool {
	return g.HasNoData && (v == g.NoData || (math.IsNaN(v) && math.IsNaN(g.NoData)))
}

// CellCenter returns the georeferenced center of cell (col, row).
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.GT[0] + (float64(col)+0.5)*g.GT[1]
	y = g.GT[3] + (float64(row)+0.5)*g.GT[5]
	return x, y
}

// ColRow maps a georeferenced point to the containing cell indices. The
// result may lie outside [0,W)x[0,H).
func (g *Grid) ColRow(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.GT[0]) / g.GT[1]))
	row = int(math.Floor((y - g.GT[3]) / g.GT[5]))
	return col, row
}

// Extent returns the georeferenced bounding box (minX, minY, maxX, maxY).
func (g *Grid) Extent() (minX, minY, maxX, maxY float64) {
	minX = g.GT[0]
	maxX = g.GT[0] + float64(g.W)*g.GT[1]
	maxY = g.GT[3]
	minY = g.GT[3] + float64(g.H)*g.GT[5]
	return minX, minY, maxX, maxY
}

// MaskQuality sets every water cell whose quality flag equals badFlag to
// nodata, in place. Masking an already-masked grid with the same flags is a
// no-op. The two grids must share shape and alignment.
func MaskQuality(water, quality *Grid, badFlag float64) error {
	if water.W != quality.W || water.H != quality.H {
		return eris.Errorf("raster: mask shape mismatch %dx%d vs %dx%d", water.W, water.H, quality.W, quality.H)
	}
	if !sameTransform(water.GT, quality.GT) {
		return eris.New("raster: mask grids are not aligned")
	}
	if !water.HasNoData {
		water.NoData = DefaultNoData
		water.HasNoData = true
	}
	for i, q := range quality.Data {
		if !quality.IsNoData(q) && q == badFlag {
			water.Data[i] = water.NoData
		}
	}
	return nil
}

// Merge mosaics two same-resolution grids onto their union extent. Where both
// supply a valid value the first grid wins; this is the documented tie-break
// for overlapping swath rows (row A listed first).
func Merge(a, b *Grid) (*Grid, error) {
	const eps = 1e-9
	if math.Abs(a.GT[1]-b.GT[1]) > eps || math.Abs(a.GT[5]-b.GT[5]) > eps {
		return nil, eris.New("raster: merge inputs differ in resolution")
	}

	aMinX, aMinY, aMaxX, aMaxY := a.Extent()
	bMinX, bMinY, bMaxX, bMaxY := b.Extent()
	minX := math.Min(aMinX, bMinX)
	minY := math.Min(aMinY, bMinY)
	maxX := math.Max(aMaxX, bMaxX)
	maxY := math.Max(aMaxY, bMaxY)

	resX, resY := a.GT[1], a.GT[5]
	w := int(math.Round((maxX - minX) / resX))
	h := int(math.Round((minY - maxY) / resY))

	nodata := a.NoData
	if !a.HasNoData {
		nodata = DefaultNoData
	}
	out := NewGrid(w, h, [6]float64{minX, resX, 0, maxY, 0, resY}, nodata)
	out.SrcPath = a.SrcPath

	// Paint B first so A overwrites it wherever both are valid.
	if err := paint(out, b); err != nil {
		return nil, err
	}
	if err := paint(out, a); err != nil {
		return nil, err
	}
	return out, nil
}

// paint copies valid cells of src into dst by georeferenced position.
func paint(dst, src *Grid) error {
	offCol := int(math.Round((src.GT[0] - dst.GT[0]) / dst.GT[1]))
	offRow := int(math.Round((src.GT[3] - dst.GT[3]) / dst.GT[5]))
	if offCol < 0 || offRow < 0 || offCol+src.W > dst.W || offRow+src.H > dst.H {
		return eris.New("raster: source grid exceeds mosaic extent")
	}
	for row := 0; row < src.H; row++ {
		for col := 0; col < src.W; col++ {
			v := src.At(col, row)
			if src.IsNoData(v) {
				continue
			}
			dst.Set(offCol+col, offRow+row, v)
		}
	}
	return nil
}

// SumFlagInto adds one occurrence to acc for every cell of src equal to
// flag. The grids must share the exact grid; resample first.
func SumFlagInto(acc, src *Grid, flag float64) error {
	if acc.W != src.W || acc.H != src.H || !sameTransform(acc.GT, src.GT) {
		return eris.New("raster: accumulation grids are not aligned")
	}
	for i, v := range src.Data {
		if src.IsNoData(v) || v != flag {
			continue
		}
		if acc.IsNoData(acc.Data[i]) {
			acc.Data[i] = 1
		} else {
			acc.Data[i]++
		}
	}
	return nil
}

// ReclassifyZeroToNoData marks never-flooded cells (zero occurrences) as
// absent rather than zero, which simplifies downstream rendering.
func ReclassifyZeroToNoData(g *Grid) {
	if !g.HasNoData {
		g.NoData = DefaultNoData
		g.HasNoData = true
	}
	for i, v := range g.Data {
		if v == 0 {
			g.Data[i] = g.NoData
		}
	}
}

func sameTransform(a, b [6]float64) bool {
	const eps = 1e-6
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
