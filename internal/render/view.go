// Package render draws the per-date water maps and encodes them into one
// animation per zip code.
package render

import (
	"math"

	"github.com/kernmvcd/wnv-pipeline/pkg/tiles"
)

// View maps geographic coordinates onto a fixed-size canvas through
// web-mercator world pixels at one zoom level, so basemap tiles and overlay
// geometry land in the same pixel space.
type View struct {
	W, H    int
	Zoom    int
	originX float64
	originY float64
	scale   float64
}

// NewView locks a canvas onto a geographic bounding box, preserving aspect
// ratio and centering the box.
func NewView(minLon, minLat, maxLon, maxLat float64, w, h, zoom int) View {
	x0 := worldX(minLon, zoom)
	x1 := worldX(maxLon, zoom)
	y0 := worldY(maxLat, zoom)
	y1 := worldY(minLat, zoom)

	scale := math.Min(float64(w)/(x1-x0), float64(h)/(y1-y0))
	// Center the box on the canvas.
	originX := x0 - (float64(w)/scale-(x1-x0))/2
	originY := y0 - (float64(h)/scale-(y1-y0))/2

	return View{W: w, H: h, Zoom: zoom, originX: originX, originY: originY, scale: scale}
}

// Project maps a lon/lat point to canvas pixel coordinates.
func (v View) Project(lon, lat float64) (px, py float64) {
	px = (worldX(lon, v.Zoom) - v.originX) * v.scale
	py = (worldY(lat, v.Zoom) - v.originY) * v.scale
	return px, py
}

// TilePixel maps a tile's top-left corner to canvas pixel coordinates.
func (v View) TilePixel(x, y int) (px, py float64) {
	px = (float64(x*tiles.Size) - v.originX) * v.scale
	py = (float64(y*tiles.Size) - v.originY) * v.scale
	return px, py
}

// Scale returns canvas pixels per world pixel.
func (v View) Scale() float64 { return v.scale }

func worldX(lon float64, zoom int) float64 {
	n := float64(int(1) << zoom)
	return (lon + 180) / 360 * n * tiles.Size
}

func worldY(lat float64, zoom int) float64 {
	n := float64(int(1) << zoom)
	latRad := lat * math.Pi / 180
	return (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n * tiles.Size
}
