// Package tiles fetches XYZ web-map tiles for basemap composition, with a
// disk cache and polite rate limiting toward the tile provider.
package tiles

import (
	"math"
)

// Size is the pixel edge length of a standard web-map tile.
const Size = 256

// FromLonLat returns the tile containing a point at the given zoom.
func FromLonLat(lon, lat float64, zoom int) (x, y int) {
	n := float64(int(1) << zoom)
	x = int(math.Floor((lon + 180) / 360 * n))
	latRad := lat * math.Pi / 180
	y = int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	max := (1 << zoom) - 1
	if x < 0 {
		x = 0
	}
	if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	}
	if y > max {
		y = max
	}
	return x, y
}

// Bounds returns the geographic extent of a tile as
// (minLon, minLat, maxLon, maxLat).
func Bounds(x, y, zoom int) (minLon, minLat, maxLon, maxLat float64) {
	n := float64(int(1) << zoom)
	minLon = float64(x)/n*360 - 180
	maxLon = float64(x+1)/n*360 - 180
	maxLat = tileLat(float64(y), n)
	minLat = tileLat(float64(y+1), n)
	return minLon, minLat, maxLon, maxLat
}

func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
}

// Range is an inclusive rectangle of tile indices at one zoom level.
type Range struct {
	Zoom       int
	MinX, MinY int
	MaxX, MaxY int
}

// Cover returns the tile range covering a geographic bounding box.
func Cover(minLon, minLat, maxLon, maxLat float64, zoom int) Range {
	x0, y0 := FromLonLat(minLon, maxLat, zoom) // northwest corner
	x1, y1 := FromLonLat(maxLon, minLat, zoom) // southeast corner
	return Range{Zoom: zoom, MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
}

// Count returns how many tiles the range spans.
func (r Range) Count() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}
