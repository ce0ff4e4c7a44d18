package vector

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geom"
)

// ToOrb converts a polygonal go-geom geometry into an orb.MultiPolygon for
// planar predicates (point-in-polygon, centroid). Non-polygonal input yields
// an empty MultiPolygon.
func ToOrb(g geom.T) orb.MultiPolygon {
	switch t := g.(type) {
	case *geom.Polygon:
		return orb.MultiPolygon{polygonToOrb(t)}
	case *geom.MultiPolygon:
		out := make(orb.MultiPolygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			out = append(out, polygonToOrb(t.Polygon(i)))
		}
		return out
	default:
		return orb.MultiPolygon{}
	}
}

func polygonToOrb(p *geom.Polygon) orb.Polygon {
	coords := p.Coords()
	out := make(orb.Polygon, 0, len(coords))
	for _, ring := range coords {
		r := make(orb.Ring, 0, len(ring))
		for _, c := range ring {
			r = append(r, orb.Point{c[0], c[1]})
		}
		out = append(out, r)
	}
	return out
}

// Contains reports whether the point (x, y) falls inside the polygonal
// geometry. Coordinates must share the geometry's CRS.
func Contains(g geom.T, x, y float64) bool {
	return planar.MultiPolygonContains(ToOrb(g), orb.Point{x, y})
}

// Centroid returns the area-weighted centroid of a polygonal geometry.
func Centroid(g geom.T) (x, y float64) {
	pt, _ := planar.CentroidArea(ToOrb(g))
	return pt[0], pt[1]
}

// Bounds returns the axis-aligned bounding box of a geometry as
// (minX, minY, maxX, maxY).
func Bounds(g geom.T) (minX, minY, maxX, maxY float64) {
	b := g.Bounds()
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1)
}
