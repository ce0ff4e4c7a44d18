package vector

import (
	sfgeom "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"
)

// Intersect clips every feature of the layer against the given clip geometry
// and returns a new layer holding the non-empty intersections. Attributes are
// retained. Both geometries must already share the layer CRS.
func Intersect(l *Layer, clip geom.T) (*Layer, error) {
	sfClip, err := toSF(clip)
	if err != nil {
		return nil, eris.Wrap(err, "vector: convert clip geometry")
	}

	out := &Layer{EPSG: l.EPSG}
	for _, f := range l.Features {
		sfGeom, err := toSF(f.Geom)
		if err != nil {
			return nil, eris.Wrapf(err, "vector: convert feature %s", f.ID)
		}

		inter, err := sfgeom.Intersection(sfGeom, sfClip)
		if err != nil {
			return nil, eris.Wrapf(err, "vector: intersect feature %s", f.ID)
		}
		if inter.IsEmpty() {
			continue
		}

		g, err := fromSF(inter, l.EPSG)
		if err != nil {
			return nil, eris.Wrapf(err, "vector: convert intersection of %s", f.ID)
		}
		if g == nil {
			// Point or line contact only, not a polygonal overlap.
			continue
		}

		out.Features = append(out.Features, Feature{ID: f.ID, Props: f.Props, Geom: g})
	}
	return out, nil
}

// UnionAll merges every feature geometry of a layer into one geometry,
// typically to build a single clip region.
func UnionAll(l *Layer) (geom.T, error) {
	if len(l.Features) == 0 {
		return nil, eris.New("vector: union of empty layer")
	}

	acc, err := toSF(l.Features[0].Geom)
	if err != nil {
		return nil, eris.Wrap(err, "vector: convert first feature")
	}
	for _, f := range l.Features[1:] {
		g, err := toSF(f.Geom)
		if err != nil {
			return nil, eris.Wrapf(err, "vector: convert feature %s", f.ID)
		}
		acc, err = sfgeom.Union(acc, g)
		if err != nil {
			return nil, eris.Wrapf(err, "vector: union feature %s", f.ID)
		}
	}
	return fromSF(acc, l.EPSG)
}

// FilterByArea computes the planar area of every feature, stores it in the
// given property key, and drops features below the threshold. The layer must
// be in a projected CRS with meter units for the areas to mean anything.
func FilterByArea(l *Layer, minArea float64, areaKey string) *Layer {
	out := &Layer{EPSG: l.EPSG}
	var dropped int
	for _, f := range l.Features {
		area := Area(f.Geom)
		if area < minArea {
			dropped++
			continue
		}
		props := make(map[string]any, len(f.Props)+1)
		for k, v := range f.Props {
			props[k] = v
		}
		props[areaKey] = area
		out.Features = append(out.Features, Feature{ID: f.ID, Props: props, Geom: f.Geom})
	}
	if dropped > 0 {
		zap.L().Info("vector: dropped sliver polygons",
			zap.Int("dropped", dropped),
			zap.Float64("min_area_m2", minArea),
		)
	}
	return out
}

// Area returns the planar area of a polygonal geometry, zero otherwise.
func Area(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return t.Area()
	case *geom.MultiPolygon:
		return t.Area()
	case *geom.GeometryCollection:
		var sum float64
		for _, sub := range t.Geoms() {
			sum += Area(sub)
		}
		return sum
	default:
		return 0
	}
}

// toSF bridges a go-geom geometry into simplefeatures via WKB.
func toSF(g geom.T) (sfgeom.Geometry, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return sfgeom.Geometry{}, eris.Wrap(err, "vector: marshal wkb")
	}
	sf, err := sfgeom.UnmarshalWKB(data)
	if err != nil {
		return sfgeom.Geometry{}, eris.Wrap(err, "vector: unmarshal wkb")
	}
	return sf, nil
}

// fromSF bridges back from simplefeatures, keeping only the polygonal part of
// the result. Returns nil when no polygonal component remains.
func fromSF(sf sfgeom.Geometry, srid int) (geom.T, error) {
	g, err := wkb.Unmarshal(sf.AsBinary())
	if err != nil {
		return nil, eris.Wrap(err, "vector: unmarshal result wkb")
	}
	return polygonalPart(g, srid), nil
}

// polygonalPart extracts the polygonal component of a geometry as a
// MultiPolygon tagged with the given SRID.
func polygonalPart(g geom.T, srid int) geom.T {
	switch t := g.(type) {
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)
		if err := mp.Push(clonePolygon(t)); err != nil {
			return nil
		}
		return mp
	case *geom.MultiPolygon:
		return t.SetSRID(srid)
	case *geom.GeometryCollection:
		mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)
		for _, sub := range t.Geoms() {
			switch s := sub.(type) {
			case *geom.Polygon:
				if err := mp.Push(clonePolygon(s)); err != nil {
					continue
				}
			case *geom.MultiPolygon:
				for i := 0; i < s.NumPolygons(); i++ {
					if err := mp.Push(clonePolygon(s.Polygon(i))); err != nil {
						continue
					}
				}
			}
		}
		if mp.NumPolygons() == 0 {
			return nil
		}
		return mp
	default:
		return nil
	}
}

func clonePolygon(p *geom.Polygon) *geom.Polygon {
	flat := make([]float64, len(p.FlatCoords()))
	copy(flat, p.FlatCoords())
	ends := make([]int, len(p.Ends()))
	copy(ends, p.Ends())
	return geom.NewPolygonFlat(geom.XY, flat, ends)
}
