// Package vector reads, reprojects, overlays, and persists the polygon
// layers the pipeline works with (county, alluvial basin, zip codes, trap
// clusters).
package vector

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Feature is one record of a polygon layer: an identifier, its attributes as
// read from the source, and a go-geom geometry.
type Feature struct {
	ID    string
	Props map[string]any
	Geom  geom.T
}

// Layer is a set of features sharing one coordinate reference system. Every
// spatial predicate in the pipeline requires both operands to carry the same
// EPSG; harmonize with Reproject first.
type Layer struct {
	EPSG     int
	Features []Feature
}

// ReadShapefile loads a shapefile into a Layer. The source CRS is declared by
// the caller (shapefiles do not carry a machine-readable EPSG), but a missing
// .prj sidecar is treated as a CRS-less input and is fatal.
func ReadShapefile(path string, epsg int) (*Layer, error) {
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if _, err := os.Stat(prj); err != nil {
		return nil, eris.Errorf("vector: %s has no .prj sidecar, refusing CRS-less input", path)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	layer := &Layer{EPSG: epsg}
	var skipped int

	for reader.Next() {
		n, shape := reader.Shape()

		g := shapeToGeom(shape, epsg)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			props[name] = val
		}

		layer.Features = append(layer.Features, Feature{
			ID:    attrString(props, names, n),
			Props: props,
			Geom:  g,
		})
	}

	if skipped > 0 {
		zap.L().Debug("vector: skipped unsupported shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	if len(layer.Features) == 0 {
		return nil, eris.Errorf("vector: %s contains no usable features", path)
	}
	return layer, nil
}

// attrString picks a default feature identifier: the first attribute column
// if present, else the record ordinal.
func attrString(props map[string]any, names []string, ordinal int) string {
	if len(names) > 0 {
		if s, ok := props[names[0]].(string); ok && s != "" {
			return s
		}
	}
	return itoa(ordinal)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// PropString returns a feature attribute as a string, empty when absent.
func (f Feature) PropString(key string) string {
	if v, ok := f.Props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// shapeToGeom converts a go-shp shape to a go-geom geometry tagged with the
// layer SRID. Unsupported shape types yield nil.
func shapeToGeom(shape shp.Shape, srid int) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(srid)
	case *shp.Polygon:
		return polygonToMultiPolygon(s, srid)
	default:
		return nil
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile part/ring semantics are flattened to one single-ring polygon per
// part, which is sufficient for the county/basin/zip layers in use.
func polygonToMultiPolygon(p *shp.Polygon, srid int) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("vector: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("vector: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
