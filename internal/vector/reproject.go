package vector

import (
	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Reproject transforms every feature geometry of the layer into the target
// CRS, in place. Reprojection failures are fatal: a geometry that cannot be
// transformed means mismatched reference systems, which no later spatial
// operation can recover from.
func Reproject(l *Layer, toEPSG int) error {
	if l.EPSG == toEPSG {
		return nil
	}

	src, err := godal.NewSpatialRefFromEPSG(l.EPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", l.EPSG)
	}
	dst, err := godal.NewSpatialRefFromEPSG(toEPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", toEPSG)
	}
	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return eris.Wrapf(err, "vector: transform EPSG:%d -> EPSG:%d", l.EPSG, toEPSG)
	}

	for i := range l.Features {
		if err := transformInPlace(tr, l.Features[i].Geom); err != nil {
			return eris.Wrapf(err, "vector: reproject feature %s", l.Features[i].ID)
		}
		setSRID(l.Features[i].Geom, toEPSG)
	}
	l.EPSG = toEPSG
	return nil
}

// ReprojectGeom transforms a single geometry between the given reference
// systems, in place.
func ReprojectGeom(g geom.T, fromEPSG, toEPSG int) error {
	if fromEPSG == toEPSG {
		return nil
	}
	src, err := godal.NewSpatialRefFromEPSG(fromEPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", fromEPSG)
	}
	dst, err := godal.NewSpatialRefFromEPSG(toEPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", toEPSG)
	}
	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return eris.Wrapf(err, "vector: transform EPSG:%d -> EPSG:%d", fromEPSG, toEPSG)
	}
	if err := transformInPlace(tr, g); err != nil {
		return err
	}
	setSRID(g, toEPSG)
	return nil
}

// ReprojectCoords transforms parallel coordinate slices between the given
// reference systems, in place. Used for bulk point sets (raster cell
// corners) where building geometries per point would be wasteful.
func ReprojectCoords(xs, ys []float64, fromEPSG, toEPSG int) error {
	if fromEPSG == toEPSG || len(xs) == 0 {
		return nil
	}
	src, err := godal.NewSpatialRefFromEPSG(fromEPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", fromEPSG)
	}
	dst, err := godal.NewSpatialRefFromEPSG(toEPSG)
	if err != nil {
		return eris.Wrapf(err, "vector: spatial ref for EPSG:%d", toEPSG)
	}
	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return eris.Wrapf(err, "vector: transform EPSG:%d -> EPSG:%d", fromEPSG, toEPSG)
	}
	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return eris.Wrap(err, "vector: coordinate transform")
	}
	return nil
}

// transformInPlace runs the coordinate transform over the geometry's flat
// coordinate buffer. go-geom stores XY interleaved, so the pairs are split
// into parallel slices for GDAL and written back.
func transformInPlace(tr *godal.Transform, g geom.T) error {
	flat := g.FlatCoords()
	stride := g.Stride()
	n := len(flat) / stride

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = flat[i*stride]
		ys[i] = flat[i*stride+1]
	}

	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return eris.Wrap(err, "vector: coordinate transform")
	}

	for i := 0; i < n; i++ {
		flat[i*stride] = xs[i]
		flat[i*stride+1] = ys[i]
	}
	return nil
}

func setSRID(g geom.T, srid int) {
	switch t := g.(type) {
	case *geom.Point:
		t.SetSRID(srid)
	case *geom.MultiPoint:
		t.SetSRID(srid)
	case *geom.LineString:
		t.SetSRID(srid)
	case *geom.MultiLineString:
		t.SetSRID(srid)
	case *geom.Polygon:
		t.SetSRID(srid)
	case *geom.MultiPolygon:
		t.SetSRID(srid)
	}
}
