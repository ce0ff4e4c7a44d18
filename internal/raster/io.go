package raster

import (
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
)

// godal leaves GDAL driver registration to the caller; without it no format
// can be opened or created. Registration is process-wide and idempotent.
func init() {
	godal.RegisterAll()
}

// open opens a raster dataset, suppressing GDAL warnings the way the rest of
// the pipeline expects: warnings are noise, real errors abort.
func open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return eris.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	return ds, nil
}

// Load reads band 1 of a raster file into memory.
func Load(path string) (*Grid, error) {
	ds, err := open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	st := ds.Structure()
	w, h := st.SizeX, st.SizeY

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrapf(err, "raster: geotransform of %s", path)
	}

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, eris.Errorf("raster: %s has no bands", path)
	}
	band := bands[0]

	data := make([]float64, w*h)
	if err := band.Read(0, 0, data, w, h); err != nil {
		return nil, eris.Wrapf(err, "raster: read %s", path)
	}

	g := &Grid{W: w, H: h, GT: gt, Data: data, SrcPath: path}
	if nodata, ok := band.NoData(); ok {
		g.NoData = nodata
		g.HasNoData = true
	}
	return g, nil
}

// Save writes a grid as a single-band GeoTIFF. The spatial reference is
// copied from the grid's source file when one is recorded.
func Save(g *Grid, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "raster: create dir for %s", path)
	}

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, g.W, g.H)
	if err != nil {
		return eris.Wrapf(err, "raster: create %s", path)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(g.GT); err != nil {
		return eris.Wrapf(err, "raster: set geotransform of %s", path)
	}

	if g.SrcPath != "" {
		src, err := open(g.SrcPath)
		if err != nil {
			return err
		}
		sr := src.SpatialRef()
		if err := ds.SetSpatialRef(sr); err != nil {
			src.Close()
			return eris.Wrapf(err, "raster: set spatial ref of %s", path)
		}
		src.Close()
	}

	band := ds.Bands()[0]
	if g.HasNoData {
		if err := band.SetNoData(g.NoData); err != nil {
			return eris.Wrapf(err, "raster: set nodata of %s", path)
		}
	}
	if err := band.Write(0, 0, g.Data, g.W, g.H); err != nil {
		return eris.Wrapf(err, "raster: write %s", path)
	}
	return nil
}
