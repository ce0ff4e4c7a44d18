// Package boundary prepares the study-region vector layers: the county
// clipped to the alluvial basin, and the zip-code polygons clipped to that
// region with sliver artifacts removed.
package boundary

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/vector"
)

// Persisted layer file names, consumed by later stages and the dashboard.
const (
	RegionFile = "region.geojson"
	BasinFile  = "basin.geojson"
	ZipsFile   = "zipcodes.geojson"
)

// AreaKey is the property under which the computed planar area is stored.
const AreaKey = "area_m2"

// Prepare reprojects the county, basin, and zip layers to a common planar
// CRS, intersects county with basin and zips with that region, drops zip
// slivers below the configured area threshold, and persists the three layers
// in the display CRS.
func Prepare(cfg *config.Config) error {
	log := zap.L().With(zap.String("stage", "boundaries"))

	counties, err := vector.ReadShapefile(cfg.Paths.CountyShapefile, cfg.Boundary.CountyEPSG)
	if err != nil {
		return err
	}
	basin, err := vector.ReadShapefile(cfg.Paths.BasinShapefile, cfg.Boundary.BasinEPSG)
	if err != nil {
		return err
	}
	zips, err := vector.ReadShapefile(cfg.Paths.ZipShapefile, cfg.Boundary.ZipEPSG)
	if err != nil {
		return err
	}

	county := selectCounty(counties, cfg.Boundary.CountyField, cfg.Boundary.CountyName)
	if len(county.Features) == 0 {
		return eris.Errorf("boundary: county %q not found in %s", cfg.Boundary.CountyName, cfg.Paths.CountyShapefile)
	}

	// Harmonize to the planar CRS before any overlay or area computation.
	for _, l := range []*vector.Layer{county, basin, zips} {
		if err := vector.Reproject(l, cfg.Boundary.PlanarEPSG); err != nil {
			return err
		}
	}

	countyGeom, err := vector.UnionAll(county)
	if err != nil {
		return err
	}

	// Study region is the part of the basin inside the county.
	region, err := vector.Intersect(basin, countyGeom)
	if err != nil {
		return err
	}
	if len(region.Features) == 0 {
		return eris.New("boundary: basin does not overlap the county")
	}
	regionGeom, err := vector.UnionAll(region)
	if err != nil {
		return err
	}

	clipped, err := vector.Intersect(zips, regionGeom)
	if err != nil {
		return err
	}
	filtered := vector.FilterByArea(clipped, cfg.Boundary.MinZipAreaM2, AreaKey)
	if len(filtered.Features) == 0 {
		return eris.New("boundary: no zip polygons remain after clipping and sliver filtering")
	}

	log.Info("boundary layers prepared",
		zap.Int("region_features", len(region.Features)),
		zap.Int("zips_in", len(zips.Features)),
		zap.Int("zips_out", len(filtered.Features)),
	)

	regionOut := &vector.Layer{EPSG: cfg.Boundary.PlanarEPSG, Features: []vector.Feature{{
		ID:    "region",
		Props: map[string]any{"name": cfg.Boundary.CountyName + " study region"},
		Geom:  regionGeom,
	}}}

	for _, l := range []*vector.Layer{regionOut, basin, filtered} {
		if err := vector.Reproject(l, cfg.Boundary.DisplayEPSG); err != nil {
			return err
		}
	}

	dir := cfg.Paths.BoundaryDir
	if err := vector.WriteGeoJSON(regionOut, filepath.Join(dir, RegionFile)); err != nil {
		return err
	}
	if err := vector.WriteGeoJSON(basin, filepath.Join(dir, BasinFile)); err != nil {
		return err
	}
	if err := vector.WriteGeoJSON(filtered, filepath.Join(dir, ZipsFile)); err != nil {
		return err
	}
	return nil
}

// LoadZips reads the filtered zip layer produced by Prepare.
func LoadZips(cfg *config.Config) (*vector.Layer, error) {
	return vector.ReadGeoJSON(filepath.Join(cfg.Paths.BoundaryDir, ZipsFile), cfg.Boundary.DisplayEPSG)
}

// LoadRegion reads the study-region layer produced by Prepare.
func LoadRegion(cfg *config.Config) (*vector.Layer, error) {
	return vector.ReadGeoJSON(filepath.Join(cfg.Paths.BoundaryDir, RegionFile), cfg.Boundary.DisplayEPSG)
}

// ZipID returns the zip-code identifier of a feature, preferring the
// configured zip attribute and falling back to the feature id.
func ZipID(f vector.Feature, zipField string) string {
	if z := f.PropString(zipField); z != "" {
		return z
	}
	return f.ID
}

func selectCounty(l *vector.Layer, field, name string) *vector.Layer {
	out := &vector.Layer{EPSG: l.EPSG}
	for _, f := range l.Features {
		if strings.EqualFold(f.PropString(field), name) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}
