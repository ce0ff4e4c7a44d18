package vector

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// WriteGeoJSON persists a layer as a GeoJSON FeatureCollection, the
// display-friendly format the dashboard consumes. The caller is expected to
// have reprojected the layer to the display CRS already.
func WriteGeoJSON(l *Layer, path string) error {
	fc := &geojson.FeatureCollection{}
	for _, f := range l.Features {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   f.Geom,
			Properties: f.Props,
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "vector: marshal %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "vector: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "vector: write %s", path)
	}
	return nil
}

// ReadGeoJSON loads a persisted layer. The EPSG is supplied by the caller
// since GeoJSON itself does not carry one.
func ReadGeoJSON(path string, epsg int) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "vector: unmarshal %s", path)
	}

	layer := &Layer{EPSG: epsg}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		layer.Features = append(layer.Features, Feature{
			ID:    f.ID,
			Props: f.Properties,
			Geom:  f.Geometry,
		})
	}
	if len(layer.Features) == 0 {
		return nil, eris.Errorf("vector: %s contains no features", path)
	}
	return layer, nil
}
