package vector

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoJSONRoundTrip(t *testing.T) {
	layer := &Layer{EPSG: 4326, Features: []Feature{
		rectFeature("93280", -119.5, 35.0, -119.0, 35.5),
		rectFeature("93308", -119.0, 35.0, -118.5, 35.5),
	}}

	path := filepath.Join(t.TempDir(), "zips.geojson")
	require.NoError(t, WriteGeoJSON(layer, path))

	got, err := ReadGeoJSON(path, 4326)
	require.NoError(t, err)
	require.Len(t, got.Features, 2)
	assert.Equal(t, 4326, got.EPSG)
	assert.Equal(t, "93280", got.Features[0].ID)
	assert.Equal(t, "93308", got.Features[1].PropString("zip_code"))
	assert.InDelta(t, Area(layer.Features[0].Geom), Area(got.Features[0].Geom), 1e-9)
}

func TestReadGeoJSONMissingFile(t *testing.T) {
	_, err := ReadGeoJSON(filepath.Join(t.TempDir(), "absent.geojson"), 4326)
	assert.Error(t, err)
}
