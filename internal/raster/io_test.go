package raster

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Save and Load go through GDAL's driver registry, which must hold the
// GeoTIFF driver before the first dataset is touched. A grid must survive
// the round trip with its geotransform and nodata intact.
func TestSaveLoadRoundTrip(t *testing.T) {
	g := NewGrid(3, 2, [6]float64{0, 30, 0, 60, 0, -30}, DefaultNoData)
	g.Set(0, 0, WaterFlag)
	g.Set(1, 0, 0)
	g.Set(2, 1, WaterFlag)

	path := filepath.Join(t.TempDir(), "roundtrip.tif")
	require.NoError(t, Save(g, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.W, got.W)
	assert.Equal(t, g.H, got.H)
	assert.Equal(t, g.GT, got.GT)
	require.True(t, got.HasNoData)
	assert.Equal(t, g.NoData, got.NoData)
	assert.Equal(t, g.Data, got.Data)
}
