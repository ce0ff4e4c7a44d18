package raster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernmvcd/wnv-pipeline/internal/config"
)

func testRasterConfig() config.RasterConfig {
	return config.RasterConfig{DateField: 1, DateFormat: "2006002", QualityBadFlag: 1}
}

func TestParseAcquisitionDate(t *testing.T) {
	t.Parallel()

	rc := testRasterConfig()

	d, err := ParseAcquisitionDate("water_2020152.tif", rc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 31, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseAcquisitionDate("/some/dir/qa_2021001.tif", rc)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01", DateKey(d))
}

func TestParseAcquisitionDateBadName(t *testing.T) {
	t.Parallel()

	rc := testRasterConfig()

	_, err := ParseAcquisitionDate("nodate.tif", rc)
	assert.Error(t, err)

	_, err = ParseAcquisitionDate("water_notadate.tif", rc)
	assert.Error(t, err)
}

func TestExcludedDates(t *testing.T) {
	t.Parallel()

	set := ExcludedDates(config.RepairConfig{
		DropDates:     []string{"2020-03-05"},
		SmallGapDates: []string{"2020-06-21"},
		LargeGapDates: []string{"2020-10-15", "2020-10-31"},
	})

	assert.Len(t, set, 4)
	assert.True(t, set["2020-03-05"])
	assert.True(t, set["2020-10-31"])
	assert.False(t, set["2020-01-01"])
}
