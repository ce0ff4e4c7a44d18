package temps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBreakpoints(t *testing.T) {
	cases := []struct {
		celsius float64
		want    string
	}{
		{20.0, CategoryInRange},
		{23.9, CategoryOptimal},
		{22.9, CategoryOptimal}, // lower optimal bound inclusive
		{27.1, CategoryOptimal}, // upper optimal bound inclusive
		{27.2, CategoryInRange},
		{12.1, CategoryInRange}, // lower in-range bound inclusive
		{31.9, CategoryInRange}, // upper in-range bound inclusive
		{12.0, CategoryOutRange},
		{35.0, CategoryOutRange},
		{10.0, CategoryOutRange},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.celsius), "%.1f °C", c.celsius)
	}
}

func TestFahrenheit(t *testing.T) {
	assert.InDelta(t, 32, Fahrenheit(0), 1e-9)
	assert.InDelta(t, 212, Fahrenheit(100), 1e-9)
	assert.InDelta(t, 68, Fahrenheit(20), 1e-9)
}

func TestParseImageDate(t *testing.T) {
	date, err := ParseImageDate("20200605T183000_MOD09GA")
	require.NoError(t, err)
	assert.Equal(t, "2020-06-05", date.Format("2006-01-02"))
}

func TestParseImageDateRejectsMalformedID(t *testing.T) {
	_, err := ParseImageDate("junk")
	assert.Error(t, err)

	_, err = ParseImageDate("2020ABCD_scene")
	assert.Error(t, err)
}

func TestTidyRecord(t *testing.T) {
	rec, err := tidy(rawRecord{ImageID: "20210708_scene", Zip: "93280", MeanC: 25})
	require.NoError(t, err)
	assert.Equal(t, "93280", rec.Zip)
	assert.Equal(t, "2021-07-08", rec.Date)
	assert.InDelta(t, 25, rec.MeanC, 1e-9)
	assert.InDelta(t, 77, rec.MeanF, 1e-9)
	assert.Equal(t, CategoryOptimal, rec.Category)
}
