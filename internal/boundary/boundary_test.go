package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kernmvcd/wnv-pipeline/internal/vector"
)

func TestZipID(t *testing.T) {
	t.Parallel()

	withAttr := vector.Feature{ID: "12", Props: map[string]any{"zip_code": "93280"}}
	assert.Equal(t, "93280", ZipID(withAttr, "zip_code"))

	withoutAttr := vector.Feature{ID: "93308", Props: map[string]any{}}
	assert.Equal(t, "93308", ZipID(withoutAttr, "zip_code"))
}

func TestSelectCounty(t *testing.T) {
	t.Parallel()

	layer := &vector.Layer{EPSG: 4269, Features: []vector.Feature{
		{ID: "1", Props: map[string]any{"name": "Kern"}},
		{ID: "2", Props: map[string]any{"name": "kern"}},
		{ID: "3", Props: map[string]any{"name": "Fresno"}},
	}}

	out := selectCounty(layer, "name", "Kern")
	assert.Len(t, out.Features, 2)

	none := selectCounty(layer, "name", "Inyo")
	assert.Empty(t, none.Features)
}
