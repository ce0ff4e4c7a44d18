package render

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewProjectCorners(t *testing.T) {
	v := NewView(-119.2, 35.2, -118.8, 35.5, 800, 800, 12)

	// The box is wider than tall in mercator, so the x extent fills the
	// canvas and y is centered.
	px, py := v.Project(-119.2, 35.5)
	assert.InDelta(t, 0, px, 0.5)
	assert.Greater(t, py, 0.0)

	px, _ = v.Project(-118.8, 35.5)
	assert.InDelta(t, 800, px, 0.5)

	// North has a smaller pixel y than south.
	_, north := v.Project(-119.0, 35.5)
	_, south := v.Project(-119.0, 35.2)
	assert.Less(t, north, south)
}

func TestComposeDrawsWaterAndLabel(t *testing.T) {
	v := NewView(-119.2, 35.2, -118.8, 35.5, 200, 200, 12)
	boundary := orb.MultiPolygon{{
		{{-119.2, 35.2}, {-118.8, 35.2}, {-118.8, 35.5}, {-119.2, 35.5}, {-119.2, 35.2}},
	}}
	water := []Quad{{
		{-119.05, 35.34}, {-118.95, 35.34}, {-118.95, 35.36}, {-119.05, 35.36},
	}}

	img := Compose(Frame{View: v, Boundary: boundary, Water: water, Label: "Jun 21, 2020"})
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 200, img.Bounds().Dy())

	// A pixel inside the water quad is strongly blue, well past the
	// near-neutral background.
	px, py := v.Project(-119.0, 35.35)
	r, _, b, _ := img.At(int(px), int(py)).RGBA()
	assert.Greater(t, b, uint32(20000))
	assert.Greater(t, b, 2*r)
}

func TestComposeWithoutBasemapUsesFallbackBackground(t *testing.T) {
	v := NewView(-119.2, 35.2, -118.8, 35.5, 64, 64, 10)
	img := Compose(Frame{View: v})
	r, g, b, a := img.At(32, 32).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	// Neutral gray: channels close together.
	assert.InDelta(t, float64(r), float64(g), 2000)
	assert.InDelta(t, float64(g), float64(b), 2000)
}

func TestVideoEncodesThreeFramesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "93280.avi")

	video, err := NewVideo(path, 64, 64, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, video.AddFrame(image.NewRGBA(image.Rect(0, 0, 64, 64))))
	}
	require.NoError(t, video.Close())
	assert.Equal(t, 3, video.Frames())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestVideoCloseIsIdempotent(t *testing.T) {
	video, err := NewVideo(filepath.Join(t.TempDir(), "v.avi"), 32, 32, 2)
	require.NoError(t, err)
	require.NoError(t, video.Close())
	assert.NoError(t, video.Close())
}

func TestScratchFrameOverwrittenInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, scratchFrame)

	v := NewView(-119.2, 35.2, -118.8, 35.5, 32, 32, 10)
	require.NoError(t, SaveJPEG(Compose(Frame{View: v, Label: "a"}), path))
	require.NoError(t, SaveJPEG(Compose(Frame{View: v, Label: "b"}), path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
