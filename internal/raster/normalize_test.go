package raster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, IsConvertible("water_2020152"))
	assert.False(t, IsConvertible("water_2020152.hdr"))
	assert.False(t, IsConvertible("water_2020152.tif"))

	assert.True(t, IsNormalized("water_2020152.tif"))
	assert.True(t, IsNormalized("water_2020152.TIF"))
	assert.False(t, IsNormalized("water_2020152"))
	assert.False(t, IsNormalized("water_2020152.hdr"))
}

// The cleanup is destructive and irrecoverable if the pattern logic is
// wrong, so it is pinned down against a staging directory: afterwards only
// normalized files remain and no normalized file was deleted.
func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"water_2020152",
		"water_2020152.hdr",
		"water_2020152.tif",
		"qa_2020152",
		"qa_2020152.hdr",
		"qa_2020152.tif",
	}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	removed, err := Cleanup(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var remaining []string
	for _, e := range entries {
		remaining = append(remaining, e.Name())
	}
	assert.ElementsMatch(t, []string{"water_2020152.tif", "qa_2020152.tif"}, remaining)
}

func TestCleanupLeavesSubdirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.hdr"), []byte("x"), 0o644))

	removed, err := Cleanup(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, "nested"))
	assert.NoError(t, err)
}

func TestCleanupMissingDir(t *testing.T) {
	_, err := Cleanup(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
