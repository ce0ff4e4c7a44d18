package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3310, cfg.Boundary.PlanarEPSG)
	assert.Equal(t, 4326, cfg.Boundary.DisplayEPSG)
	assert.InDelta(t, 1_000_000, cfg.Boundary.MinZipAreaM2, 0.001)
	assert.Equal(t, "Kern", cfg.Boundary.CountyName)
	assert.Equal(t, []int{2020, 2021}, cfg.Raster.Years)
	assert.Equal(t, 1, cfg.Raster.DateField)
	assert.Equal(t, "2006002", cfg.Raster.DateFormat)
	assert.InDelta(t, 1, cfg.Raster.QualityBadFlag, 0.001)
	assert.Equal(t, 32611, cfg.Raster.SourceEPSG)
	assert.InDelta(t, 900, cfg.Zonal.CellAreaM2, 0.001)
	assert.Equal(t, "cluster_id", cfg.Traps.ClusterField)
	assert.Equal(t, []string{"2020-03-05", "2021-12-18"}, cfg.Repair.DropDates)
	assert.Equal(t, []string{"2020-06-21", "2021-07-08"}, cfg.Repair.SmallGapDates)
	assert.Len(t, cfg.Repair.LargeGapDates, 3)
	assert.Equal(t, 2, cfg.Render.FPS)
	assert.Equal(t, 250, cfg.Render.SettleDelayMS)
	assert.Equal(t, "wnv-pipeline.db", cfg.Store.Path)
	assert.Equal(t, 8081, cfg.Serve.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Cluster overrides arrive as typed config, not inline literals.
	require.Contains(t, cfg.Traps.Overrides, "7")
	require.Contains(t, cfg.Traps.Overrides, "95")
	assert.Equal(t, "93280", cfg.Traps.Overrides["7"].Zip)
	assert.Equal(t, "93308", cfg.Traps.Overrides["95"].Zip)
	assert.Greater(t, cfg.Traps.Overrides["7"].AreaM2, 0.0)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
boundary:
  planar_epsg: 32611
  min_zip_area_m2: 500000
repair:
  small_gap_dates: ["2020-05-09"]
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 32611, cfg.Boundary.PlanarEPSG)
	assert.InDelta(t, 500_000, cfg.Boundary.MinZipAreaM2, 0.001)
	assert.Equal(t, []string{"2020-05-09"}, cfg.Repair.SmallGapDates)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 4326, cfg.Boundary.DisplayEPSG)
	assert.Equal(t, 2, cfg.Render.FPS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: from-file.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("WNV_STORE_PATH", "from-env.db")
	t.Setenv("WNV_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

// The commented scaffold must stay in lockstep with setDefaults: loading it
// as the config file yields exactly the defaults-only configuration.
func TestDefaultYAMLMatchesDefaults(t *testing.T) {
	origDir, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.Chdir(t.TempDir()))
	defaults, err := Load()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(DefaultYAML), 0o644))
	fromScaffold, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaults, fromScaffold)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("WNV_SERVE_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Serve.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
