package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full pipeline configuration. Every stage receives its
// input and output locations from here; nothing is resolved from an ambient
// working directory.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Raster   RasterConfig   `yaml:"raster" mapstructure:"raster"`
	Zonal    ZonalConfig    `yaml:"zonal" mapstructure:"zonal"`
	Repair   RepairConfig   `yaml:"repair" mapstructure:"repair"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Traps    TrapsConfig    `yaml:"traps" mapstructure:"traps"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Serve    ServeConfig    `yaml:"serve" mapstructure:"serve"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates every input artifact and output directory.
type PathsConfig struct {
	CountyShapefile  string `yaml:"county_shapefile" mapstructure:"county_shapefile"`
	BasinShapefile   string `yaml:"basin_shapefile" mapstructure:"basin_shapefile"`
	ZipShapefile     string `yaml:"zip_shapefile" mapstructure:"zip_shapefile"`
	ClusterShapefile string `yaml:"cluster_shapefile" mapstructure:"cluster_shapefile"`

	ImageryRoot      string `yaml:"imagery_root" mapstructure:"imagery_root"`
	TemperatureCSV   string `yaml:"temperature_csv" mapstructure:"temperature_csv"`
	TrapMIRCSV       string `yaml:"trap_mir_csv" mapstructure:"trap_mir_csv"`
	TrapPoolsCSV     string `yaml:"trap_pools_csv" mapstructure:"trap_pools_csv"`
	TrapAbundanceCSV string `yaml:"trap_abundance_csv" mapstructure:"trap_abundance_csv"`
	EfficiencyRaster string `yaml:"efficiency_raster" mapstructure:"efficiency_raster"`

	BoundaryDir    string `yaml:"boundary_dir" mapstructure:"boundary_dir"`
	MergedDir      string `yaml:"merged_dir" mapstructure:"merged_dir"`
	CroppedDir     string `yaml:"cropped_dir" mapstructure:"cropped_dir"`
	PersistenceDir string `yaml:"persistence_dir" mapstructure:"persistence_dir"`
	TablesDir      string `yaml:"tables_dir" mapstructure:"tables_dir"`
	VideoDir       string `yaml:"video_dir" mapstructure:"video_dir"`
	ScratchDir     string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
}

// BoundaryConfig configures the boundary preparation stage.
type BoundaryConfig struct {
	// PlanarEPSG is the projected CRS used for overlay and area computation.
	PlanarEPSG int `yaml:"planar_epsg" mapstructure:"planar_epsg"`
	// DisplayEPSG is the geographic CRS of the persisted display layers.
	DisplayEPSG int `yaml:"display_epsg" mapstructure:"display_epsg"`
	// MinZipAreaM2 is the sliver threshold: clipped zip polygons below this
	// planar area are edge artifacts, not measurements, and are dropped.
	MinZipAreaM2 float64 `yaml:"min_zip_area_m2" mapstructure:"min_zip_area_m2"`

	CountyEPSG  int    `yaml:"county_epsg" mapstructure:"county_epsg"`
	BasinEPSG   int    `yaml:"basin_epsg" mapstructure:"basin_epsg"`
	ZipEPSG     int    `yaml:"zip_epsg" mapstructure:"zip_epsg"`
	ClusterEPSG int    `yaml:"cluster_epsg" mapstructure:"cluster_epsg"`
	CountyName  string `yaml:"county_name" mapstructure:"county_name"`
	CountyField string `yaml:"county_field" mapstructure:"county_field"`
	ZipField    string `yaml:"zip_field" mapstructure:"zip_field"`
}

// RasterConfig configures imagery normalization and merging.
type RasterConfig struct {
	// Years are the acquisition-year batches, in the order their zonal
	// results are concatenated.
	Years []int `yaml:"years" mapstructure:"years"`
	// DateField is the zero-based underscore-delimited filename field that
	// carries the acquisition date.
	DateField int `yaml:"date_field" mapstructure:"date_field"`
	// DateFormat is the Go layout of that field (year plus day-of-year).
	DateFormat string `yaml:"date_format" mapstructure:"date_format"`
	// QualityBadFlag marks an unusable pixel in a quality raster.
	QualityBadFlag float64 `yaml:"quality_bad_flag" mapstructure:"quality_bad_flag"`
	// SourceEPSG is the fixed projected CRS the imagery provider delivers in.
	SourceEPSG int `yaml:"source_epsg" mapstructure:"source_epsg"`
}

// ZonalConfig configures zonal aggregation.
type ZonalConfig struct {
	// CellAreaM2 is the area of one raster cell in square meters.
	CellAreaM2 float64 `yaml:"cell_area_m2" mapstructure:"cell_area_m2"`
}

// RepairConfig is the cloud-correction policy: literal date lists, supplied
// as configuration so the policy can be audited and changed without touching
// pipeline logic.
type RepairConfig struct {
	// DropDates have too few neighbors to interpolate and are removed.
	DropDates []string `yaml:"drop_dates" mapstructure:"drop_dates"`
	// SmallGapDates are replaced with the mean of the two adjacent values.
	SmallGapDates []string `yaml:"small_gap_dates" mapstructure:"small_gap_dates"`
	// LargeGapDates are nulled and linearly interpolated in date order.
	LargeGapDates []string `yaml:"large_gap_dates" mapstructure:"large_gap_dates"`
}

// RenderConfig configures per-zip animation rendering.
type RenderConfig struct {
	FPS          int    `yaml:"fps" mapstructure:"fps"`
	Width        int    `yaml:"width" mapstructure:"width"`
	Height       int    `yaml:"height" mapstructure:"height"`
	TileURL      string `yaml:"tile_url" mapstructure:"tile_url"`
	Zoom         int    `yaml:"zoom" mapstructure:"zoom"`
	TileCacheDir string `yaml:"tile_cache_dir" mapstructure:"tile_cache_dir"`
	TileRPS      int    `yaml:"tile_rps" mapstructure:"tile_rps"`
	TileFetchers int    `yaml:"tile_fetchers" mapstructure:"tile_fetchers"`
	// SettleDelayMS is the wait before each frame capture, giving the basemap
	// fetch time to fill in. Empirically tuned; keep it a real wait.
	SettleDelayMS int `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
}

// ClusterOverride reassigns a trap cluster whose centroid falls just outside
// its intended zip polygon.
type ClusterOverride struct {
	Zip    string  `yaml:"zip" mapstructure:"zip"`
	AreaM2 float64 `yaml:"area_m2" mapstructure:"area_m2"`
}

// TrapsConfig configures trap-cluster zip assignment.
type TrapsConfig struct {
	// ClusterField is the attribute carrying the cluster identifier.
	ClusterField string `yaml:"cluster_field" mapstructure:"cluster_field"`
	// Overrides maps cluster id to a manual zip/area assignment.
	Overrides map[string]ClusterOverride `yaml:"overrides" mapstructure:"overrides"`
}

// StoreConfig configures the run-manifest database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServeConfig configures the artifact file server.
type ServeConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WNV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Inputs
	v.SetDefault("paths.county_shapefile", "data/shapefiles/ca_counties.shp")
	v.SetDefault("paths.basin_shapefile", "data/shapefiles/kern_subbasin.shp")
	v.SetDefault("paths.zip_shapefile", "data/shapefiles/ca_zipcodes.shp")
	v.SetDefault("paths.cluster_shapefile", "data/shapefiles/trap_clusters.shp")
	v.SetDefault("paths.imagery_root", "data/imagery")
	v.SetDefault("paths.temperature_csv", "data/tables/zip_daily_temperature.csv")
	v.SetDefault("paths.trap_mir_csv", "data/tables/trap_mir.csv")
	v.SetDefault("paths.trap_pools_csv", "data/tables/trap_pools.csv")
	v.SetDefault("paths.trap_abundance_csv", "data/tables/trap_abundance.csv")
	v.SetDefault("paths.efficiency_raster", "data/rasters/transmission_efficiency.tif")

	// Outputs
	v.SetDefault("paths.boundary_dir", "out/boundaries")
	v.SetDefault("paths.merged_dir", "out/merged")
	v.SetDefault("paths.cropped_dir", "out/cropped")
	v.SetDefault("paths.persistence_dir", "out/persistence")
	v.SetDefault("paths.tables_dir", "out/tables")
	v.SetDefault("paths.video_dir", "out/videos")
	v.SetDefault("paths.scratch_dir", "out/scratch")

	// Boundary prep
	v.SetDefault("boundary.planar_epsg", 3310) // California Albers, meters
	v.SetDefault("boundary.display_epsg", 4326)
	v.SetDefault("boundary.min_zip_area_m2", 1_000_000)
	v.SetDefault("boundary.county_epsg", 4269)
	v.SetDefault("boundary.basin_epsg", 4326)
	v.SetDefault("boundary.zip_epsg", 4326)
	v.SetDefault("boundary.cluster_epsg", 4326)
	v.SetDefault("boundary.county_name", "Kern")
	v.SetDefault("boundary.county_field", "name")
	v.SetDefault("boundary.zip_field", "zip_code")

	// Imagery
	v.SetDefault("raster.years", []int{2020, 2021})
	v.SetDefault("raster.date_field", 1)
	v.SetDefault("raster.date_format", "2006002")
	v.SetDefault("raster.quality_bad_flag", 1)
	v.SetDefault("raster.source_epsg", 32611)

	// Zonal
	v.SetDefault("zonal.cell_area_m2", 900)

	// Cloud-correction policy
	v.SetDefault("repair.drop_dates", []string{"2020-03-05", "2021-12-18"})
	v.SetDefault("repair.small_gap_dates", []string{"2020-06-21", "2021-07-08"})
	v.SetDefault("repair.large_gap_dates", []string{"2020-10-15", "2020-10-31", "2021-02-17"})

	// Rendering
	v.SetDefault("render.fps", 2)
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 800)
	v.SetDefault("render.tile_url", "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}")
	v.SetDefault("render.zoom", 12)
	v.SetDefault("render.tile_cache_dir", "out/tilecache")
	v.SetDefault("render.tile_rps", 4)
	v.SetDefault("render.tile_fetchers", 4)
	v.SetDefault("render.settle_delay_ms", 250)

	v.SetDefault("traps.cluster_field", "cluster_id")
	// Trap cluster overrides: centroids that land just outside their zip.
	v.SetDefault("traps.overrides", map[string]any{
		"7":  map[string]any{"zip": "93280", "area_m2": 16_000_000},
		"95": map[string]any{"zip": "93308", "area_m2": 9_300_000},
	})

	v.SetDefault("store.path", "wnv-pipeline.db")
	v.SetDefault("serve.port", 8081)
	v.SetDefault("serve.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
