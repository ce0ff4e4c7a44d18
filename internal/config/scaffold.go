package config

// DefaultYAML is the commented configuration scaffold written by
// `wnv-pipeline config init`. Every value shown is the default; keep it in
// sync with setDefaults (pinned by a test).
const DefaultYAML = `# wnv-pipeline configuration. Every value below is the default; any key can
# also be set through the environment with the WNV_ prefix
# (e.g. WNV_SERVE_PORT=9090).

paths:
  # Inputs.
  county_shapefile: data/shapefiles/ca_counties.shp
  basin_shapefile: data/shapefiles/kern_subbasin.shp
  zip_shapefile: data/shapefiles/ca_zipcodes.shp
  cluster_shapefile: data/shapefiles/trap_clusters.shp
  imagery_root: data/imagery
  temperature_csv: data/tables/zip_daily_temperature.csv
  trap_mir_csv: data/tables/trap_mir.csv
  trap_pools_csv: data/tables/trap_pools.csv
  trap_abundance_csv: data/tables/trap_abundance.csv
  efficiency_raster: data/rasters/transmission_efficiency.tif
  # Outputs.
  boundary_dir: out/boundaries
  merged_dir: out/merged
  cropped_dir: out/cropped
  persistence_dir: out/persistence
  tables_dir: out/tables
  video_dir: out/videos
  scratch_dir: out/scratch

boundary:
  # Projected CRS for overlay and area computation (California Albers,
  # meters) and the geographic CRS of the persisted display layers.
  planar_epsg: 3310
  display_epsg: 4326
  # Clipped zip polygons below this planar area are edge slivers, not
  # measurements, and are dropped.
  min_zip_area_m2: 1000000
  # Source CRS of each shapefile; shapefiles carry no machine-readable EPSG.
  county_epsg: 4269
  basin_epsg: 4326
  zip_epsg: 4326
  cluster_epsg: 4326
  county_name: Kern
  county_field: name
  zip_field: zip_code

raster:
  # Acquisition-year batches, in the order their zonal results are
  # concatenated.
  years: [2020, 2021]
  # Zero-based underscore-delimited filename field carrying the acquisition
  # date, and its layout (year plus day-of-year).
  date_field: 1
  date_format: "2006002"
  quality_bad_flag: 1
  # Projected CRS the imagery provider delivers in (UTM zone 11N).
  source_epsg: 32611

zonal:
  cell_area_m2: 900

# Cloud-correction policy: literal date lists so the policy can be audited
# and changed without touching pipeline logic.
repair:
  # Too few usable neighbors to interpolate; removed.
  drop_dates: ["2020-03-05", "2021-12-18"]
  # Replaced with the mean of the two adjacent values.
  small_gap_dates: ["2020-06-21", "2021-07-08"]
  # Nulled, then linearly interpolated in date order.
  large_gap_dates: ["2020-10-15", "2020-10-31", "2021-02-17"]

render:
  fps: 2
  width: 800
  height: 800
  tile_url: https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}
  zoom: 12
  tile_cache_dir: out/tilecache
  tile_rps: 4
  tile_fetchers: 4
  # Wait before each frame capture, giving the basemap fetch time to fill
  # in. Empirically tuned; keep it a real wait.
  settle_delay_ms: 250

traps:
  cluster_field: cluster_id
  # Clusters whose centroid lands just outside their intended zip.
  overrides:
    "7": {zip: "93280", area_m2: 16000000}
    "95": {zip: "93308", area_m2: 9300000}

store:
  path: wnv-pipeline.db

serve:
  port: 8081
  allowed_origins: ["*"]

log:
  level: info   # debug, info, warn, error
  format: json  # json or console
`
