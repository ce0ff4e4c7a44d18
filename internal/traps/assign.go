// Package traps assigns mosquito trap clusters to zip codes and tidies the
// three trap-observation tables for the dashboard.
package traps

import (
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/boundary"
	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/vector"
)

// Assignment records which zip polygon encloses a trap cluster's centroid,
// with the cluster's planar area carried along for the dashboard.
type Assignment struct {
	Cluster string
	Zip     string
	AreaM2  float64
}

// BuildAssignments spatially joins each cluster centroid to its enclosing
// zip polygon in the planar CRS, then applies the configured manual
// overrides. Clusters whose centroid falls in no zip and have no override
// are dropped; the downstream table joins are inner joins.
func BuildAssignments(cfg *config.Config) (map[string]Assignment, error) {
	log := zap.L().With(zap.String("stage", "traps"))

	clusters, err := vector.ReadShapefile(cfg.Paths.ClusterShapefile, cfg.Boundary.ClusterEPSG)
	if err != nil {
		return nil, err
	}
	zips, err := boundary.LoadZips(cfg)
	if err != nil {
		return nil, err
	}
	for _, l := range []*vector.Layer{clusters, zips} {
		if err := vector.Reproject(l, cfg.Boundary.PlanarEPSG); err != nil {
			return nil, err
		}
	}

	assignments := make(map[string]Assignment, len(clusters.Features))
	for _, f := range clusters.Features {
		id := clusterID(f, cfg.Traps.ClusterField)
		cx, cy := vector.Centroid(f.Geom)
		zip := enclosingZip(zips, cfg.Boundary.ZipField, cx, cy)
		if zip == "" {
			log.Debug("cluster centroid outside every zip, dropping",
				zap.String("cluster", id))
			continue
		}
		assignments[id] = Assignment{Cluster: id, Zip: zip, AreaM2: vector.Area(f.Geom)}
	}

	// Manual corrections for centroids that land just outside their intended
	// zip. These replace both the zip and the area attribute.
	for id, ov := range cfg.Traps.Overrides {
		assignments[id] = Assignment{Cluster: id, Zip: ov.Zip, AreaM2: ov.AreaM2}
	}

	log.Info("trap clusters assigned",
		zap.Int("clusters", len(clusters.Features)),
		zap.Int("assigned", len(assignments)),
		zap.Int("overridden", len(cfg.Traps.Overrides)),
	)
	return assignments, nil
}

func clusterID(f vector.Feature, field string) string {
	if id := f.PropString(field); id != "" {
		return id
	}
	return f.ID
}

func enclosingZip(zips *vector.Layer, zipField string, x, y float64) string {
	for _, f := range zips.Features {
		if vector.Contains(f.Geom, x, y) {
			return boundary.ZipID(f, zipField)
		}
	}
	return ""
}
