package render

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/boundary"
	"github.com/kernmvcd/wnv-pipeline/internal/config"
	"github.com/kernmvcd/wnv-pipeline/internal/raster"
	"github.com/kernmvcd/wnv-pipeline/internal/vector"
	"github.com/kernmvcd/wnv-pipeline/pkg/tiles"
)

// scratchFrame is the temporary frame artifact. It is overwritten between
// iterations rather than accumulated; with hundreds of zip-date pairs,
// unique names would flood the scratch directory.
const scratchFrame = "frame.jpg"

// Animate renders one video per zip code: for every valid acquisition date,
// a still map of that zip's water extent, encoded in ascending date order.
// The scratch frame is shared state, so zips are processed strictly
// sequentially.
func Animate(ctx context.Context, cfg *config.Config) error {
	log := zap.L().With(zap.String("stage", "animate"))

	// Two copies of the zip layer: display CRS for drawing, imagery CRS for
	// the cell containment test.
	zipsDisplay, err := boundary.LoadZips(cfg)
	if err != nil {
		return err
	}
	zipsGrid, err := boundary.LoadZips(cfg)
	if err != nil {
		return err
	}
	if err := vector.Reproject(zipsGrid, cfg.Raster.SourceEPSG); err != nil {
		return err
	}

	rasters, err := raster.CroppedRasters(cfg, raster.ExcludedDates(cfg.Repair))
	if err != nil {
		return err
	}
	if len(rasters) == 0 {
		return eris.New("render: no valid acquisition dates to animate")
	}

	var fetcher *tiles.Fetcher
	if cfg.Render.TileURL != "" {
		fetcher = tiles.NewFetcher(cfg.Render.TileURL, cfg.Render.TileCacheDir,
			tiles.WithRateLimit(cfg.Render.TileRPS),
			tiles.WithWorkers(cfg.Render.TileFetchers),
		)
	}

	settle := time.Duration(cfg.Render.SettleDelayMS) * time.Millisecond
	scratch := filepath.Join(cfg.Paths.ScratchDir, scratchFrame)
	bar := progressbar.Default(int64(len(zipsDisplay.Features)), "rendering zips")

	for i, f := range zipsDisplay.Features {
		zip := boundary.ZipID(f, cfg.Boundary.ZipField)
		gridZone := vector.ToOrb(zipsGrid.Features[i].Geom)

		if err := animateZip(ctx, cfg, zip, f, gridZone, rasters, fetcher, settle, scratch); err != nil {
			return eris.Wrapf(err, "render: zip %s", zip)
		}
		_ = bar.Add(1)
	}

	log.Info("animations rendered",
		zap.Int("zips", len(zipsDisplay.Features)),
		zap.Int("frames_per_zip", len(rasters)),
	)
	return nil
}

func animateZip(
	ctx context.Context,
	cfg *config.Config,
	zip string,
	display vector.Feature,
	gridZone orb.MultiPolygon,
	rasters []raster.DatedRaster,
	fetcher *tiles.Fetcher,
	settle time.Duration,
	scratch string,
) error {
	minLon, minLat, maxLon, maxLat := vector.Bounds(display.Geom)
	view := NewView(minLon, minLat, maxLon, maxLat, cfg.Render.Width, cfg.Render.Height, cfg.Render.Zoom)
	outline := vector.ToOrb(display.Geom)

	var basemap map[tiles.TileKey]image.Image
	if fetcher != nil {
		var err error
		basemap, err = fetcher.FetchRange(ctx, tiles.Cover(minLon, minLat, maxLon, maxLat, cfg.Render.Zoom))
		if err != nil {
			return err
		}
	}

	video, err := NewVideo(filepath.Join(cfg.Paths.VideoDir, fmt.Sprintf("%s.avi", zip)),
		cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS)
	if err != nil {
		return err
	}
	defer video.Close()

	for _, r := range rasters {
		g, err := raster.Load(r.Path)
		if err != nil {
			return err
		}
		water, err := WaterQuads(g, gridZone, cfg.Raster.SourceEPSG, cfg.Boundary.DisplayEPSG)
		if err != nil {
			return err
		}

		img := Compose(Frame{
			View:     view,
			Basemap:  basemap,
			Boundary: outline,
			Water:    water,
			Label:    r.Date.Format("Jan 02, 2006"),
		})
		if err := SaveJPEG(img, scratch); err != nil {
			return err
		}

		// Let the basemap settle before capturing the frame; capturing
		// immediately races tile paint and produces partially blank frames.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}

		if err := video.AddFrameFile(scratch); err != nil {
			return err
		}
	}
	return video.Close()
}

// WaterQuads extracts the footprints of the water-flagged cells inside the
// zone and reprojects them for drawing. The zone must be in the grid's CRS.
func WaterQuads(g *raster.Grid, zone orb.MultiPolygon, fromEPSG, toEPSG int) ([]Quad, error) {
	type cell struct{ col, row int }
	var cells []cell
	for row := 0; row < g.H; row++ {
		for col := 0; col < g.W; col++ {
			v := g.At(col, row)
			if g.IsNoData(v) || v != raster.WaterFlag {
				continue
			}
			x, y := g.CellCenter(col, row)
			if planar.MultiPolygonContains(zone, orb.Point{x, y}) {
				cells = append(cells, cell{col, row})
			}
		}
	}

	// One batched transform over all corners.
	xs := make([]float64, 0, len(cells)*4)
	ys := make([]float64, 0, len(cells)*4)
	for _, c := range cells {
		x0 := g.GT[0] + float64(c.col)*g.GT[1]
		x1 := x0 + g.GT[1]
		y0 := g.GT[3] + float64(c.row)*g.GT[5]
		y1 := y0 + g.GT[5]
		xs = append(xs, x0, x1, x1, x0)
		ys = append(ys, y0, y0, y1, y1)
	}
	if err := vector.ReprojectCoords(xs, ys, fromEPSG, toEPSG); err != nil {
		return nil, err
	}

	quads := make([]Quad, len(cells))
	for i := range cells {
		for j := 0; j < 4; j++ {
			quads[i][j] = [2]float64{xs[i*4+j], ys[i*4+j]}
		}
	}
	return quads, nil
}
