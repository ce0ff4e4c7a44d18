package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
)

// CropToCutline crops and masks a raster to a polygon boundary file
// (GeoJSON or any OGR-readable layer), writing a GeoTIFF. Cells outside the
// boundary become nodata.
func CropToCutline(srcPath, cutlinePath, dstPath string, nodata float64) error {
	if _, err := os.Stat(cutlinePath); err != nil {
		return eris.Errorf("raster: cutline %s missing, run the boundaries stage first", cutlinePath)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return eris.Wrapf(err, "raster: create dir for %s", dstPath)
	}

	ds, err := open(srcPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	warped, err := ds.Warp(dstPath, []string{
		"-of", "GTiff",
		"-cutline", cutlinePath,
		"-crop_to_cutline",
		"-dstnodata", formatFloat(nodata),
	})
	if err != nil {
		return eris.Wrapf(err, "raster: crop %s to %s", srcPath, cutlinePath)
	}
	return warped.Close()
}

// ResampleToGrid resamples a raster onto the exact grid of target using
// nearest-neighbor interpolation, which is safe for categorical water flags.
func ResampleToGrid(srcPath, dstPath string, target *Grid) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return eris.Wrapf(err, "raster: create dir for %s", dstPath)
	}

	ds, err := open(srcPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	minX, minY, maxX, maxY := target.Extent()
	warped, err := ds.Warp(dstPath, []string{
		"-of", "GTiff",
		"-te", formatFloat(minX), formatFloat(minY), formatFloat(maxX), formatFloat(maxY),
		"-ts", strconv.Itoa(target.W), strconv.Itoa(target.H),
		"-r", "near",
	})
	if err != nil {
		return eris.Wrapf(err, "raster: resample %s", srcPath)
	}
	return warped.Close()
}

// AggregateForDisplay produces the coarse display version of a raster:
// spatial aggregation by the given factor with the modal (most frequent
// value) reducer, reprojected to the display CRS.
func AggregateForDisplay(srcPath, dstPath string, factor, toEPSG int) error {
	if factor < 1 {
		return eris.Errorf("raster: aggregation factor %d must be >= 1", factor)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return eris.Wrapf(err, "raster: create dir for %s", dstPath)
	}

	ds, err := open(srcPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	gt, err := ds.GeoTransform()
	if err != nil {
		return eris.Wrapf(err, "raster: geotransform of %s", srcPath)
	}
	resX := gt[1] * float64(factor)
	resY := -gt[5] * float64(factor)

	warped, err := ds.Warp(dstPath, []string{
		"-of", "GTiff",
		"-t_srs", fmt.Sprintf("EPSG:%d", toEPSG),
		"-tr", formatFloat(resX), formatFloat(resY),
		"-r", "mode",
	})
	if err != nil {
		return eris.Wrapf(err, "raster: aggregate %s", srcPath)
	}
	return warped.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
