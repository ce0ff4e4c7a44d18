package raster

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// NormalizedExt marks a self-contained raster that the cleanup step must
// never touch. The distinction between "normalized output" and "leftover
// original" is carried entirely by this extension.
const NormalizedExt = ".tif"

const headerExt = ".hdr"

// Normalize converts every paired binary+header raster in dir into a
// self-describing GeoTIFF, then destructively removes the originals.
// Reprocessing after this requires re-fetching source files.
func Normalize(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, eris.Wrapf(err, "raster: read dir %s", dir)
	}

	var converted int
	for _, e := range entries {
		if e.IsDir() || !IsConvertible(e.Name()) {
			continue
		}
		src := filepath.Join(dir, e.Name())
		dst := src + NormalizedExt

		ds, err := open(src)
		if err != nil {
			return converted, err
		}
		out, err := ds.Translate(dst, []string{"-of", "GTiff"})
		if err != nil {
			ds.Close()
			return converted, eris.Wrapf(err, "raster: normalize %s", src)
		}
		out.Close()
		ds.Close()
		converted++
	}

	removed, err := Cleanup(dir)
	if err != nil {
		return converted, err
	}
	zap.L().Info("raster: normalized imagery",
		zap.String("dir", dir),
		zap.Int("converted", converted),
		zap.Int("removed", removed),
	)
	return converted, nil
}

// IsConvertible reports whether a file name is an original extensionless
// binary raster (not a header, not already normalized).
func IsConvertible(name string) bool {
	return !IsNormalized(name) && !isHeader(name)
}

// IsNormalized reports whether a file name is a normalized output protected
// from cleanup.
func IsNormalized(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), NormalizedExt)
}

func isHeader(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), headerExt)
}

// Cleanup deletes every file in dir that is not a normalized raster: the
// original binaries and their headers. Normalized outputs are never removed.
func Cleanup(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, eris.Wrapf(err, "raster: read dir %s", dir)
	}

	var removed int
	for _, e := range entries {
		if e.IsDir() || IsNormalized(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, eris.Wrapf(err, "raster: remove %s", e.Name())
		}
		removed++
	}
	return removed, nil
}
