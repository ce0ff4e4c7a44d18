package render

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/basicfont"

	"github.com/kernmvcd/wnv-pipeline/pkg/tiles"
)

// Quad is one water cell's footprint in lon/lat, corner order
// NW, NE, SE, SW.
type Quad [4][2]float64

// Frame describes one still map: basemap tiles, the zip boundary, the
// date's water cells, and the date label.
type Frame struct {
	View     View
	Basemap  map[tiles.TileKey]image.Image
	Boundary orb.MultiPolygon
	Water    []Quad
	Label    string
}

// Compose rasterizes a frame. Layer order is basemap, boundary outline,
// then the translucent water overlay on top; the water alpha is chosen so
// the boundary stays visible underneath it.
func Compose(f Frame) image.Image {
	dc := gg.NewContext(f.View.W, f.View.H)

	// Flat fallback background for tiles that are missing or disabled.
	dc.SetRGB(0.16, 0.17, 0.18)
	dc.Clear()

	for key, img := range f.Basemap {
		px, py := f.View.TilePixel(key.X, key.Y)
		dc.Push()
		dc.Translate(px, py)
		dc.Scale(f.View.Scale(), f.View.Scale())
		dc.DrawImage(img, 0, 0)
		dc.Pop()
	}

	// Zip boundary outline.
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.SetLineWidth(2)
	for _, poly := range f.Boundary {
		for _, ring := range poly {
			tracePath(dc, f.View, ring)
			dc.Stroke()
		}
	}

	// Water overlay, translucent so the outline reads through it.
	dc.SetRGBA(0.1, 0.45, 0.85, 0.55)
	for _, q := range f.Water {
		dc.NewSubPath()
		for i, c := range q {
			px, py := f.View.Project(c[0], c[1])
			if i == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.ClosePath()
	}
	dc.Fill()

	drawLabel(dc, f.Label)
	return dc.Image()
}

func tracePath(dc *gg.Context, v View, ring orb.Ring) {
	dc.NewSubPath()
	for i, c := range ring {
		px, py := v.Project(c[0], c[1])
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
}

// drawLabel paints the date badge at a fixed position in the top-left
// corner.
func drawLabel(dc *gg.Context, label string) {
	if label == "" {
		return
	}
	dc.SetRGBA(0, 0, 0, 0.65)
	dc.DrawRectangle(12, 12, 130, 26)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, 22, 29)
}
