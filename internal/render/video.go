package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
	"github.com/rotisserie/eris"
)

const jpegQuality = 90

// Video encodes an ordered sequence of frames into a motion-JPEG AVI at a
// fixed frame rate.
type Video struct {
	aw     mjpeg.AviWriter
	frames int
	closed bool
}

// NewVideo creates the output file, creating parent directories as needed.
func NewVideo(path string, w, h, fps int) (*Video, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create dir for %s", path)
	}
	aw, err := mjpeg.New(path, int32(w), int32(h), int32(fps))
	if err != nil {
		return nil, eris.Wrapf(err, "render: create video %s", path)
	}
	return &Video{aw: aw}, nil
}

// AddFrame appends one frame.
func (v *Video) AddFrame(img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return eris.Wrap(err, "render: encode frame")
	}
	if err := v.aw.AddFrame(buf.Bytes()); err != nil {
		return eris.Wrap(err, "render: add frame")
	}
	v.frames++
	return nil
}

// AddFrameFile appends a frame already encoded as JPEG on disk.
func (v *Video) AddFrameFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "render: read frame %s", path)
	}
	if err := v.aw.AddFrame(data); err != nil {
		return eris.Wrap(err, "render: add frame")
	}
	v.frames++
	return nil
}

// Frames returns how many frames have been encoded.
func (v *Video) Frames() int { return v.frames }

// Close finalizes the AVI index and closes the file. Closing twice is safe.
func (v *Video) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	return eris.Wrap(v.aw.Close(), "render: close video")
}

// SaveJPEG writes an image as JPEG, overwriting any previous file at the
// path.
func SaveJPEG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "render: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close()
	return eris.Wrap(jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}), "render: encode jpeg")
}
