// Package imageproc normalises uploaded room pictures: bounded size, JPEG output.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"roombook/config"
	"roombook/shared/constant"

	"github.com/disintegration/imaging"
)

const jpegQuality = 80

var (
	ErrTooLarge    = errors.New("image exceeds the maximum upload size")
	ErrUnsupported = errors.New("image type is not supported")
)

var supported = map[string]bool{
	constant.ContentTypeJPEG: true,
	constant.ContentTypePNG:  true,
	"image/jpg":              true,
	"image/gif":              true,
	"image/bmp":              true,
	"image/tiff":             true,
}

type Processor struct {
	maxWidth  int
	maxHeight int
	maxBytes  int
}

func New(cfg *config.Config) *Processor {
	return &Processor{
		maxWidth:  cfg.App.Image.MaxWidth,
		maxHeight: cfg.App.Image.MaxHeight,
		maxBytes:  int(cfg.App.Image.MaxSizeMB * 1024 * 1024),
	}
}

// Fit shrinks the image to the configured bounding box, keeping its aspect ratio,
// and re-encodes it as JPEG. Images already inside the box are only re-encoded.
func (p *Processor) Fit(data []byte, contentType string) ([]byte, error) {
	if !supported[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}

	if p.maxBytes > 0 && len(data) > p.maxBytes {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if p.maxWidth > 0 && p.maxHeight > 0 && (bounds.Dx() > p.maxWidth || bounds.Dy() > p.maxHeight) {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
