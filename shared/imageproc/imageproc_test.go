package imageproc_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"roombook/config"
	"roombook/shared/imageproc"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))

	return buf.Bytes()
}

func processor(maxW, maxH int, maxMB float64) *imageproc.Processor {
	cfg := &config.Config{}
	cfg.App.Image.MaxWidth = maxW
	cfg.App.Image.MaxHeight = maxH
	cfg.App.Image.MaxSizeMB = maxMB

	return imageproc.New(cfg)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name        string
		data        func(t *testing.T) []byte
		contentType string
		maxMB       float64
		wantW       int
		wantH       int
		wantErr     error
	}{
		{
			name:        "wide image shrinks to width",
			data:        func(t *testing.T) []byte { return pngOf(t, 400, 100) },
			contentType: "image/png",
			wantW:       200,
			wantH:       50,
		},
		{
			name:        "small image keeps its size",
			data:        func(t *testing.T) []byte { return pngOf(t, 40, 30) },
			contentType: "image/png",
			wantW:       40,
			wantH:       30,
		},
		{
			name:        "unsupported type",
			data:        func(t *testing.T) []byte { return []byte("GIF89a") },
			contentType: "text/plain",
			wantErr:     imageproc.ErrUnsupported,
		},
		{
			name:        "too large",
			data:        func(t *testing.T) []byte { return make([]byte, 2048) },
			contentType: "image/png",
			maxMB:       0.001,
			wantErr:     imageproc.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxMB := tt.maxMB
			if maxMB == 0 {
				maxMB = 2
			}

			out, err := processor(200, 200, maxMB).Fit(tt.data(t), tt.contentType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			img, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestFitRejectsGarbage(t *testing.T) {
	_, err := processor(200, 200, 2).Fit([]byte("not an image"), "image/jpeg")
	assert.Error(t, err)
}
