package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"testing"

	"pdfclean/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func TestDrawRegions(t *testing.T) {
	img := whiteImage(200, 200)

	DrawRegions(img, []models.Rect{{X0: 10, X1: 50, Y0: 10, Y1: 50}}, 2)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	edge := img.RGBAAt(20, 60)
	assert.NotEqual(t, white, edge)
	assert.Greater(t, edge.R, edge.G)
	assert.Equal(t, white, img.RGBAAt(60, 60))
	assert.Equal(t, white, img.RGBAAt(150, 150))
}

func TestDrawRegionsWithoutRegions(t *testing.T) {
	img := whiteImage(20, 20)
	before := append([]byte(nil), img.Pix...)

	DrawRegions(img, nil, 1)

	assert.Equal(t, before, img.Pix)
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJPEG(&buf, whiteImage(8, 8)))

	cfg, err := jpeg.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
}
