package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"

	"pdfclean/core/models"

	"github.com/gen2brain/go-fitz"
	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/image/colornames"
)

var ErrPageOutOfRange = errors.New("page out of range")

// pointsPerInch is the PDF user-space resolution table regions are measured in.
const pointsPerInch = 72.0

// RenderPage rasterizes a 1-based page and outlines the given table regions.
func RenderPage(pdfPath string, pageNumber int, dpi float64, regions []models.Rect) (*image.RGBA, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &DecodeError{Path: pdfPath, Err: err}
	}
	defer doc.Close()

	if pageNumber < 1 || pageNumber > doc.NumPage() {
		return nil, fmt.Errorf("page %d of %d: %w", pageNumber, doc.NumPage(), ErrPageOutOfRange)
	}

	src, err := doc.ImageDPI(pageNumber-1, dpi)
	if err != nil {
		return nil, &DecodeError{Path: pdfPath, Err: err}
	}
	img := toRGBA(src)
	DrawRegions(img, regions, dpi/pointsPerInch)
	return img, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return rgba
}

func DrawRegions(img *image.RGBA, regions []models.Rect, scale float64) {
	if len(regions) == 0 {
		return
	}
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetLineWidth(2)
	gc.SetStrokeColor(colornames.Red)
	for _, r := range regions {
		drawBox(gc,
			float64(r.X0)*scale,
			float64(r.Y0)*scale,
			float64(r.X1)*scale,
			float64(r.Y1)*scale,
		)
	}
}

func drawBox(gc *draw2dimg.GraphicContext, x0, y0, x1, y1 float64) {
	gc.BeginPath()
	gc.MoveTo(x0, y0)
	gc.LineTo(x1, y0)
	gc.LineTo(x1, y1)
	gc.LineTo(x0, y1)
	gc.Close()
	gc.Stroke()
}

func EncodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
}
