package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"pdfclean/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/text"
)

func TestImageRectFlipsVertically(t *testing.T) {
	got := imageRect(model.BBox{X: 10, Y: 100, Width: 50, Height: 20}, 800)

	assert.Equal(t, models.Rect{X0: 10, X1: 60, Y0: 680, Y1: 700}, got)
	assert.Equal(t, float32(50), got.Width())
	assert.Equal(t, float32(20), got.Height())
}

func TestTableCells(t *testing.T) {
	table := &model.Table{Rows: [][]model.Cell{
		{{Text: " Name "}, {Text: "Qty\n"}},
		{{Text: "Bolt"}, {Text: ""}},
	}}

	assert.Equal(t, models.Table{{"Name", "Qty"}, {"Bolt", ""}}, tableCells(table))
}

func TestModelFragments(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "Total", X: 72, Y: 700, Width: 30, Height: 12, FontName: "Helvetica", FontSize: 12},
	}

	got := modelFragments(fragments)
	require.Len(t, got, 1)
	assert.Equal(t, "Total", got[0].Text)
	assert.Equal(t, model.BBox{X: 72, Y: 700, Width: 30, Height: 12}, got[0].BBox)
	assert.Equal(t, "Helvetica", got[0].FontName)
	assert.Equal(t, 12.0, got[0].FontSize)
}

func TestNewTableExtractorKeepsDefaultsForZeroValues(t *testing.T) {
	e := NewTableExtractor(TableConfig{MinRows: 3})

	assert.Equal(t, 3, e.minRows)
	assert.Equal(t, 2, e.minCols)
	assert.Equal(t, 0.5, e.minConfidence)
}

func TestRectangleRulings(t *testing.T) {
	tests := []struct {
		name        string
		rect        graphicsstate.ExtractedRectangle
		horizontals int
		verticals   int
	}{
		{
			name:        "thin filled bar is a horizontal rule",
			rect:        graphicsstate.ExtractedRectangle{BBox: model.BBox{X: 50, Y: 100, Width: 200, Height: 0.5}, IsFilled: true},
			horizontals: 1,
		},
		{
			name:      "thin filled bar is a vertical rule",
			rect:      graphicsstate.ExtractedRectangle{BBox: model.BBox{X: 50, Y: 100, Width: 1, Height: 80}, IsFilled: true},
			verticals: 1,
		},
		{
			name:        "stroked box contributes four edges",
			rect:        graphicsstate.ExtractedRectangle{BBox: model.BBox{X: 50, Y: 100, Width: 200, Height: 80}, IsStroked: true},
			horizontals: 2,
			verticals:   2,
		},
		{
			name: "filled background is ignored",
			rect: graphicsstate.ExtractedRectangle{BBox: model.BBox{X: 50, Y: 100, Width: 200, Height: 80}, IsFilled: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, v := rectangleRulings(tt.rect)
			assert.Len(t, h, tt.horizontals)
			assert.Len(t, v, tt.verticals)
			for _, line := range h {
				assert.Equal(t, line.Start.Y, line.End.Y)
			}
			for _, line := range v {
				assert.Equal(t, line.Start.X, line.End.X)
			}
		})
	}
}

func TestFillCells(t *testing.T) {
	grid := model.NewTableGrid()
	grid.Rows = []float64{700, 680, 660}
	grid.Cols = []float64{100, 200, 300}
	table := model.NewTable(2, 2)

	fillCells(table, grid, []model.TextFragment{
		{Text: "Item", BBox: model.BBox{X: 106, Y: 686, Width: 20, Height: 10}},
		{Text: "Unit", BBox: model.BBox{X: 206, Y: 686, Width: 20, Height: 10}},
		{Text: "price", BBox: model.BBox{X: 230, Y: 686, Width: 25, Height: 10}},
		{Text: "Tea", BBox: model.BBox{X: 106, Y: 666, Width: 15, Height: 10}},
		{Text: "outside", BBox: model.BBox{X: 106, Y: 600, Width: 30, Height: 10}},
	})

	assert.Equal(t, models.Table{{"Item", "Unit price"}, {"Tea", ""}}, tableCells(table))
}

func TestExtractTablesMissingFile(t *testing.T) {
	_, err := NewTableExtractor(TableConfig{}).ExtractTables(filepath.Join(t.TempDir(), "nope.pdf"))

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := FitzTextExtractor{}.ExtractText(filepath.Join(t.TempDir(), "nope.pdf"))

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}
