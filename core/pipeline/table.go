package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"pdfclean/core/logger"
	"pdfclean/core/models"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// maxRuleThickness is the widest filled rectangle still treated as a ruling line.
const maxRuleThickness = 2.0

// TableSource yields detected tables for a PDF.
type TableSource interface {
	ExtractTables(pdfPath string) (TablePages, error)
}

type TableConfig struct {
	MinRows       int
	MinCols       int
	MinConfidence float64
}

// TabulaTableExtractor finds tables drawn with ruling lines and fills their cells with
// the text fragments whose centers fall inside them. Unruled text is never a table.
type TabulaTableExtractor struct {
	grid          *tables.GridDetector
	minRows       int
	minCols       int
	minConfidence float64
	log           *slog.Logger
}

func NewTableExtractor(cfg TableConfig) *TabulaTableExtractor {
	e := &TabulaTableExtractor{
		grid:          tables.NewGridDetector(),
		minRows:       2,
		minCols:       2,
		minConfidence: 0.5,
		log:           logger.GetLogger("tables"),
	}
	if cfg.MinRows > 0 {
		e.minRows = cfg.MinRows
	}
	if cfg.MinCols > 0 {
		e.minCols = cfg.MinCols
	}
	if cfg.MinConfidence > 0 {
		e.minConfidence = cfg.MinConfidence
	}
	return e
}

func (e *TabulaTableExtractor) ExtractTables(pdfPath string) (TablePages, error) {
	r, err := reader.Open(pdfPath)
	if err != nil {
		return nil, &DecodeError{Path: pdfPath, Err: err}
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, &DecodeError{Path: pdfPath, Err: err}
	}

	result := make(TablePages)
	for i := 0; i < count; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			return nil, &DecodeError{Path: pdfPath, Err: fmt.Errorf("page %d: %w", i+1, err)}
		}
		found, err := e.pageTables(r, page, i)
		if err != nil {
			return nil, &DecodeError{Path: pdfPath, Err: fmt.Errorf("page %d: %w", i+1, err)}
		}
		if len(found) > 0 {
			result[LabelFor(i)] = found
		}
	}
	return result, nil
}

func (e *TabulaTableExtractor) pageTables(r *reader.Reader, page *pages.Page, index int) ([]DetectedTable, error) {
	horizontals, verticals, err := rulings(page)
	if err != nil {
		// Graphics that cannot be parsed carry no usable rulings.
		e.log.Debug("skipping page graphics", "page", index+1, "error", err)
		return nil, nil
	}

	var candidates []*tables.GridHypothesis
	for _, h := range e.grid.DetectFromLines(horizontals, verticals) {
		if h.Rows >= e.minRows && h.Cols >= e.minCols && h.Confidence >= e.minConfidence {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	fragments, err := r.ExtractTextFragments(page)
	if err != nil {
		return nil, err
	}
	frags := modelFragments(fragments)
	height, _ := page.Height()

	found := make([]DetectedTable, 0, len(candidates))
	for _, h := range candidates {
		grid := h.ToTableGrid()
		table := model.NewTable(grid.RowCount(), grid.ColCount())
		fillCells(table, grid, frags)
		found = append(found, DetectedTable{
			Cells:  tableCells(table),
			Region: imageRect(h.BBox, height),
		})
	}
	return found, nil
}

// rulings collects the horizontal and vertical ruling lines of a page, including
// stroked rectangle edges and thin filled bars.
func rulings(page *pages.Page) ([]graphicsstate.ExtractedLine, []graphicsstate.ExtractedLine, error) {
	contents, err := page.Contents()
	if err != nil {
		return nil, nil, err
	}

	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, nil, err
		}
		data = append(data, decoded...)
		data = append(data, '\n')
	}
	if len(data) == 0 {
		return nil, nil, nil
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		return nil, nil, err
	}

	lines := ge.GetGridLines()
	horizontals, verticals := lines.Horizontals, lines.Verticals
	for _, rect := range ge.GetRectangles() {
		h, v := rectangleRulings(rect)
		horizontals = append(horizontals, h...)
		verticals = append(verticals, v...)
	}
	return horizontals, verticals, nil
}

func rectangleRulings(rect graphicsstate.ExtractedRectangle) (horizontals, verticals []graphicsstate.ExtractedLine) {
	b := rect.BBox
	switch {
	case b.Height <= maxRuleThickness && b.Width > maxRuleThickness:
		y := b.Y + b.Height/2
		horizontals = append(horizontals, ruling(b.X, y, b.X+b.Width, y))
	case b.Width <= maxRuleThickness && b.Height > maxRuleThickness:
		x := b.X + b.Width/2
		verticals = append(verticals, ruling(x, b.Y, x, b.Y+b.Height))
	case rect.IsStroked:
		top, right := b.Y+b.Height, b.X+b.Width
		horizontals = append(horizontals, ruling(b.X, b.Y, right, b.Y), ruling(b.X, top, right, top))
		verticals = append(verticals, ruling(b.X, b.Y, b.X, top), ruling(right, b.Y, right, top))
	}
	return horizontals, verticals
}

func ruling(x0, y0, x1, y1 float64) graphicsstate.ExtractedLine {
	return graphicsstate.ExtractedLine{
		Start:        model.Point{X: x0, Y: y0},
		End:          model.Point{X: x1, Y: y1},
		IsHorizontal: y0 == y1,
		IsVertical:   x0 == x1,
	}
}

// fillCells appends each fragment to the cell containing its center.
// Grid rows run top to bottom in descending PDF y.
func fillCells(table *model.Table, grid *model.TableGrid, fragments []model.TextFragment) {
	for _, f := range fragments {
		row, col := cellAt(grid, f.BBox.Center())
		cell := table.GetCell(row, col)
		if cell == nil {
			continue
		}
		if cell.Text != "" {
			cell.Text += " "
		}
		cell.Text += f.Text
	}
}

func cellAt(grid *model.TableGrid, p model.Point) (int, int) {
	row, col := -1, -1
	for i := 0; i < grid.RowCount(); i++ {
		if p.Y <= grid.Rows[i] && p.Y >= grid.Rows[i+1] {
			row = i
			break
		}
	}
	for j := 0; j < grid.ColCount(); j++ {
		if p.X >= grid.Cols[j] && p.X <= grid.Cols[j+1] {
			col = j
			break
		}
	}
	return row, col
}

func modelFragments(fragments []text.TextFragment) []model.TextFragment {
	result := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		result[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return result
}

func tableCells(t *model.Table) models.Table {
	rows := make(models.Table, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = strings.TrimSpace(cell.Text)
		}
	}
	return rows
}

// imageRect flips a bottom-left PDF box into top-left image coordinates.
func imageRect(b model.BBox, pageHeight float64) models.Rect {
	return models.Rect{
		X0: float32(b.X),
		X1: float32(b.X + b.Width),
		Y0: float32(pageHeight - (b.Y + b.Height)),
		Y1: float32(pageHeight - b.Y),
	}
}
