package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdfclean/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdata/sample.pdf has three pages:
//  1. seven lines: H1 H2 H3 "Body A" "Body B" F1 F2
//  2. five lines: a b c d e
//  3. a ruled 3x3 grid spanning x 100..400 and y 640..700
const samplePDF = "testdata/sample.pdf"

var sampleTable = models.Table{
	{"Item", "Qty", "Price"},
	{"Tea", "2", "3.50"},
	{"Cake", "1", "4.00"},
}

func TestFitzTextExtractorSample(t *testing.T) {
	pages, err := FitzTextExtractor{}.ExtractText(samplePDF)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, page := range pages {
		assert.Equal(t, LabelFor(i), page.Label)
	}
	assert.Equal(t, "Body A\nBody B", pages[0].Text)
	assert.Equal(t, "", pages[1].Text)
}

func TestVisualLines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", visualLines("a\n\nb\n\nc\n\n"))
	assert.Equal(t, "a\nb", visualLines("a\n  \nb\n"))
	assert.Equal(t, "", visualLines("\n\n"))
}

func TestTabulaTableExtractorSample(t *testing.T) {
	found, err := NewTableExtractor(TableConfig{}).ExtractTables(samplePDF)
	require.NoError(t, err)

	require.Len(t, found, 1)
	tables := found[LabelFor(2)]
	require.Len(t, tables, 1)
	assert.Equal(t, sampleTable, tables[0].Cells)

	region := tables[0].Region
	assert.InDelta(t, 100, region.X0, 0.5)
	assert.InDelta(t, 400, region.X1, 0.5)
	assert.InDelta(t, 92, region.Y0, 0.5)
	assert.InDelta(t, 152, region.Y1, 0.5)
}

func TestProcessSample(t *testing.T) {
	p := New(FitzTextExtractor{}, NewTableExtractor(TableConfig{}))
	out := filepath.Join(t.TempDir(), OutputName)

	result, err := p.Process(samplePDF, out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TableCount())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []models.PageRecord
	require.NoError(t, json.Unmarshal(raw, &records))

	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, i+1, record.PageNumber)
	}
	assert.Equal(t, "Body A\nBody B", records[0].Content)
	assert.Equal(t, []models.Table{}, records[0].Tables)
	assert.Equal(t, "", records[1].Content)
	assert.Equal(t, []models.Table{}, records[1].Tables)
	assert.Equal(t, []models.Table{sampleTable}, records[2].Tables)
}

func TestRenderPageSample(t *testing.T) {
	regions := []models.Rect{{X0: 100, X1: 400, Y0: 92, Y1: 152}}

	img, err := RenderPage(samplePDF, 3, 72, regions)
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.InDelta(t, 612, bounds.Dx(), 1)
	assert.InDelta(t, 792, bounds.Dy(), 1)

	edge := img.RGBAAt(100, 120)
	assert.Greater(t, int(edge.R), int(edge.G)+100)
	assert.Equal(t, uint8(255), img.RGBAAt(500, 400).R)
}

func TestRenderPageOutOfRange(t *testing.T) {
	for _, page := range []int{0, 4} {
		_, err := RenderPage(samplePDF, page, 72, nil)
		assert.True(t, errors.Is(err, ErrPageOutOfRange), "page %d", page)
	}
}
