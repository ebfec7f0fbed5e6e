package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"research-portal/internal/artifacts"
	"research-portal/internal/entity"
)

func f64(v float64) *float64 { return &v }

func sampleExtraction() *entity.FinancialExtraction {
	return &entity.FinancialExtraction{
		Currency: "INR",
		Scale:    "Crores",
		Periods:  []string{"Q3FY26", "Q3FY25"},
		LineItems: []entity.LineItem{
			{Name: "Revenue from Operations", Values: []*float64{f64(1234.56), f64(1100.23)}, Category: "Revenue"},
			{Name: "Other Income", Values: []*float64{f64(100), nil}, Category: "Revenue"},
			{Name: "Net Profit", Values: []*float64{f64(300), f64(250)}, Category: "Profit"},
		},
	}
}

func TestBuildWorkbook_Layout(t *testing.T) {
	content, err := BuildWorkbook(sampleExtraction(), "q3_results.pdf")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	// header row
	assert.Equal(t, "Line Item", cell("Financial Data", "A1"))
	assert.Equal(t, "Category", cell("Financial Data", "B1"))
	assert.Equal(t, "Q3FY26", cell("Financial Data", "C1"))
	assert.Equal(t, "Q3FY25", cell("Financial Data", "D1"))

	// data rows
	assert.Equal(t, "Revenue from Operations", cell("Financial Data", "A2"))
	assert.Equal(t, "Revenue", cell("Financial Data", "B2"))
	assert.Equal(t, "1234.56", cell("Financial Data", "C2"))

	// null stays blank, not zero
	assert.Equal(t, "100", cell("Financial Data", "C3"))
	assert.Equal(t, "", cell("Financial Data", "D3"))

	// metadata sheet
	assert.Equal(t, "Currency", cell("Metadata", "A1"))
	assert.Equal(t, "INR", cell("Metadata", "B1"))
	assert.Equal(t, "Crores", cell("Metadata", "B2"))
	assert.Equal(t, "q3_results.pdf", cell("Metadata", "B3"))
	assert.NotEmpty(t, cell("Metadata", "B4"), "extraction timestamp present")
}

func TestBuildWorkbook_IdempotentContent(t *testing.T) {
	fin := sampleExtraction()

	first, err := BuildWorkbook(fin, "doc.pdf")
	require.NoError(t, err)
	second, err := BuildWorkbook(fin, "doc.pdf")
	require.NoError(t, err)

	rowsOf := func(content []byte) [][]string {
		f, err := excelize.OpenReader(bytes.NewReader(content))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows("Financial Data")
		require.NoError(t, err)
		return rows
	}

	assert.Equal(t, rowsOf(first), rowsOf(second), "same data must render identical tables")
}

func TestRenderFinancialXLSX_PersistsAndRegisters(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.Open(filepath.Join(dir, "artifacts.db"), dir, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	svc := NewService(store, nil)
	fin := sampleExtraction()

	filename, err := svc.RenderFinancialXLSX(context.Background(), fin, "q3_results.pdf", fin.Metadata())
	require.NoError(t, err)
	assert.Contains(t, filename, "financial_extraction_")
	assert.Equal(t, filepath.Base(filename), filename, "reference is a bare filename")

	// fully flushed to disk before the reference comes back
	info, err := os.Stat(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// and resolvable through the registry
	path, err := store.Resolve(context.Background(), filename)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, filename), path)
}

func TestRenderFinancialXLSX_UniqueFilenames(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.Open(filepath.Join(dir, "artifacts.db"), dir, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	svc := NewService(store, nil)
	fin := sampleExtraction()

	first, err := svc.RenderFinancialXLSX(context.Background(), fin, "doc.pdf", fin.Metadata())
	require.NoError(t, err)
	second, err := svc.RenderFinancialXLSX(context.Background(), fin, "doc.pdf", fin.Metadata())
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "concurrent requests must never contend on a path")
}
