package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"research-portal/constants"
	"research-portal/internal/artifacts"
	"research-portal/internal/entity"
	"research-portal/internal/metrics"
)

const (
	dataSheet     = "Financial Data"
	metadataSheet = "Metadata"
)

// Service renders validated financial extractions into XLSX workbooks and
// registers them with the artifact store.
type Service struct {
	store  *artifacts.Store
	logger *slog.Logger
}

func NewService(store *artifacts.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// RenderFinancialXLSX writes a workbook for fin under a process-unique
// filename and returns that filename plus the metadata summary. The file is
// flushed to disk before the reference is returned; a failure to record the
// artifact removes the file rather than leaving an unserveable orphan.
func (s *Service) RenderFinancialXLSX(ctx context.Context, fin *entity.FinancialExtraction, sourceName string, meta entity.FinancialMetadata) (string, error) {
	start := time.Now()

	content, err := BuildWorkbook(fin, sourceName)
	if err != nil {
		return "", fmt.Errorf("build workbook: %w", err)
	}

	filename := fmt.Sprintf("financial_extraction_%s.xlsx", uuid.New().String())
	path := filepath.Join(s.store.Dir(), filename)
	if err := writeAndSync(path, content); err != nil {
		return "", fmt.Errorf("persist workbook: %w", err)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.store.Record(ctx, artifacts.Artifact{
		Filename:   filename,
		Task:       string(constants.TaskFinancial),
		SourceName: sourceName,
		Metadata:   string(metaJSON),
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	metrics.ArtifactsRendered.WithLabelValues(string(constants.TaskFinancial)).Inc()
	s.logger.Info("export.xlsx.ok",
		"filename", filename,
		"rows", len(fin.LineItems),
		"periods", len(fin.Periods),
		"bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return filename, nil
}

// BuildWorkbook produces the workbook bytes: one "Financial Data" sheet with
// a row per line item and a column per period (nulls stay blank), plus a
// "Metadata" sheet. Deterministic for a given extraction and source name
// except for the extraction timestamp.
func BuildWorkbook(fin *entity.FinancialExtraction, sourceName string) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(dataSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	setCell := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := append([]string{"Line Item", "Category"}, fin.Periods...)
	for i, h := range headers {
		setCell(dataSheet, i+1, 1, h)
	}

	for r, item := range fin.LineItems {
		row := r + 2
		setCell(dataSheet, 1, row, item.Name)
		setCell(dataSheet, 2, row, item.Category)
		for c, v := range item.Values {
			if v != nil {
				setCell(dataSheet, c+3, row, *v)
			}
		}
	}

	_ = f.SetColWidth(dataSheet, "A", "A", 36) // line item
	_ = f.SetColWidth(dataSheet, "B", "B", 14) // category
	if len(fin.Periods) > 0 {
		last, _ := excelize.ColumnNumberToName(2 + len(fin.Periods))
		_ = f.SetColWidth(dataSheet, "C", last, 14)
	}

	if _, err := f.NewSheet(metadataSheet); err != nil {
		return nil, err
	}
	metaRows := [][2]string{
		{"Currency", fin.Currency},
		{"Scale", fin.Scale},
		{"Source File", sourceName},
		{"Extracted At", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, kv := range metaRows {
		setCell(metadataSheet, 1, i+1, kv[0])
		setCell(metadataSheet, 2, i+1, kv[1])
	}
	_ = f.SetColWidth(metadataSheet, "A", "A", 16)
	_ = f.SetColWidth(metadataSheet, "B", "B", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAndSync writes content and fsyncs before closing, so the returned
// reference never points at a partially written workbook.
func writeAndSync(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
