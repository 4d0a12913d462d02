package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// SheetName is the worksheet holding the series.
const SheetName = "SOI"

// Writer exports the long series as an Excel workbook.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a workbook loader for path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "xlsx" }

// Load writes a single sheet with a Date,soi_anomaly header. Dates are stored
// as YYYY-MM-DD text; missing anomalies are left blank.
func (w *Writer) Load(ctx context.Context, records []domain.LongRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{domain.DateColumn, domain.AnomalyColumn}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{domain.FormatDate(rec.Date), nil}
		if rec.Anomaly != nil {
			row[1] = *rec.Anomaly
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx record %d: %w", i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("xlsx written", "path", w.path, "records", len(records))
	return nil
}
