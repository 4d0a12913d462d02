package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// Writer exports the long series as a CSV file with a Date,soi_anomaly header.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a CSV loader for path. Parent directories are created on load.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Load writes records to a temporary file beside the target and renames it
// into place, so readers never observe a partial file.
func (w *Writer) Load(ctx context.Context, records []domain.LongRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	w.logger.Info("csv written", "path", w.path, "records", len(records))
	return nil
}

// Encode writes the header and one line per record to out.
func Encode(out io.Writer, records []domain.LongRecord) error {
	cw := stdcsv.NewWriter(out)
	if err := cw.Write([]string{domain.DateColumn, domain.AnomalyColumn}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write([]string{domain.FormatDate(rec.Date), domain.FormatAnomaly(rec.Anomaly)}); err != nil {
			return fmt.Errorf("write csv record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
