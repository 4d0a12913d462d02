package file

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
)

// maxLineBytes bounds a single report line. CPC rows are under 100 bytes.
const maxLineBytes = 1 << 20

// Reader loads a report from disk.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the report at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract returns every line of the report without line terminators.
func (r *Reader) Extract(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: %w", r.path, err)
	}

	r.logger.Debug("report read", "path", r.path, "lines", len(lines))
	return lines, nil
}
