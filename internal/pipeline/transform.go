package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// SOITransformer implements Transformer using the domain extract, parse,
// table, melt, and filter steps.
type SOITransformer struct {
	cutoff time.Time
	logger *slog.Logger
}

// NewTransformer creates an SOITransformer that keeps records dated on or
// after cutoff.
func NewTransformer(cutoff time.Time, logger *slog.Logger) *SOITransformer {
	return &SOITransformer{
		cutoff: cutoff,
		logger: logger,
	}
}

func (t *SOITransformer) Transform(_ context.Context, lines []string) (Result, error) {
	block, err := domain.ExtractBlock(lines)
	if err != nil {
		return Result{}, err
	}

	parsed := domain.ParseRows(lines[block.Start:block.End])
	if parsed.Malformed > 0 {
		t.logger.Warn("dropped malformed rows",
			"count", parsed.Malformed,
			"want_fields", domain.RowFields,
		)
	}

	table, err := domain.BuildWideTable(parsed.Rows)
	if err != nil {
		return Result{}, err
	}

	long := domain.Melt(table)
	records, filtered := domain.FilterSince(long, t.cutoff)

	t.logger.Info("report transformed",
		"block_start_line", block.Start+1,
		"block_end_line", block.End,
		"rows", table.Len(),
		"reshaped", len(long),
		"retained", len(records),
	)

	return Result{
		Block:    block,
		Parse:    parsed,
		Table:    table,
		Reshaped: len(long),
		Filter:   filtered,
		Records:  records,
	}, nil
}
