package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// logDiagnostics reports the shape, schema, a head sample, and summary
// statistics of the series about to be loaded.
func (p *Pipeline) logDiagnostics(ctx context.Context, res Result, stats domain.Summary) {
	p.logger.Info("series shape", "rows", len(res.Records), "columns", 2)
	p.logger.Info("series schema",
		slog.Group(domain.DateColumn, "type", "date", "non_null", len(res.Records)),
		slog.Group(domain.AnomalyColumn, "type", "float64", "non_null", stats.Records-stats.Missing),
	)
	p.logger.Info("series sample", "head", sampleRecords(res.Records, p.sampleRows))

	if stats.Records > stats.Missing {
		p.logger.Info("series summary",
			"first", domain.FormatDate(stats.First),
			"last", domain.FormatDate(stats.Last),
			"mean", stats.Mean,
			"std_dev", stats.StdDev,
			"min", stats.Min,
			"median", stats.Median,
			"max", stats.Max,
		)
	}

	if res.Table.Len() > 0 && p.logger.Enabled(ctx, slog.LevelDebug) {
		p.logger.Debug("wide table head", "table", tableHead(res.Table, p.sampleRows))
	}
}

// sampleRecords renders the first n records as Date,soi_anomaly lines.
func sampleRecords(records []domain.LongRecord, n int) []string {
	n = min(n, len(records))
	out := make([]string, n)
	for i, rec := range records[:n] {
		out[i] = domain.FormatDate(rec.Date) + "," + domain.FormatAnomaly(rec.Anomaly)
	}
	return out
}

func tableHead(t domain.WideTable, n int) string {
	n = max(min(n, t.Len()), 1)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Frame().Subset(idx).String()
}
