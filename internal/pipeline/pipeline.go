package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
	"github.com/couchcryptid/climate-index-etl/internal/observability"
)

// Extractor reads the raw report lines from the source.
type Extractor interface {
	Extract(ctx context.Context) ([]string, error)
}

// Transformer turns report lines into the filtered long series.
type Transformer interface {
	Transform(ctx context.Context, lines []string) (Result, error)
}

// Loader writes the long series to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, records []domain.LongRecord) error
}

// Result is the outcome of a transform: the intermediate table plus the
// records to load and the counts of everything dropped along the way.
type Result struct {
	Block    domain.Block
	Parse    domain.ParseResult
	Table    domain.WideTable
	Reshaped int
	Filter   domain.FilterStats
	Records  []domain.LongRecord
}

// Summary reports what a completed run did.
type Summary struct {
	Lines         int
	Block         domain.Block
	RowsKept      int
	RowsBlank     int
	RowsMalformed int
	Reshaped      int
	MissingDate   int
	BeforeCutoff  int
	Written       int
	Stats         domain.Summary
	Duration      time.Duration
}

// Pipeline runs a single extract-transform-load pass.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	sampleRows  int
}

// New creates a Pipeline with the given stages and observability. Loaders run
// in order; the first is normally the primary CSV export.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, loaders ...Loader) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		sampleRows:  5,
	}
}

// WithSampleRows sets how many records the diagnostics print.
func (p *Pipeline) WithSampleRows(n int) *Pipeline {
	p.sampleRows = n
	return p
}

// Run executes extract, transform, and every loader once. Extract and
// transform failures abort before any loader runs, so no output is written.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := p.clock.Now()
	p.logger.Info("pipeline started", "loaders", p.loaderNames())

	lines, err := p.extractor.Extract(ctx)
	if err != nil {
		return Summary{}, p.fail("extract", err)
	}
	p.metrics.LinesRead.Add(float64(len(lines)))

	res, err := p.transformer.Transform(ctx, lines)
	if err != nil {
		return Summary{}, p.fail("transform", err)
	}
	p.observeTransform(res)
	stats := domain.Summarize(res.Records)
	p.logDiagnostics(ctx, res, stats)

	if err := ctx.Err(); err != nil {
		return Summary{}, p.fail("load", err)
	}
	for _, l := range p.loaders {
		if err := l.Load(ctx, res.Records); err != nil {
			return Summary{}, p.fail("load", fmt.Errorf("%s: %w", l.Name(), err))
		}
		p.metrics.RecordsWritten.WithLabelValues(l.Name()).Add(float64(len(res.Records)))
	}

	elapsed := p.clock.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.LastSuccessTimestamp.Set(float64(p.clock.Now().Unix()))

	summary := Summary{
		Lines:         len(lines),
		Block:         res.Block,
		RowsKept:      len(res.Parse.Rows),
		RowsBlank:     res.Parse.Blank,
		RowsMalformed: res.Parse.Malformed,
		Reshaped:      res.Reshaped,
		MissingDate:   res.Filter.MissingDate,
		BeforeCutoff:  res.Filter.BeforeCutoff,
		Written:       len(res.Records),
		Stats:         stats,
		Duration:      elapsed,
	}
	p.logger.Info("pipeline finished",
		"records", summary.Written,
		"missing_values", summary.Stats.Missing,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (p *Pipeline) fail(stage string, err error) error {
	p.metrics.RunFailures.WithLabelValues(stage).Inc()
	p.logger.Error("pipeline aborted", "stage", stage, "error", err)
	return fmt.Errorf("%s: %w", stage, err)
}

func (p *Pipeline) observeTransform(res Result) {
	p.metrics.RowsParsed.Add(float64(len(res.Parse.Rows)))
	p.metrics.RowsDropped.WithLabelValues("blank").Add(float64(res.Parse.Blank))
	p.metrics.RowsDropped.WithLabelValues("malformed").Add(float64(res.Parse.Malformed))
	p.metrics.RecordsReshaped.Add(float64(res.Reshaped))
	p.metrics.RecordsFiltered.WithLabelValues("missing_date").Add(float64(res.Filter.MissingDate))
	p.metrics.RecordsFiltered.WithLabelValues("before_cutoff").Add(float64(res.Filter.BeforeCutoff))

	missing := 0
	for _, rec := range res.Records {
		if rec.Anomaly == nil {
			missing++
		}
	}
	p.metrics.MissingValues.Add(float64(missing))
}

func (p *Pipeline) loaderNames() []string {
	names := make([]string, len(p.loaders))
	for i, l := range p.loaders {
		names[i] = l.Name()
	}
	return names
}
