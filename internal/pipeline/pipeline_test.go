package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/climate-index-etl/internal/domain"
	"github.com/couchcryptid/climate-index-etl/internal/observability"
	"github.com/couchcryptid/climate-index-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	lines []string
	err   error
}

func (m *mockExtractor) Extract(_ context.Context) ([]string, error) {
	return m.lines, m.err
}

type mockLoader struct {
	name   string
	err    error
	loaded [][]domain.LongRecord
}

func (m *mockLoader) Name() string { return m.name }

func (m *mockLoader) Load(_ context.Context, records []domain.LongRecord) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, records)
	return nil
}

// advancingTransformer wraps a real transformer and moves the fake clock so
// run duration is observable.
type advancingTransformer struct {
	inner pipeline.Transformer
	clock *clockwork.FakeClock
	step  time.Duration
}

func (a *advancingTransformer) Transform(ctx context.Context, lines []string) (pipeline.Result, error) {
	a.clock.Advance(a.step)
	return a.inner.Transform(ctx, lines)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testLines() []string {
	return []string{
		"YEAR   JAN   FEB   MAR   APR   MAY   JUN   JUL   AUG   SEP   OCT   NOV   DEC",
		"1984   0.5   0.1   0.2   0.3   0.4   0.5   0.6   0.7   0.8   0.9   1.0   1.1",
		"1985   1.2 -999.9  0.4  0.1  0.3 -0.2  0.0  0.5  0.6 -0.1  0.2  0.3",
		"1986   0.1   0.2   0.3   0.4   0.5   0.6   0.7   0.8   0.9   1.0",
		"",
		"                 STANDARDIZED    DATA",
	}
}

// 1951 must open the block; the fixture starts there.
func withStart(lines []string) []string {
	start := "1951   0.0   0.0   0.0   0.0   0.0   0.0   0.0   0.0   0.0   0.0   0.0   0.0"
	return append([]string{lines[0], start}, lines[1:]...)
}

func newTestPipeline(ext pipeline.Extractor, clock *clockwork.FakeClock, loaders ...pipeline.Loader) (*pipeline.Pipeline, *observability.Metrics) {
	metrics := observability.NewMetrics()
	tfm := &advancingTransformer{
		inner: pipeline.NewTransformer(domain.DefaultCutoff, discardLogger()),
		clock: clock,
		step:  1500 * time.Millisecond,
	}
	return pipeline.New(ext, tfm, discardLogger(), metrics, clock, loaders...), metrics
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC))
	csv := &mockLoader{name: "csv"}
	xlsx := &mockLoader{name: "xlsx"}

	p, metrics := newTestPipeline(&mockExtractor{lines: withStart(testLines())}, clock, csv, xlsx)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, csv.loaded, 1)
	require.Len(t, xlsx.loaded, 1)
	records := csv.loaded[0]
	require.Len(t, records, 12)
	assert.Equal(t, domain.LongRecord{Date: month(1985, time.January), Anomaly: ptr(1.2)}, records[0])
	assert.Equal(t, domain.LongRecord{Date: month(1985, time.February)}, records[1])
	if diff := cmp.Diff(records, xlsx.loaded[0]); diff != "" {
		t.Fatalf("loaders received different records (-csv +xlsx):\n%s", diff)
	}

	assert.Equal(t, pipeline.Summary{
		Lines:         7,
		Block:         domain.Block{Start: 1, End: 6},
		RowsKept:      3,
		RowsBlank:     1,
		RowsMalformed: 1,
		Reshaped:      36,
		BeforeCutoff:  24,
		Written:       12,
		Stats:         domain.Summarize(records),
		Duration:      1500 * time.Millisecond,
	}, summary)

	assert.InDelta(t, 7.0, testutil.ToFloat64(metrics.LinesRead), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(metrics.RowsParsed), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("malformed")), 0)
	assert.InDelta(t, 24.0, testutil.ToFloat64(metrics.RecordsFiltered.WithLabelValues("before_cutoff")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MissingValues), 0)
	assert.InDelta(t, 12.0, testutil.ToFloat64(metrics.RecordsWritten.WithLabelValues("csv")), 0)
	assert.InDelta(t, 12.0, testutil.ToFloat64(metrics.RecordsWritten.WithLabelValues("xlsx")), 0)
	assert.InDelta(t, float64(clock.Now().Unix()), testutil.ToFloat64(metrics.LastSuccessTimestamp), 0)
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ldr := &mockLoader{name: "csv"}
	p, metrics := newTestPipeline(&mockExtractor{err: errors.New("disk gone")}, clock, ldr)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: disk gone")
	assert.Empty(t, ldr.loaded)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunFailures.WithLabelValues("extract")), 0)
}

func TestPipeline_Run_MissingMarkerWritesNothing(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ldr := &mockLoader{name: "csv"}
	p, metrics := newTestPipeline(&mockExtractor{lines: testLines()}, clock, ldr)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, ldr.loaded)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunFailures.WithLabelValues("transform")), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.LastSuccessTimestamp), 0)
}

func TestPipeline_Run_BadYearWritesNothing(t *testing.T) {
	lines := withStart(testLines())
	lines = append(lines[:2], append([]string{"19X0   0.1   0.2   0.3   0.4   0.5   0.6   0.7   0.8   0.9   1.0   1.1   1.2"}, lines[2:]...)...)

	ldr := &mockLoader{name: "csv"}
	p, _ := newTestPipeline(&mockExtractor{lines: lines}, clockwork.NewFakeClock(), ldr)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "transform:")
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_LoadError(t *testing.T) {
	first := &mockLoader{name: "csv", err: errors.New("read-only file system")}
	second := &mockLoader{name: "kafka"}
	p, metrics := newTestPipeline(&mockExtractor{lines: withStart(testLines())}, clockwork.NewFakeClock(), first, second)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load: csv: read-only file system")
	assert.Empty(t, second.loaded, "later loaders must not run after a failure")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunFailures.WithLabelValues("load")), 0)
}

func TestPipeline_Run_CancelledBeforeLoad(t *testing.T) {
	ldr := &mockLoader{name: "csv"}
	p, _ := newTestPipeline(&mockExtractor{lines: withStart(testLines())}, clockwork.NewFakeClock(), ldr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_NoLoaders(t *testing.T) {
	p, _ := newTestPipeline(&mockExtractor{lines: withStart(testLines())}, clockwork.NewFakeClock())
	p.WithSampleRows(0)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Written)
}

func TestPipeline_Run_DiagnosticsMatchSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := pipeline.New(
		&mockExtractor{lines: withStart(testLines())},
		pipeline.NewTransformer(domain.DefaultCutoff, discardLogger()),
		logger,
		observability.NewMetrics(),
		clockwork.NewFakeClock(),
	)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	var logged map[string]any
	for line := range strings.Lines(buf.String()) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "series summary" {
			logged = entry
		}
	}
	require.NotNil(t, logged, "series summary not logged")
	assert.Equal(t, "1985-01-01", logged["first"])
	assert.Equal(t, "1985-12-01", logged["last"])
	assert.InDelta(t, summary.Stats.Mean, logged["mean"], 1e-12)
	assert.InDelta(t, summary.Stats.Median, logged["median"], 1e-12)
	assert.InDelta(t, summary.Stats.Max, logged["max"], 1e-12)
}
