package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a pipeline run.
type Metrics struct {
	LinesRead       prometheus.Counter
	RowsParsed      prometheus.Counter
	RowsDropped     *prometheus.CounterVec // labels: reason={blank,malformed}
	RecordsReshaped prometheus.Counter
	RecordsFiltered *prometheus.CounterVec // labels: reason={missing_date,before_cutoff}
	MissingValues   prometheus.Counter
	RecordsWritten  *prometheus.CounterVec // labels: sink={csv,xlsx,kafka}
	RunFailures     *prometheus.CounterVec // labels: stage={extract,transform,load}

	RunDuration          prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all pipeline metrics on a dedicated registry. The run is
// a batch job, so metrics are exported by WriteTextfile rather than scraped.
func NewMetrics() *Metrics {
	m := &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "lines_read_total",
			Help:      "Total lines read from the source report.",
		}),
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "rows_parsed_total",
			Help:      "Anomaly rows with exactly 13 fields.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "rows_dropped_total",
			Help:      "Block lines dropped before table building, by reason.",
		}, []string{"reason"}),
		RecordsReshaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "records_reshaped_total",
			Help:      "Long records produced from the wide table.",
		}),
		RecordsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "records_filtered_total",
			Help:      "Long records removed before export, by reason.",
		}, []string{"reason"}),
		MissingValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "missing_values_total",
			Help:      "Exported records without an anomaly value.",
		}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "records_written_total",
			Help:      "Records written, by sink.",
		}, []string{"sink"}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soi_etl",
			Name:      "run_failures_total",
			Help:      "Runs aborted, by stage.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soi_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soi_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.LinesRead,
		m.RowsParsed,
		m.RowsDropped,
		m.RecordsReshaped,
		m.RecordsFiltered,
		m.MissingValues,
		m.RecordsWritten,
		m.RunFailures,
		m.RunDuration,
		m.LastSuccessTimestamp,
	)

	return m
}

// WriteTextfile writes all metrics in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
