package domain

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary describes the exported series: its shape, date span, and the
// distribution of the non-missing anomalies.
type Summary struct {
	Records int
	Missing int
	First   time.Time
	Last    time.Time

	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// Summarize computes a Summary over records. Statistics stay zero when no
// finite values are present.
func Summarize(records []LongRecord) Summary {
	s := Summary{Records: len(records)}
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.HasDate() {
			if s.First.IsZero() || rec.Date.Before(s.First) {
				s.First = rec.Date
			}
			if rec.Date.After(s.Last) {
				s.Last = rec.Date
			}
		}
		if rec.Anomaly == nil {
			s.Missing++
			continue
		}
		if !math.IsInf(*rec.Anomaly, 0) {
			values = append(values, *rec.Anomaly)
		}
	}
	if len(values) == 0 {
		return s
	}

	// stats only errors on empty input, which is excluded above.
	s.Mean, _ = stats.Mean(values)
	s.StdDev, _ = stats.StandardDeviation(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	s.Median, _ = stats.Median(values)
	return s
}
