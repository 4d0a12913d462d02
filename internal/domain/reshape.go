package domain

import "time"

// DefaultCutoff is the first month retained in the exported series.
var DefaultCutoff = time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)

// Melt reshapes the wide table into one record per (row, month), iterating
// rows in table order and months from January to December.
func Melt(t WideTable) []LongRecord {
	out := make([]LongRecord, 0, t.Len()*len(MonthLabels))
	for i := 0; i < t.Len(); i++ {
		year := t.Year(i)
		for m := range MonthLabels {
			rec := LongRecord{Date: monthDate(year, time.Month(m+1))}
			if v, ok := t.Value(i, m); ok {
				rec.Anomaly = &v
			}
			out = append(out, rec)
		}
	}
	return out
}

// monthDate returns the first of the month in UTC, or the zero time when the
// year cannot be written as a 4-digit calendar year.
func monthDate(year int, month time.Month) time.Time {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return time.Time{}
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// FilterStats counts the records removed by FilterSince.
type FilterStats struct {
	MissingDate  int
	BeforeCutoff int
}

// FilterSince drops records without a date and records dated before cutoff.
// Input order is preserved.
func FilterSince(records []LongRecord, cutoff time.Time) ([]LongRecord, FilterStats) {
	var stats FilterStats
	out := make([]LongRecord, 0, len(records))
	for _, rec := range records {
		switch {
		case !rec.HasDate():
			stats.MissingDate++
		case rec.Date.Before(cutoff):
			stats.BeforeCutoff++
		default:
			out = append(out, rec)
		}
	}
	return out, stats
}
