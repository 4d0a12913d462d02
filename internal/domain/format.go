package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical text form of a record date.
const DateLayout = "2006-01-02"

// FormatDate renders a record date as YYYY-MM-DD, or "" when missing.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatAnomaly renders a value in its shortest round-trip decimal form with
// at least one fractional digit ("0.0", "1.2", "-0.1"). Missing values render
// as "".
func FormatAnomaly(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	switch {
	case math.IsInf(*v, 1):
		return "inf"
	case math.IsInf(*v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseCutoff parses a YYYY-MM month into the first of that month in UTC.
func ParseCutoff(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cutoff %q: %w", s, err)
	}
	return t, nil
}

// FormatReportRow renders a year and 12 monthly values in the CPC fixed-width
// layout. Nil values are written as MissingSentinel.
func FormatReportRow(year int, values [12]*float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d", year)
	for _, v := range values {
		if v == nil {
			fmt.Fprintf(&b, "%7s", MissingSentinel)
			continue
		}
		fmt.Fprintf(&b, "%6.1f", *v)
	}
	return b.String()
}
