package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// WideTable is the year-by-month anomaly table. Month cells that failed
// numeric coercion are stored as NaN and reported as missing.
type WideTable struct {
	frame  dataframe.DataFrame
	years  []int
	months [len(MonthLabels)][]float64
}

// Columns returns the wide table column labels: Year followed by the months.
func Columns() []string {
	cols := make([]string, 0, RowFields)
	cols = append(cols, YearColumn)
	return append(cols, MonthLabels[:]...)
}

// BuildWideTable labels the fields of each row and coerces them: the year must
// be an integer (ErrParse otherwise), while month tokens that are not numeric
// become missing.
func BuildWideTable(rows []AnomalyRow) (WideTable, error) {
	if len(rows) == 0 {
		return WideTable{}, nil
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, Columns())
	for i := range rows {
		if _, err := strconv.Atoi(rows[i][0]); err != nil {
			return WideTable{}, fmt.Errorf("build table: row %d year %q: %w", i+1, rows[i][0], ErrParse)
		}
		record := make([]string, RowFields)
		record[0] = rows[i][0]
		for m := 1; m < RowFields; m++ {
			record[m] = numericToken(rows[i][m])
		}
		records = append(records, record)
	}

	frame := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(map[string]series.Type{YearColumn: series.Int}),
		dataframe.NaNValues([]string{MissingToken, "NaN"}),
	)
	if frame.Err != nil {
		return WideTable{}, fmt.Errorf("build table: %w", frame.Err)
	}

	years, err := frame.Col(YearColumn).Int()
	if err != nil {
		return WideTable{}, fmt.Errorf("build table: year column: %w", ErrParse)
	}

	t := WideTable{frame: frame, years: years}
	for m, label := range MonthLabels {
		t.months[m] = frame.Col(label).Float()
	}
	return t, nil
}

// numericToken maps tokens that Go's float parser accepts but a decimal
// report cannot contain (hex floats, digit separators) to MissingToken.
func numericToken(tok string) string {
	if strings.ContainsAny(tok, "xX_") {
		return MissingToken
	}
	return tok
}

// Len returns the number of rows.
func (t WideTable) Len() int { return len(t.years) }

// Year returns the year label of row i.
func (t WideTable) Year(i int) int { return t.years[i] }

// Value returns the anomaly of row i for the zero-based month index, and
// false when the cell is missing.
func (t WideTable) Value(i, month int) (float64, bool) {
	v := t.months[month][i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Frame exposes the underlying dataframe for diagnostics.
func (t WideTable) Frame() dataframe.DataFrame { return t.frame }
