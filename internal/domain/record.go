package domain

import "time"

// MonthLabels are the calendar month column labels of the wide table, in
// definitional order.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Column names shared by the wide table and the exported series.
const (
	YearColumn    = "Year"
	DateColumn    = "Date"
	AnomalyColumn = "soi_anomaly"
)

// RowFields is the field count of a well-formed anomaly row: year + 12 months.
const RowFields = 13

// Block is the half-open line range [Start, End) of the anomaly table.
type Block struct {
	Start int
	End   int
}

// Len returns the number of lines in the block.
func (b Block) Len() int { return b.End - b.Start }

// AnomalyRow is a well-formed report row: a year label followed by 12 monthly
// tokens, any of which may be [MissingToken].
type AnomalyRow [RowFields]string

// LongRecord is one monthly observation of the long series.
type LongRecord struct {
	// Date is the first of the month in UTC; the zero value means the date
	// could not be built.
	Date time.Time
	// Anomaly is nil when the month was missing or non-numeric.
	Anomaly *float64
}

// HasDate reports whether the record carries a valid calendar date.
func (r LongRecord) HasDate() bool { return !r.Date.IsZero() }
