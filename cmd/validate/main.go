// Command validate cross-checks an exported SOI CSV against the report it was
// derived from. It recomputes the expected series from the report and
// verifies the header, row count, per-month values, month alignment, and the
// cutoff bound.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -report data/mock/enso.txt \
//	  -csv output_data/soi_index.csv \
//	  -cutoff 1985-01
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/climate-index-etl/internal/adapter/file"
	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	reportPath := flag.String("report", "", "path to the fixed-width SOI report")
	csvPath := flag.String("csv", "", "path to the exported CSV")
	cutoff := flag.String("cutoff", "1985-01", "first retained month (YYYY-MM)")
	flag.Parse()

	if *reportPath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*reportPath, *csvPath, *cutoff); code != 0 {
		os.Exit(code)
	}
}

func run(reportPath, csvPath, cutoffText string) int {
	fmt.Println("=== SOI Export Validation ===")
	fmt.Println()

	cutoff, err := domain.ParseCutoff(cutoffText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	expected, err := expectedRecords(reportPath, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: derive expected series: %v\n", err)
		return 1
	}

	rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "FATAL: CSV is empty")
		return 1
	}
	header, body := rows[0], rows[1:]

	phases := []*phase{
		validateHeader(header),
		validateRowCount(body, expected),
		validateValues(body, expected),
		validateMonths(body),
		validateCutoff(body, cutoff),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d expected from report, %d in CSV\n", len(expected), len(body))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// expectedRecords runs the domain steps over the report without any sinks.
func expectedRecords(path string, cutoff time.Time) ([]domain.LongRecord, error) {
	logger := slog.New(slog.DiscardHandler)
	lines, err := file.NewReader(path, logger).Extract(context.Background())
	if err != nil {
		return nil, err
	}
	block, err := domain.ExtractBlock(lines)
	if err != nil {
		return nil, err
	}
	parsed := domain.ParseRows(lines[block.Start:block.End])
	table, err := domain.BuildWideTable(parsed.Rows)
	if err != nil {
		return nil, err
	}
	records, _ := domain.FilterSince(domain.Melt(table), cutoff)
	return records, nil
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	return r.ReadAll()
}

// ── Phase 1: header ──

func validateHeader(header []string) *phase {
	p := &phase{name: "Phase 1: Header"}
	fmt.Println("Phase 1: Header...")
	want := []string{domain.DateColumn, domain.AnomalyColumn}
	if len(header) != len(want) {
		p.errorf("header has %d columns, want %d", len(header), len(want))
		return p
	}
	for i := range want {
		if header[i] != want[i] {
			p.errorf("column %d: got %q, want %q", i, header[i], want[i])
		}
	}
	return p
}

// ── Phase 2: row count parity ──

func validateRowCount(body [][]string, expected []domain.LongRecord) *phase {
	p := &phase{name: "Phase 2: Row Count Parity"}
	fmt.Println("Phase 2: Row Count Parity...")
	if len(body) != len(expected) {
		p.errorf("CSV has %d records, report yields %d", len(body), len(expected))
	}
	return p
}

// ── Phase 3: value parity ──

func validateValues(body [][]string, expected []domain.LongRecord) *phase {
	p := &phase{name: "Phase 3: Value Parity"}
	fmt.Println("Phase 3: Value Parity...")
	n := min(len(body), len(expected))
	for i := range n {
		wantDate := domain.FormatDate(expected[i].Date)
		wantValue := domain.FormatAnomaly(expected[i].Anomaly)
		if body[i][0] != wantDate {
			p.errorf("row %d: date %q, want %q", i+1, body[i][0], wantDate)
			continue
		}
		if body[i][1] != wantValue {
			p.errorf("%s: anomaly %q, want %q", wantDate, body[i][1], wantValue)
		}
	}
	return p
}

// ── Phase 4: month alignment ──

// validateMonths requires every date to be the first of a month. Order follows
// the report rows, so a date that does not advance is only a warning.
func validateMonths(body [][]string) *phase {
	p := &phase{name: "Phase 4: Month Alignment"}
	fmt.Println("Phase 4: Month Alignment...")
	var prev time.Time
	for i, row := range body {
		d, err := time.Parse(domain.DateLayout, row[0])
		if err != nil {
			p.errorf("row %d: unparseable date %q", i+1, row[0])
			continue
		}
		if d.Day() != 1 {
			p.errorf("row %d: %s is not the first of the month", i+1, row[0])
		}
		if !prev.IsZero() && !d.After(prev) {
			fmt.Printf("  warning: row %d: %s does not follow %s\n", i+1, row[0], prev.Format(domain.DateLayout))
		}
		prev = d
	}
	return p
}

// ── Phase 5: cutoff bound ──

func validateCutoff(body [][]string, cutoff time.Time) *phase {
	p := &phase{name: "Phase 5: Cutoff Bound"}
	fmt.Println("Phase 5: Cutoff Bound...")
	for i, row := range body {
		d, err := time.Parse(domain.DateLayout, row[0])
		if err != nil {
			continue
		}
		if d.Before(cutoff) {
			p.errorf("row %d: %s is before cutoff %s", i+1, row[0], cutoff.Format("2006-01"))
		}
	}
	return p
}
