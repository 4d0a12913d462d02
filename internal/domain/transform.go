package domain

import (
	"fmt"
	"strings"
)

const (
	// StartMarker is the year label of the first anomaly row.
	StartMarker = "1951"

	// EndMarker introduces the standardized section that follows the
	// anomaly table.
	EndMarker = "STANDARDIZED"

	// MissingSentinel is the CPC encoding of an unreported month.
	MissingSentinel = "-999.9"

	// MissingToken replaces MissingSentinel before a line is split.
	MissingToken = "NA"
)

// ParseResult holds the well-formed rows of a block together with counts of
// the lines that were skipped.
type ParseResult struct {
	Rows      []AnomalyRow
	Blank     int
	Malformed int
}

// ExtractBlock locates the anomaly table within the report lines. Start is the
// first line whose trimmed text begins with StartMarker; End is the first line
// at or after Start that contains EndMarker.
func ExtractBlock(lines []string) (Block, error) {
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), StartMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return Block{}, fmt.Errorf("extract block: start marker %q: %w", StartMarker, ErrNotFound)
	}

	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], EndMarker) {
			return Block{Start: start, End: i}, nil
		}
	}
	return Block{}, fmt.Errorf("extract block: end marker %q after line %d: %w", EndMarker, start+1, ErrNotFound)
}

// ParseRows splits block lines into anomaly rows. Blank lines are skipped, the
// missing sentinel is substituted, and rows with a field count other than
// RowFields are dropped.
func ParseRows(block []string) ParseResult {
	var res ParseResult
	for _, line := range block {
		line = strings.TrimSpace(line)
		if line == "" {
			res.Blank++
			continue
		}

		fields := strings.Fields(strings.ReplaceAll(line, MissingSentinel, MissingToken))
		if len(fields) != RowFields {
			res.Malformed++
			continue
		}

		var row AnomalyRow
		copy(row[:], fields)
		res.Rows = append(res.Rows, row)
	}
	return res
}
