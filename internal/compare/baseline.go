package compare

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"emoeval/internal/aggregate"
)

// DefaultDiffBinWidth buckets score differences in steps of 0.05.
const DefaultDiffBinWidth = 0.05

// Diff is the row-wise difference of one table's score column from the
// baseline table's.
type Diff struct {
	Column  string
	Summary aggregate.NumericSummary
}

// DiffColumn names the difference column of table against baseline.
func DiffColumn(table, baseline string) string {
	return table + " - " + baseline
}

// AddBaselineDiffs appends a "<name> - <baseline>" column to joined for every
// other table carrying field. A cell is filled only when both scores parse as
// numbers. The distribution of each column is summarized and binned by
// binWidth.
func AddBaselineDiffs(joined *Joined, baseline, field string, binWidth float64) ([]Diff, error) {
	baseIdx := lo.IndexOf(joined.Header, baseline+":"+field)
	if baseIdx < 0 {
		return nil, fmt.Errorf("baseline %s has no %s column", baseline, field)
	}
	if binWidth <= 0 {
		binWidth = DefaultDiffBinWidth
	}

	var diffs []Diff
	suffix := ":" + field
	for idx, column := range joined.Header {
		if idx == baseIdx || idx < len(keyColumns) || !strings.HasSuffix(column, suffix) {
			continue
		}
		name := DiffColumn(strings.TrimSuffix(column, suffix), baseline)
		var values []float64
		for i, row := range joined.Rows {
			cell := ""
			if d, ok := difference(row[idx], row[baseIdx]); ok {
				values = append(values, d)
				cell = strconv.FormatFloat(d, 'f', 4, 64)
			}
			joined.Rows[i] = append(row, cell)
		}
		joined.Header = append(joined.Header, name)

		summary := aggregate.Describe(values)
		summary.Field = name
		summary.Precision = 4
		summary.Failed = len(joined.Rows) - len(values)
		summary.Histogram = aggregate.Histogram(values, binWidth)
		diffs = append(diffs, Diff{Column: name, Summary: summary})
	}
	return diffs, nil
}

func difference(cell, base string) (float64, bool) {
	a, ok := score(cell)
	if !ok {
		return 0, false
	}
	b, ok := score(base)
	if !ok {
		return 0, false
	}
	return a - b, true
}

func score(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || isSentinel(cell) {
		return 0, false
	}
	n, err := cast.ToFloat64E(cell)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
