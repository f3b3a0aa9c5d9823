package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"emoeval/internal/parse"
)

var keyColumns = []string{ColumnCharacter, ColumnTrueLabel, ColumnSentence}

// Joined is a wide table with one row per (sentence, true label) and the
// remaining columns of each input prefixed by the input's name.
type Joined struct {
	Header []string
	Rows   [][]string
}

// Join aligns tables row by row on (sentence, true label). A key repeated
// within one table is matched by occurrence. Rows missing from a table leave
// its columns empty.
func Join(tables []Table) Joined {
	type slot struct {
		key        string
		occurrence int
	}
	var order []slot
	seen := map[slot]bool{}
	keyValues := map[slot][]string{}
	cells := map[slot]map[string]string{}

	header := append([]string(nil), keyColumns...)
	for _, table := range tables {
		columns := lo.Filter(table.Header, func(column string, _ int) bool {
			return !lo.Contains(keyColumns, column)
		})
		for _, column := range columns {
			header = append(header, table.Name+":"+column)
		}
		occurrences := map[string]int{}
		for _, row := range table.Rows {
			key := table.key(row)
			s := slot{key: key, occurrence: occurrences[key]}
			occurrences[key]++
			if !seen[s] {
				seen[s] = true
				order = append(order, s)
				keyValues[s] = lo.Map(keyColumns, func(column string, _ int) string { return table.Cell(row, column) })
				cells[s] = map[string]string{}
			}
			for _, column := range columns {
				cells[s][table.Name+":"+column] = table.Cell(row, column)
			}
		}
	}

	out := Joined{Header: header}
	for _, s := range order {
		row := append([]string(nil), keyValues[s]...)
		for _, column := range header[len(keyColumns):] {
			row = append(row, cells[s][column])
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// WriteCSV writes the joined table as UTF-8 with a BOM.
func WriteCSV(w io.Writer, joined Joined) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(joined.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(joined.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Stats summarizes one table.
type Stats struct {
	Name    string
	Rows    int
	Valid   int
	Correct int
	// MeanSeconds averages total_time over rows where it parses as a number.
	MeanSeconds float64
}

// Accuracy is correct over valid predictions as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Valid == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Valid) * 100
}

// Summarize computes accuracy of column against the true label. Cells
// holding a failure sentinel are not valid predictions.
func Summarize(table Table, column string) Stats {
	stats := Stats{Name: table.Name, Rows: len(table.Rows)}
	var total float64
	var timed int
	for _, row := range table.Rows {
		if table.Has(column) {
			predicted := strings.TrimSpace(table.Cell(row, column))
			if predicted != "" && !isSentinel(predicted) {
				stats.Valid++
				if predicted == table.Cell(row, ColumnTrueLabel) {
					stats.Correct++
				}
			}
		}
		cell := strings.TrimSpace(table.Cell(row, ColumnTotalTime))
		if cell == "" {
			continue
		}
		seconds, err := cast.ToFloat64E(cell)
		if err == nil && !math.IsNaN(seconds) {
			total += seconds
			timed++
		}
	}
	if timed > 0 {
		stats.MeanSeconds = total / float64(timed)
	}
	return stats
}

func isSentinel(value string) bool {
	if _, ok := parse.ErrorSentinel(value); ok {
		return true
	}
	return strings.HasPrefix(value, parse.SentinelParseError)
}
