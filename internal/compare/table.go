package compare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key columns shared by every task CSV.
const (
	ColumnCharacter = "character"
	ColumnTrueLabel = "true_label"
	ColumnSentence  = "sentence"
	ColumnTotalTime = "total_time"
)

// Table is one task CSV held in memory.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Load reads a task CSV. The table name is the file name without extension.
func Load(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := Read(name, file)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// Read parses CSV data with a header row. A leading UTF-8 BOM is ignored.
func Read(name string, r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, errors.New("missing header row")
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table := Table{Name: name, Header: header, Rows: rows[1:], index: map[string]int{}}
	for i, column := range header {
		table.index[column] = i
	}
	for _, required := range []string{ColumnTrueLabel, ColumnSentence} {
		if !table.Has(required) {
			return Table{}, fmt.Errorf("missing column %q", required)
		}
	}
	return table, nil
}

// Has reports whether the table has column.
func (t Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Cell returns the value of column in row, or "" when absent.
func (t Table) Cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t Table) key(row []string) string {
	return t.Cell(row, ColumnSentence) + "\x00" + t.Cell(row, ColumnTrueLabel)
}
