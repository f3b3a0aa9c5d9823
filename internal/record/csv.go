package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"emoeval/internal/parse"
)

// Layout fixes the CSV column set for a task.
type Layout struct {
	Fields  []parse.FieldSpec
	CallIDs []string
}

// Header returns the column names.
func (l Layout) Header() []string {
	header := []string{"character", "true_label", "sentence"}
	for _, field := range l.Fields {
		header = append(header, field.Name)
	}
	for _, id := range l.CallIDs {
		header = append(header, id+"_raw_response", id+"_time", id+"_status")
	}
	return append(header, "total_time")
}

// Row renders one record. Failed fields are written as their sentinel.
func (l Layout) Row(r Result) []string {
	row := []string{r.Character, r.TrueLabel, r.Sentence}
	for _, field := range l.Fields {
		value, ok := r.Field(field.Name)
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, value.Display(field.Precision))
	}
	for _, id := range l.CallIDs {
		call, ok := r.Call(id)
		if !ok {
			row = append(row, "", "", "")
			continue
		}
		row = append(row,
			call.Response.RawText(),
			formatSeconds(call.Response.ElapsedSeconds),
			call.Response.StatusLabel(),
		)
	}
	return append(row, formatSeconds(r.TotalSeconds))
}

// WriteCSV writes a header and one row per record as UTF-8 with a BOM so
// spreadsheet tools detect the encoding of the Chinese text.
func WriteCSV(w io.Writer, layout Layout, records []Result) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(layout.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(layout.Row(r)); err != nil {
			return fmt.Errorf("write row %d: %w", r.Index, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
