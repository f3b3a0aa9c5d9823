package record

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"emoeval/internal/dataset"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
)

// TestWriteCSVColumns verifies the column set, sentinels and encoding.
func TestWriteCSVColumns(t *testing.T) {
	emotion, _ := parse.Preset("emotion")
	score, _ := parse.Preset("score")
	layout := Layout{Fields: []parse.FieldSpec{emotion, score}, CallIDs: []string{"combined"}}
	records := []Result{
		{
			Trial: dataset.Trial{Index: 0, Character: "小明", TrueLabel: "喜悅", Sentence: "好開心, 真的"},
			Calls: []Call{{ID: "combined", Response: inference.Response{Outcome: inference.OutcomeSuccess, Text: "情緒：喜悅 程度：0.85", StatusCode: 200, ElapsedSeconds: 1.23456}}},
			Fields: parse.Fields{
				{Field: "emotion", Kind: parse.KindCategorical, Status: parse.StatusOK, Text: "喜悅"},
				{Field: "score", Kind: parse.KindFloat, Status: parse.StatusOK, Number: 0.85},
			},
			TotalSeconds: 1.23456,
		},
		{
			Trial: dataset.Trial{Index: 1, Character: "小明", TrueLabel: "悲傷", Sentence: "難過"},
			Calls: []Call{{ID: "combined", Response: inference.Response{Outcome: inference.OutcomeTimeout, ElapsedSeconds: 30}}},
			Fields: parse.Fields{
				{Field: "emotion", Kind: parse.KindCategorical, Status: parse.StatusError, Reason: "TIMEOUT_ERROR"},
				{Field: "score", Kind: parse.KindFloat, Status: parse.StatusParseError},
			},
			TotalSeconds: 30,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, layout, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\ufeff") {
		t.Fatalf("expected BOM prefix")
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	wantHeader := "character,true_label,sentence,emotion,score,combined_raw_response,combined_time,combined_status,total_time"
	if strings.Join(rows[0], ",") != wantHeader {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if got := rows[1]; got[2] != "好開心, 真的" || got[3] != "喜悅" || got[4] != "0.850" || got[6] != "1.235" || got[7] != "200" {
		t.Fatalf("unexpected first row %v", got)
	}
	if got := rows[2]; got[3] != "ERROR" || got[4] != "PARSE_ERROR" || got[5] != "TIMEOUT_ERROR" || got[7] != "TIMEOUT" {
		t.Fatalf("unexpected second row %v", got)
	}
}
