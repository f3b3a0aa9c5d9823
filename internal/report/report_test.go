package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"emoeval/internal/aggregate"
	"emoeval/internal/config"
	"emoeval/internal/dataset"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/record"
	"emoeval/internal/runner"
	"emoeval/internal/spec"
	"emoeval/internal/testutil"
)

func sampleRecord(index int, truth, text string, elapsed float64) record.Result {
	resp := inference.Response{Outcome: inference.OutcomeSuccess, StatusCode: 200, Text: text, ElapsedSeconds: elapsed}
	parser := parse.MustNew(mustPreset("emotion"), mustPreset("intensity"))
	return record.Result{
		ID:           "rec",
		Trial:        dataset.Trial{Index: index, Character: "小明", TrueLabel: truth, Sentence: "句子"},
		Calls:        []record.Call{{ID: "combined", Response: resp}},
		Fields:       resp.Fields(parser),
		TotalSeconds: elapsed,
	}
}

func mustPreset(name string) parse.FieldSpec {
	field, ok := parse.Preset(name)
	if !ok {
		panic("unknown preset " + name)
	}
	return field
}

func sampleResults(runID string) runner.Results {
	task := runner.TaskResult{
		TaskID:        "combined",
		Model:         "gpt-4.1",
		Temperature:   0.6,
		AccuracyField: "emotion",
		Calls:         []runner.CallInfo{{ID: "combined", FunctionName: "emotion-intensity-analyze"}},
		Fields:        []parse.FieldSpec{mustPreset("emotion"), mustPreset("intensity")},
		Planned:       3,
		Records: []record.Result{
			sampleRecord(0, "喜悅", "情緒：喜悅\n強度：高", 1.0),
			sampleRecord(1, "喜悅", "情緒：悲傷\n強度：低", 2.0),
			sampleRecord(2, "悲傷", "我不知道", 3.0),
		},
	}
	task.Summary = aggregate.Summarize(task.Records, task.SummaryOptions(10))
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return runner.Results{
		RunID:      runID,
		Dataset:    "sentences.json",
		Endpoint:   runner.EndpointInfo{Kind: "proxy", URL: inference.DefaultProxyURL},
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Tasks:      []runner.TaskResult{task},
	}
}

func writeRun(t *testing.T, outputDir string, results runner.Results) {
	t.Helper()
	paths, err := runner.NewOutputPaths(outputDir, results.RunID)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if err := runner.WriteRunOutputs(results, paths); err != nil {
		t.Fatalf("write outputs: %v", err)
	}
}

// TestResolveRunLatestAndByID verifies run resolution by id and recency.
func TestResolveRunLatestAndByID(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, sampleResults("20250301T090000Z-aaaaaaaaaaaa"))
	writeRun(t, root, sampleResults("20250302T090000Z-bbbbbbbbbbbb"))

	latest, _, err := ResolveRun(root, LatestRef)
	if err != nil {
		t.Fatalf("resolve latest: %v", err)
	}
	if latest.RunID != "20250302T090000Z-bbbbbbbbbbbb" {
		t.Fatalf("unexpected latest run: %s", latest.RunID)
	}
	first, dir, err := ResolveRun(root, "20250301T090000Z-aaaaaaaaaaaa")
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if first.RunID != "20250301T090000Z-aaaaaaaaaaaa" || !strings.HasSuffix(dir, "20250301T090000Z-aaaaaaaaaaaa") {
		t.Fatalf("unexpected run %s in %s", first.RunID, dir)
	}
	if _, _, err := ResolveRun(root, "missing"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
	if _, _, err := ResolveRun(t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty output dir")
	}
}

// TestWriteSummary verifies the console sections and number formats.
func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	if err := WriteSummary(&out, sampleResults("run-1")); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Run run-1",
		"Wall time: 90.000s",
		"=== Task combined (model gpt-4.1, temperature 0.60) ===",
		"Valid predictions: 2/3 (66.67%)",
		"Accuracy: 50.00% (1/2 correct)",
		"喜悅 -> 悲傷: 1",
		"combined: n=3 mean 2.000s",
		"--- intensity distribution ---",
		"emotion: 1 failed (33.33%)",
		"    PARSE_ERROR: 1",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in summary:\n%s", want, text)
		}
	}
}

// TestRenderHTMLEscapes verifies the report includes run data and escapes it.
func TestRenderHTMLEscapes(t *testing.T) {
	results := sampleResults("run-<1>")
	html, err := RenderHTML(testutil.Context(t, 0), results)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<!doctype html>", "Run run-&lt;1&gt;", "<table", "50.00%", "gpt-4.1"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in report", want)
		}
	}
	if strings.Contains(html, "run-<1>") {
		t.Fatalf("expected run id to be escaped")
	}
}

// TestReparseUsesCurrentFields verifies stored raw responses are parsed
// again with the configured field set.
func TestReparseUsesCurrentFields(t *testing.T) {
	results := sampleResults("run-1")
	cfg := spec.Config{
		Fields: []spec.FieldConfig{{Name: "emotion", Vocabulary: []string{"喜悅", "悲傷", "驚奇"}}},
		Tasks: []spec.TaskConfig{{
			ID:    "combined",
			Model: "gpt-4.1",
			Calls: []spec.CallConfig{{ID: "combined", FunctionName: "emotion-intensity-analyze", Prompt: "p", Fields: []string{"emotion"}}},
		}},
	}
	config.Normalize(&cfg)
	reparsed, err := Reparse(results, cfg)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	task := reparsed.Tasks[0]
	if len(task.Fields) != 1 || task.Fields[0].Name != "emotion" {
		t.Fatalf("expected only the emotion field, got %+v", task.Fields)
	}
	if names := task.Records[0].Fields.Names(); len(names) != 1 {
		t.Fatalf("expected one parsed field, got %v", names)
	}
	if task.Summary.Accuracy == nil || task.Summary.Accuracy.Valid != 2 {
		t.Fatalf("expected summary recomputed, got %+v", task.Summary.Accuracy)
	}
	if len(results.Tasks[0].Fields) != 2 {
		t.Fatalf("expected input results untouched")
	}
}
