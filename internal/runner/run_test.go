package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"emoeval/internal/config"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/spec"
	"emoeval/internal/testutil"
)

const runDataset = `[
  {"character_information": "小明", "sentences": [
    {"emotion_label": "喜悅", "emotion_sentences": ["今天考了滿分", "終於放假了"]},
    {"emotion_label": "悲傷", "emotion_sentences": ["小狗走丟了"]}
  ]},
  {"character_information": "小華", "sentences": [
    {"emotion_label": "憤怒", "emotion_sentences": ["又被插隊了"]}
  ]}
]`

// scriptedClient answers by sentence and records every request.
type scriptedClient struct {
	mu       sync.Mutex
	answers  map[string]inference.Response
	requests []inference.Request
	onInvoke func(req inference.Request)
}

func (c *scriptedClient) Invoke(_ context.Context, req inference.Request) inference.Response {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	resp, ok := c.answers[req.FunctionName+"|"+req.UserPrompt]
	if !ok {
		resp, ok = c.answers[req.UserPrompt]
	}
	c.mu.Unlock()
	if c.onInvoke != nil {
		c.onInvoke(req)
	}
	if !ok {
		return inference.Response{Outcome: inference.OutcomeSuccess, StatusCode: 200, Text: "情緒：信任\n強度：低", ElapsedSeconds: 0.25}
	}
	return resp
}

func (c *scriptedClient) calls() []inference.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]inference.Request(nil), c.requests...)
}

func answer(text string, elapsed float64) inference.Response {
	return inference.Response{Outcome: inference.OutcomeSuccess, StatusCode: 200, Text: text, ElapsedSeconds: elapsed}
}

// sleepRecorder replaces the inter-call delay with a counter.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *sleepRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "sentences.json"), runDataset)
	testutil.WriteFile(t, filepath.Join(root, "prompts", "tension.txt"), "Rate the tension.")
	return root
}

func combinedConfig() spec.Config {
	delay := 250
	cfg := spec.Config{
		Version: 1,
		Dataset: "sentences.json",
		Rate:    spec.RateConfig{DelayMS: &delay},
		Tasks: []spec.TaskConfig{{
			ID:    "combined",
			Model: "gpt-4.1",
			Calls: []spec.CallConfig{{
				FunctionName: "emotion-intensity-analyze",
				Prompt:       "Classify emotion and intensity.",
				Fields:       []string{"emotion", "intensity"},
			}},
		}},
	}
	config.Normalize(&cfg)
	return cfg
}

func testDeps(client inference.Client, sleeper *sleepRecorder) RunDependencies {
	return RunDependencies{
		ClientFactory: func(inference.Endpoint) (inference.Client, error) { return client, nil },
		RunID:         func() (string, error) { return "run-1", nil },
		Now:           testutil.NewStepClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), time.Millisecond).Now,
		Sleep:         sleeper.sleep,
	}
}

// TestRunCombinedCall verifies one record per trial, failures kept as
// error values and the summary computed over the log.
func TestRunCombinedCall(t *testing.T) {
	root := writeWorkspace(t)
	client := &scriptedClient{answers: map[string]inference.Response{
		"今天考了滿分": answer("情緒：喜悅\n強度：高", 1.0),
		"終於放假了":  answer("情緒：悲傷\n強度：中強度", 2.0),
		"小狗走丟了":  answer("情緒：悲傷\n強度：low", 3.0),
		"又被插隊了":  {Outcome: inference.OutcomeHTTPError, StatusCode: 500, ElapsedSeconds: 0.5},
	}}
	sleeper := &sleepRecorder{}
	results, err := Run(testutil.Context(t, 0), combinedConfig(), RunParams{
		Root: root,
		Deps: testDeps(client, sleeper),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results.RunID != "run-1" || results.Cancelled {
		t.Fatalf("unexpected run metadata: %+v", results)
	}
	if len(results.Tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(results.Tasks))
	}
	task := results.Tasks[0]
	if len(task.Records) != 4 || task.Planned != 4 {
		t.Fatalf("expected 4 records of 4 planned, got %d of %d", len(task.Records), task.Planned)
	}
	for i, rec := range task.Records {
		if rec.Index != i {
			t.Fatalf("record %d has index %d", i, rec.Index)
		}
		if rec.ID == "" {
			t.Fatalf("record %d has no id", i)
		}
	}
	failed := task.Records[3]
	emotion, _ := failed.Field("emotion")
	if emotion.Status != parse.StatusError {
		t.Fatalf("expected error status for failed call, got %+v", emotion)
	}
	if call, _ := failed.Call(task.Calls[0].ID); call.Response.RawText() != "HTTP_ERROR_500" {
		t.Fatalf("unexpected raw text %q", call.Response.RawText())
	}
	intensity, _ := task.Records[1].Field("intensity")
	if intensity.Text != "Medium" {
		t.Fatalf("expected Medium, got %+v", intensity)
	}

	acc := task.Summary.Accuracy
	if acc == nil || acc.Field != "emotion" {
		t.Fatalf("expected emotion accuracy, got %+v", acc)
	}
	if acc.Total != 4 || acc.Valid != 3 || acc.Correct != 2 {
		t.Fatalf("unexpected accuracy counts: %+v", acc)
	}
	if len(acc.Confusion) != 1 || acc.Confusion[0].True != "喜悅" || acc.Confusion[0].Predicted != "悲傷" {
		t.Fatalf("unexpected confusion: %+v", acc.Confusion)
	}

	requests := client.calls()
	if len(requests) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(requests))
	}
	if requests[0].FunctionName != "emotion-intensity-analyze" || requests[0].Model != "gpt-4.1" || requests[0].Temperature != 0.6 {
		t.Fatalf("unexpected request: %+v", requests[0])
	}
	if requests[0].DeveloperPrompt != "Classify emotion and intensity." || requests[0].UserPrompt != "今天考了滿分" {
		t.Fatalf("unexpected prompts: %+v", requests[0])
	}
	if sleeper.count() != 4 || sleeper.delays[0] != 250*time.Millisecond {
		t.Fatalf("expected a 250ms delay after each call, got %v", sleeper.delays)
	}
}

// TestRunSplitCalls verifies independent calls run in order and merge their
// fields into one record.
func TestRunSplitCalls(t *testing.T) {
	root := writeWorkspace(t)
	cfg := combinedConfig()
	cfg.Tasks = []spec.TaskConfig{{
		ID:    "split",
		Model: "gpt-4.1-mini",
		Calls: []spec.CallConfig{
			{ID: "emotion", FunctionName: "emotion-analyze", Prompt: "Emotion only.", Fields: []string{"emotion"}},
			{ID: "tension", FunctionName: "tension-analyze", PromptFile: "prompts/tension.txt", Fields: []string{"tension_metrics"}},
		},
	}}
	config.Normalize(&cfg)
	client := &scriptedClient{answers: map[string]inference.Response{
		"tension-analyze|今天考了滿分": answer("Modifier: 1\nIdiom: 0\nDegreeHead: 2\nWordCount: 12\nTension: 0.4321", 0.5),
	}}
	sleeper := &sleepRecorder{}
	results, err := Run(testutil.Context(t, 0), cfg, RunParams{
		Root:          root,
		Limit:         1,
		ModelOverride: "override-model",
		Deps:          testDeps(client, sleeper),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	task := results.Tasks[0]
	if task.Model != "override-model" {
		t.Fatalf("expected model override, got %q", task.Model)
	}
	if len(task.Records) != 1 {
		t.Fatalf("expected limit to keep one trial, got %d", len(task.Records))
	}
	rec := task.Records[0]
	if len(rec.Calls) != 2 || rec.Calls[0].ID != "emotion" || rec.Calls[1].ID != "tension" {
		t.Fatalf("unexpected calls: %+v", rec.Calls)
	}
	names := strings.Join(rec.Fields.Names(), ",")
	if names != "emotion,modifier,idiom,degree_head,word_count,tension" {
		t.Fatalf("unexpected field order %s", names)
	}
	tension, _ := rec.Field("tension")
	if value, ok := tension.Float(); !ok || value != 0.4321 {
		t.Fatalf("unexpected tension %+v", tension)
	}
	if rec.TotalSeconds != 0.75 {
		t.Fatalf("expected total 0.75s, got %v", rec.TotalSeconds)
	}
	requests := client.calls()
	if requests[1].DeveloperPrompt != "Rate the tension." {
		t.Fatalf("expected prompt file contents, got %q", requests[1].DeveloperPrompt)
	}
	if sleeper.count() != 2 {
		t.Fatalf("expected a delay after each call, got %d", sleeper.count())
	}
}

// TestRunPooledKeepsIndexOrder verifies pool workers append out of order but
// the persisted log is ordered by trial index.
func TestRunPooledKeepsIndexOrder(t *testing.T) {
	root := writeWorkspace(t)
	cfg := combinedConfig()
	cfg.Rate.Workers = 3
	client := &scriptedClient{
		answers: map[string]inference.Response{},
		onInvoke: func(req inference.Request) {
			if req.UserPrompt == "今天考了滿分" {
				time.Sleep(20 * time.Millisecond)
			}
		},
	}
	sleeper := &sleepRecorder{}
	results, err := Run(testutil.Context(t, 0), cfg, RunParams{Root: root, Deps: testDeps(client, sleeper)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	records := results.Tasks[0].Records
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Index != i {
			t.Fatalf("record %d has index %d", i, rec.Index)
		}
	}
	if sleeper.count() != 4 {
		t.Fatalf("expected per-worker delays for every call, got %d", sleeper.count())
	}
}

// TestRunCancellationKeepsCompletedRecords verifies cancellation stops
// scheduling without discarding finished trials.
func TestRunCancellationKeepsCompletedRecords(t *testing.T) {
	root := writeWorkspace(t)
	ctx, cancel := context.WithCancel(testutil.Context(t, 0))
	defer cancel()
	client := &scriptedClient{
		answers: map[string]inference.Response{},
		onInvoke: func(req inference.Request) {
			if req.UserPrompt == "終於放假了" {
				cancel()
			}
		},
	}
	results, err := Run(ctx, combinedConfig(), RunParams{Root: root, Deps: testDeps(client, &sleepRecorder{})})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !results.Cancelled {
		t.Fatalf("expected cancelled run")
	}
	task := results.Tasks[0]
	if len(task.Records) != 2 || task.Planned != 4 {
		t.Fatalf("expected 2 of 4 records, got %d of %d", len(task.Records), task.Planned)
	}
	if task.Summary.Total != 2 {
		t.Fatalf("expected summary over completed records, got %d", task.Summary.Total)
	}
}

// TestRunCancellationDropsPartialSplitTrial verifies a trial interrupted
// between or during its calls is neither kept nor counted as a failure.
func TestRunCancellationDropsPartialSplitTrial(t *testing.T) {
	cases := map[string]struct {
		emotionAnswered bool
	}{
		"cancelled after first call answered": {emotionAnswered: true},
		"cancelled during first call":         {emotionAnswered: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			root := writeWorkspace(t)
			cfg := combinedConfig()
			cfg.Tasks = []spec.TaskConfig{{
				ID:    "split",
				Model: "gpt-4.1-mini",
				Calls: []spec.CallConfig{
					{ID: "emotion", FunctionName: "emotion-analyze", Prompt: "Emotion only.", Fields: []string{"emotion"}},
					{ID: "tension", FunctionName: "tension-analyze", PromptFile: "prompts/tension.txt", Fields: []string{"tension_metrics"}},
				},
			}}
			config.Normalize(&cfg)
			ctx, cancel := context.WithCancel(testutil.Context(t, 0))
			defer cancel()
			var mu sync.Mutex
			var invoked []string
			client := inference.ClientFunc(func(ctx context.Context, req inference.Request) inference.Response {
				mu.Lock()
				invoked = append(invoked, req.FunctionName+"|"+req.UserPrompt)
				mu.Unlock()
				if ctx.Err() != nil {
					return inference.Response{Outcome: inference.OutcomeTransport, Error: ctx.Err().Error()}
				}
				if req.FunctionName == "emotion-analyze" {
					if req.UserPrompt == "終於放假了" {
						cancel()
						if !tc.emotionAnswered {
							return inference.Response{Outcome: inference.OutcomeTransport, Error: context.Canceled.Error()}
						}
					}
					return answer("情緒：喜悅", 0.25)
				}
				return answer("Modifier: 1\nIdiom: 0\nDegreeHead: 2\nWordCount: 12\nTension: 0.40", 0.5)
			})
			results, err := Run(ctx, cfg, RunParams{Root: root, Deps: testDeps(client, &sleepRecorder{})})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !results.Cancelled {
				t.Fatalf("expected cancelled run")
			}
			task := results.Tasks[0]
			if len(task.Records) != 1 || task.Records[0].Sentence != "今天考了滿分" {
				t.Fatalf("expected only the completed trial, got %+v", task.Records)
			}
			for _, outcome := range task.Summary.Outcomes {
				if outcome.Key == string(inference.OutcomeTransport) {
					t.Fatalf("expected no transport errors in summary, got %+v", task.Summary.Outcomes)
				}
			}
			mu.Lock()
			defer mu.Unlock()
			if len(invoked) != 3 || invoked[2] != "emotion-analyze|終於放假了" {
				t.Fatalf("expected the interrupted trial to stop after its first call, got %v", invoked)
			}
		})
	}
}

// TestRunFailsBeforeTrials verifies setup errors abort before any call.
func TestRunFailsBeforeTrials(t *testing.T) {
	cases := map[string]func(t *testing.T, root string, cfg *spec.Config){
		"missing dataset": func(_ *testing.T, _ string, cfg *spec.Config) { cfg.Dataset = "missing.json" },
		"malformed dataset": func(t *testing.T, root string, cfg *spec.Config) {
			testutil.WriteFile(t, filepath.Join(root, "bad.json"), `{"not": "a list"}`)
			cfg.Dataset = "bad.json"
		},
		"unknown task":  func(_ *testing.T, _ string, cfg *spec.Config) { cfg.Tasks[0].ID = "other" },
		"unknown field": func(_ *testing.T, _ string, cfg *spec.Config) { cfg.Tasks[0].Calls[0].Fields = []string{"mood"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			root := writeWorkspace(t)
			cfg := combinedConfig()
			mutate(t, root, &cfg)
			client := &scriptedClient{}
			_, err := Run(testutil.Context(t, 0), cfg, RunParams{
				Root:    root,
				TaskIDs: []string{"combined"},
				Deps:    testDeps(client, &sleepRecorder{}),
			})
			if err == nil {
				t.Fatalf("expected error")
			}
			if len(client.calls()) != 0 {
				t.Fatalf("expected no calls, got %d", len(client.calls()))
			}
		})
	}
}

// TestRunVerboseProgress verifies progress lines name the task and position.
func TestRunVerboseProgress(t *testing.T) {
	root := writeWorkspace(t)
	var out bytes.Buffer
	_, err := Run(testutil.Context(t, 0), combinedConfig(), RunParams{
		Root:          root,
		Limit:         2,
		Verbose:       true,
		VerboseWriter: &out,
		NoColor:       true,
		Deps:          testDeps(&scriptedClient{}, &sleepRecorder{}),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"[verbose] run run-1", "combined 1/2 (50.0%) [喜悅]", "emotion=信任 intensity=Low | 0.250s"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("expected no ANSI codes with NoColor")
	}
}

// TestRunAndWrite verifies persisted outputs and the structured run log.
func TestRunAndWrite(t *testing.T) {
	root := writeWorkspace(t)
	client := &scriptedClient{answers: map[string]inference.Response{}}
	deps := testDeps(client, &sleepRecorder{})
	results, paths, err := RunAndWrite(testutil.Context(t, 0), combinedConfig(), RunParams{Root: root, Deps: deps})
	if err != nil {
		t.Fatalf("run and write: %v", err)
	}
	wantDir := filepath.Join(root, ".emoeval", "results", "run-1")
	if paths.RunDir() != wantDir {
		t.Fatalf("unexpected run dir %s", paths.RunDir())
	}
	loaded, err := LoadResults(paths.ResultsPath())
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(loaded.Tasks) != 1 || len(loaded.Tasks[0].Records) != len(results.Tasks[0].Records) {
		t.Fatalf("unexpected loaded results: %+v", loaded.Tasks)
	}
	if loaded.Tasks[0].Fields[1].Kind != parse.KindOrdinal {
		t.Fatalf("expected field specs to round trip, got %+v", loaded.Tasks[0].Fields)
	}
	csvData, err := os.ReadFile(paths.CSVPath("combined"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !bytes.HasPrefix(csvData, []byte("\ufeffcharacter,true_label,sentence,emotion,intensity")) {
		t.Fatalf("unexpected csv header: %q", string(csvData[:60]))
	}
	logData, err := os.ReadFile(paths.LogPath())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(logData), `"message":"inference call"`) || !strings.Contains(string(logData), `"message":"task finished"`) {
		t.Fatalf("unexpected run log:\n%s", logData)
	}
}
