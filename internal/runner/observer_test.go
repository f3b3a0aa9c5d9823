package runner

import (
	"strings"
	"sync"
	"testing"

	"emoeval/internal/inference"
	"emoeval/internal/testutil"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []string
	trials []TrialEvent
}

func (o *recordingObserver) add(event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) OnRunStart(runID string, dataset string) {
	o.add("run_start:" + runID + ":" + dataset)
}

func (o *recordingObserver) OnTaskStart(taskID string, model string, _ int) {
	o.add("task_start:" + taskID + ":" + model)
}

func (o *recordingObserver) OnTrialEvent(event TrialEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trials = append(o.trials, event)
}

func (o *recordingObserver) OnTaskEnd(result TaskResult) {
	o.add("task_end:" + result.TaskID)
}

func (o *recordingObserver) OnRunEnd(results Results) {
	o.add("run_end:" + results.RunID)
}

func (o *recordingObserver) trialTypes(index int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var types []string
	for _, event := range o.trials {
		if event.TrialIndex == index {
			types = append(types, string(event.Type))
		}
	}
	return types
}

// TestRunObserverEmitsTrialLifecycle verifies ordered lifecycle and trial events.
func TestRunObserverEmitsTrialLifecycle(t *testing.T) {
	root := writeWorkspace(t)
	client := &scriptedClient{answers: map[string]inference.Response{
		"今天考了滿分": answer("情緒：喜悅\n強度：高", 1.0),
		"終於放假了":  answer("情緒：悲傷", 1.0),
		"小狗走丟了":  answer("我不確定", 1.0),
		"又被插隊了":  {Outcome: inference.OutcomeTimeout, ElapsedSeconds: 30},
	}}
	observer := &recordingObserver{}
	_, err := Run(testutil.Context(t, 0), combinedConfig(), RunParams{
		Root:     root,
		Observer: observer,
		Deps:     testDeps(client, &sleepRecorder{}),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lifecycle := strings.Join(observer.events, ",")
	if lifecycle != "run_start:run-1:sentences.json,task_start:combined:gpt-4.1,task_end:combined,run_end:run-1" {
		t.Fatalf("unexpected lifecycle: %s", lifecycle)
	}
	want := map[int]string{
		0: "queued,calling,call_done,correct",
		1: "queued,calling,call_done,incorrect",
		2: "queued,calling,call_done,parse_error",
		3: "queued,calling,call_done,failed",
	}
	for index, expected := range want {
		if got := strings.Join(observer.trialTypes(index), ","); got != expected {
			t.Fatalf("trial %d: expected %s, got %s", index, expected, got)
		}
	}
	for _, event := range observer.trials {
		if event.TaskID != "combined" || event.Sentence == "" || event.EmittedAt.IsZero() {
			t.Fatalf("incomplete event: %+v", event)
		}
		if event.Type == TrialIncorrect && event.Predicted != "悲傷" {
			t.Fatalf("expected predicted label on incorrect event, got %+v", event)
		}
	}
}
