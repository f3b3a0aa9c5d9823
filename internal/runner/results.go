package runner

import (
	"time"

	"emoeval/internal/aggregate"
	"emoeval/internal/parse"
	"emoeval/internal/record"
)

// Results is the persisted outcome of a run.
type Results struct {
	RunID      string       `json:"run_id"`
	Dataset    string       `json:"dataset"`
	Endpoint   EndpointInfo `json:"endpoint"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	// Cancelled is set when the run stopped scheduling trials early.
	Cancelled bool         `json:"cancelled"`
	Tasks     []TaskResult `json:"tasks"`
}

type EndpointInfo struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type TaskResult struct {
	TaskID        string            `json:"task_id"`
	Model         string            `json:"model"`
	Temperature   float64           `json:"temperature"`
	AccuracyField string            `json:"accuracy_field,omitempty"`
	Calls         []CallInfo        `json:"calls"`
	Fields        []parse.FieldSpec `json:"fields"`
	// Planned is the number of trials selected for the task.
	Planned int               `json:"planned"`
	Records []record.Result   `json:"records"`
	Summary aggregate.Summary `json:"summary"`
}

type CallInfo struct {
	ID           string `json:"id"`
	FunctionName string `json:"function_name,omitempty"`
	// PromptFallback reports that the inline prompt replaced a missing prompt file.
	PromptFallback bool `json:"prompt_fallback,omitempty"`
}

// CallIDs lists the task's call ids in call order.
func (t TaskResult) CallIDs() []string {
	ids := make([]string, 0, len(t.Calls))
	for _, call := range t.Calls {
		ids = append(ids, call.ID)
	}
	return ids
}

// Layout returns the CSV column layout of the task.
func (t TaskResult) Layout() record.Layout {
	return record.Layout{Fields: t.Fields, CallIDs: t.CallIDs()}
}

// SummaryOptions returns the aggregation options the task was summarized with.
func (t TaskResult) SummaryOptions(topK int) aggregate.Options {
	return aggregate.Options{
		AccuracyField: t.AccuracyField,
		TopK:          topK,
		Fields:        t.Fields,
		CallIDs:       t.CallIDs(),
	}
}

// Task returns the task result with the given id.
func (r Results) Task(id string) (TaskResult, bool) {
	for _, task := range r.Tasks {
		if task.TaskID == id {
			return task, true
		}
	}
	return TaskResult{}, false
}
