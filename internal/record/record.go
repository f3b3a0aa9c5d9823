package record

import (
	"emoeval/internal/dataset"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
)

// Call is one inference call made for a trial.
type Call struct {
	ID       string             `json:"id"`
	Response inference.Response `json:"response"`
}

// Result is the durable record of one trial. It is never modified once
// appended to a batch.
type Result struct {
	ID string `json:"id"`
	dataset.Trial
	Calls        []Call       `json:"calls"`
	Fields       parse.Fields `json:"fields"`
	TotalSeconds float64      `json:"total_seconds"`
}

// Field returns the parsed value for name.
func (r Result) Field(name string) (parse.Value, bool) {
	return r.Fields.Get(name)
}

// Call returns the call with the given id.
func (r Result) Call(id string) (Call, bool) {
	for _, call := range r.Calls {
		if call.ID == id {
			return call, true
		}
	}
	return Call{}, false
}

// Failed reports whether any call of the trial did not succeed.
func (r Result) Failed() bool {
	for _, call := range r.Calls {
		if !call.Response.OK() {
			return true
		}
	}
	return false
}
