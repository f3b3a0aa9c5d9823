package live

import "emoeval/internal/runner"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventTaskStart signals the start of a task.
	EventTaskStart
	// EventTrial delivers a trial status update.
	EventTrial
	// EventTaskEnd signals task completion.
	EventTaskEnd
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	RunID    string
	Dataset  string
	TaskID   string
	Model    string
	Trials   int
	Accuracy string
	Trial    runner.TrialEvent
}
