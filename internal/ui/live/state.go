package live

import (
	"time"

	"emoeval/internal/runner"
)

// CallStatus captures the latest inference call activity for a trial.
type CallStatus struct {
	ID        string
	State     string
	Status    string
	Elapsed   time.Duration
	StartedAt time.Time
}

// TrialRow holds UI state for a single trial.
type TrialRow struct {
	Index      int
	Character  string
	TrueLabel  string
	Sentence   string
	Status     runner.TrialEventType
	Call       CallStatus
	HasCall    bool
	Calls      int
	Predicted  string
	StartedAt  time.Time
	FinishedAt time.Time
	Elapsed    time.Duration
	Error      string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued     int
	Calling    int
	Done       int
	Correct    int
	Incorrect  int
	ParseError int
	Failed     int
}

// State captures the live UI state for a task run.
type State struct {
	RunID     string
	Dataset   string
	TaskID    string
	Model     string
	Planned   int
	StartedAt time.Time
	LastEvent string
	Rows      []TrialRow
	Counts    StatusCounts
}
