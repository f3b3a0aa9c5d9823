package runner

import "time"

// TrialEventType identifies a trial status update for observers.
type TrialEventType string

const (
	// TrialQueued marks a trial known but not yet started.
	TrialQueued TrialEventType = "queued"
	// TrialCalling marks an inference call in flight.
	TrialCalling TrialEventType = "calling"
	// TrialCallDone marks a finished inference call.
	TrialCallDone TrialEventType = "call_done"
	// TrialCorrect marks a valid prediction matching the true label.
	TrialCorrect TrialEventType = "correct"
	// TrialIncorrect marks a valid prediction differing from the true label.
	TrialIncorrect TrialEventType = "incorrect"
	// TrialParseError marks a trial whose calls succeeded but whose
	// prediction could not be extracted.
	TrialParseError TrialEventType = "parse_error"
	// TrialFailed marks a trial with at least one failed call.
	TrialFailed TrialEventType = "failed"
	// TrialDone marks a finished trial of a task without an accuracy field.
	TrialDone TrialEventType = "done"
)

// Finished reports whether the event is terminal for its trial.
func (t TrialEventType) Finished() bool {
	switch t {
	case TrialCorrect, TrialIncorrect, TrialParseError, TrialFailed, TrialDone:
		return true
	default:
		return false
	}
}

// TrialEvent carries a single status update for a trial.
type TrialEvent struct {
	TaskID     string
	TrialIndex int
	Character  string
	TrueLabel  string
	Sentence   string
	Type       TrialEventType
	CallID     string
	Status     string
	Predicted  string
	Elapsed    time.Duration
	Error      string
	EmittedAt  time.Time
}

// RunObserver receives run lifecycle events for UI or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, dataset string)
	// OnTaskStart signals the start of a task.
	OnTaskStart(taskID string, model string, trials int)
	// OnTrialEvent delivers a trial status update.
	OnTrialEvent(event TrialEvent)
	// OnTaskEnd signals task completion.
	OnTaskEnd(result TaskResult)
	// OnRunEnd signals run completion.
	OnRunEnd(results Results)
}

type nopObserver struct{}

func (nopObserver) OnRunStart(string, string)       {}
func (nopObserver) OnTaskStart(string, string, int) {}
func (nopObserver) OnTrialEvent(TrialEvent)         {}
func (nopObserver) OnTaskEnd(TaskResult)            {}
func (nopObserver) OnRunEnd(Results)                {}
