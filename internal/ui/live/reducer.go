package live

import (
	"fmt"
	"time"

	"emoeval/internal/runner"
)

// Reduce applies a trial event to the UI state.
func Reduce(state State, event runner.TrialEvent) State {
	state = ensureRow(state, event)
	state = applyTrialEvent(state, event)
	state.Counts = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, event runner.TrialEvent) State {
	if event.TrialIndex < 0 || event.TrialIndex < len(state.Rows) {
		return state
	}
	rows := make([]TrialRow, event.TrialIndex+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = TrialRow{Index: i, Status: runner.TrialQueued}
	}
	state.Rows = rows
	return state
}

// applyTrialEvent updates a row with the given event.
func applyTrialEvent(state State, event runner.TrialEvent) State {
	if event.TrialIndex < 0 || event.TrialIndex >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.TrialIndex]
	if row.Sentence == "" {
		row.Character = event.Character
		row.TrueLabel = event.TrueLabel
		row.Sentence = event.Sentence
	}
	switch event.Type {
	case runner.TrialCalling:
		row.Status = runner.TrialCalling
		row.Call = CallStatus{ID: event.CallID, State: "running", StartedAt: event.EmittedAt}
		row.HasCall = true
		if row.StartedAt.IsZero() {
			row.StartedAt = event.EmittedAt
		}
	case runner.TrialCallDone:
		elapsed := event.Elapsed
		if elapsed <= 0 && !row.Call.StartedAt.IsZero() && !event.EmittedAt.IsZero() {
			elapsed = event.EmittedAt.Sub(row.Call.StartedAt)
		}
		row.Call = CallStatus{
			ID:        event.CallID,
			State:     "done",
			Status:    event.Status,
			Elapsed:   elapsed,
			StartedAt: row.Call.StartedAt,
		}
		row.HasCall = true
		row.Calls++
		if event.Error != "" {
			row.Error = event.Error
		}
	default:
		row.Status = event.Type
		if event.Type.Finished() {
			if !event.EmittedAt.IsZero() {
				row.FinishedAt = event.EmittedAt
			}
			row.Elapsed = event.Elapsed
			row.Predicted = event.Predicted
			if event.Error != "" {
				row.Error = event.Error
			}
		}
	}
	state.Rows[event.TrialIndex] = row
	return state
}

// recount recomputes status counts for the current rows.
func recount(rows []TrialRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case runner.TrialQueued:
			counts.Queued++
		case runner.TrialCalling:
			counts.Calling++
		case runner.TrialCorrect:
			counts.Done++
			counts.Correct++
		case runner.TrialIncorrect:
			counts.Done++
			counts.Incorrect++
		case runner.TrialParseError:
			counts.Done++
			counts.ParseError++
		case runner.TrialFailed:
			counts.Done++
			counts.Failed++
		case runner.TrialDone:
			counts.Done++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event runner.TrialEvent) string {
	id := formatIndex(event.TrialIndex)
	switch event.Type {
	case runner.TrialCallDone:
		if event.Error != "" {
			return fmt.Sprintf("%s call %s %s (%s)", id, event.CallID, event.Status, event.Error)
		}
		return fmt.Sprintf("%s call %s %s in %s", id, event.CallID, event.Status, formatDuration(event.Elapsed))
	case runner.TrialFailed:
		return fmt.Sprintf("%s failed", id)
	case runner.TrialParseError:
		return fmt.Sprintf("%s parse error", id)
	case runner.TrialCorrect, runner.TrialIncorrect:
		return fmt.Sprintf("%s predicted %s (true %s)", id, event.Predicted, event.TrueLabel)
	case runner.TrialDone:
		return fmt.Sprintf("%s completed", id)
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(10 * time.Millisecond).String()
}
