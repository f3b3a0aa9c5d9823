package live

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if state.Dataset != "" {
		line += " | Dataset: " + state.Dataset
	}
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the status counts line.
func renderSummary(state State, noColor bool) string {
	c := state.Counts
	line := fmt.Sprintf("Done: %d/%d  Queued: %d  Calling: %d  Correct: %d  Incorrect: %d  ParseErr: %d  Failed: %d",
		c.Done, max(state.Planned, len(state.Rows)), c.Queued, c.Calling, c.Correct, c.Incorrect, c.ParseError, c.Failed)
	if valid := c.Correct + c.Incorrect; valid > 0 {
		line += fmt.Sprintf("  Accuracy: %.2f%%", float64(c.Correct)/float64(valid)*100)
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderTaskLine renders the current task line.
func renderTaskLine(state State, noColor bool) string {
	if state.TaskID == "" {
		return ""
	}
	line := "Task " + state.TaskID
	if state.Model != "" {
		line += " | " + state.Model
	}
	return stylize(line, noColor, lipgloss.Color("240"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
