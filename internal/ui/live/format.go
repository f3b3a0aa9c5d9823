package live

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"emoeval/internal/runner"
)

// formatIndex formats a trial index.
func formatIndex(index int) string {
	return "#" + pad3(index+1)
}

// pad3 left-pads a number to three digits when needed.
func pad3(value int) string {
	s := strconv.Itoa(value)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// formatSentence truncates a sentence for display. Widths count runes since
// the dataset is mostly CJK text.
func formatSentence(text string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}

// formatStatus renders a status string for a row.
func formatStatus(row TrialRow, now time.Time, noColor bool) string {
	primary := stylizeStatus(statusLabel(row.Status), row.Status, noColor)
	call := formatCallStatus(row, now, noColor)
	if call == "" {
		return primary
	}
	return primary + " | " + call
}

// statusLabel maps status codes to display labels.
func statusLabel(status runner.TrialEventType) string {
	switch status {
	case runner.TrialCallDone:
		return "calling"
	case runner.TrialParseError:
		return "parse error"
	default:
		return string(status)
	}
}

// formatCallStatus renders the call sub-status text.
func formatCallStatus(row TrialRow, now time.Time, noColor bool) string {
	if !row.HasCall || row.Status.Finished() {
		return ""
	}
	label := row.Call.ID
	switch row.Call.State {
	case "running":
		if !row.Call.StartedAt.IsZero() {
			label += " " + formatDuration(now.Sub(row.Call.StartedAt))
		}
	case "done":
		label += " " + row.Call.Status
	}
	return stylizeCall(label, noColor)
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row TrialRow, now time.Time) string {
	if row.Status.Finished() && row.Elapsed > 0 {
		return formatSeconds(row.Elapsed)
	}
	if !row.StartedAt.IsZero() && row.FinishedAt.IsZero() {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}

// stylizeStatus applies status coloring when enabled.
func stylizeStatus(text string, status runner.TrialEventType, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

// stylizeCall applies muted styling to call sub-status.
func stylizeCall(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status runner.TrialEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.TrialCorrect, runner.TrialDone:
		color = lipgloss.Color("42")
	case runner.TrialIncorrect:
		color = lipgloss.Color("220")
	case runner.TrialParseError:
		color = lipgloss.Color("201")
	case runner.TrialFailed:
		color = lipgloss.Color("196")
	case runner.TrialCalling, runner.TrialCallDone:
		color = lipgloss.Color("33")
	case runner.TrialQueued:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
