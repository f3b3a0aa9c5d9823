package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	minSentenceWidth     = 12
	defaultSentenceWidth = 40
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the column layout for an unknown terminal width.
func defaultColumns() []table.Column {
	return columnsWithSentence(defaultSentenceWidth)
}

// columnsForWidth gives the sentence column whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	fixed := 0
	for _, column := range columnsWithSentence(0) {
		fixed += column.Width + 2
	}
	return columnsWithSentence(max(width-fixed-2, minSentenceWidth))
}

func columnsWithSentence(sentenceWidth int) []table.Column {
	return []table.Column{
		{Title: "Trial", Width: 6},
		{Title: "Label", Width: 6},
		{Title: "Sentence", Width: sentenceWidth},
		{Title: "Status", Width: 28},
		{Title: "Predicted", Width: 12},
		{Title: "Time", Width: 9},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool, sentenceWidth int) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatIndex(row.Index),
			row.TrueLabel,
			formatSentence(row.Sentence, sentenceWidth),
			formatStatus(row, now, noColor),
			row.Predicted,
			formatRowDuration(row, now),
		})
	}
	return rows
}
