package report

import (
	"fmt"
	"strconv"
)

// formatPercent renders a 0..100 percentage with two decimals.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// formatSeconds renders a duration in seconds with millisecond precision.
func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3fs", s)
}

// formatNumber renders a field value with the field's display precision.
func formatNumber(v float64, precision int) string {
	if precision <= 0 {
		precision = 3
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func formatStd(std *float64, precision int) string {
	if std == nil {
		return "n/a"
	}
	return formatNumber(*std, precision)
}
