package report

import (
	"fmt"
	"io"
	"strings"

	"emoeval/internal/aggregate"
	"emoeval/internal/runner"
)

const rule = "================================================================"

// WriteSummary prints the console summary of a run.
func WriteSummary(w io.Writer, results runner.Results) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRun %s\n%s\n", rule, results.RunID, rule)
	fmt.Fprintf(&b, "Dataset: %s\n", results.Dataset)
	fmt.Fprintf(&b, "Endpoint: %s %s\n", results.Endpoint.Kind, results.Endpoint.URL)
	if !results.StartedAt.IsZero() && !results.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Wall time: %s\n", formatSeconds(results.FinishedAt.Sub(results.StartedAt).Seconds()))
	}
	if results.Cancelled {
		b.WriteString("Run was cancelled; summaries cover completed trials only.\n")
	}
	for _, task := range results.Tasks {
		writeTask(&b, task)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTask(b *strings.Builder, task runner.TaskResult) {
	s := task.Summary
	fmt.Fprintf(b, "\n=== Task %s (model %s, temperature %.2f) ===\n", task.TaskID, task.Model, task.Temperature)
	fmt.Fprintf(b, "Trials processed: %d of %d\n", s.Total, task.Planned)
	fmt.Fprintf(b, "Calls per trial: %s\n", strings.Join(task.CallIDs(), ", "))

	b.WriteString("\n--- Latency ---\n")
	for _, lat := range s.Latency {
		writeLatency(b, lat)
	}

	b.WriteString("\n--- Call outcomes ---\n")
	for _, outcome := range s.Outcomes {
		fmt.Fprintf(b, "  %s: %d (%s)\n", outcome.Key, outcome.Count, formatPercent(outcome.Percent))
	}

	if acc := s.Accuracy; acc != nil {
		writeAccuracy(b, *acc)
	}
	for _, ordinal := range s.Ordinal {
		writeOrdinal(b, ordinal)
	}
	for _, numeric := range s.Numeric {
		writeNumeric(b, numeric)
	}

	b.WriteString("\n--- Error analysis ---\n")
	for _, fe := range s.Errors {
		fmt.Fprintf(b, "  %s: %d failed (%s)\n", fe.Field, fe.Failed, formatPercent(fe.Rate))
		for _, entry := range fe.Breakdown {
			fmt.Fprintf(b, "    %s: %d\n", entry.Key, entry.Count)
		}
	}
}

func writeLatency(b *strings.Builder, lat aggregate.Latency) {
	if lat.Count == 0 {
		fmt.Fprintf(b, "  %s: no samples\n", lat.Name)
		return
	}
	fmt.Fprintf(b, "  %s: n=%d mean %s min %s max %s median %s p90 %s p95 %s p99 %s (sum %s)\n",
		lat.Name, lat.Count,
		formatSeconds(lat.Mean), formatSeconds(lat.Min), formatSeconds(lat.Max), formatSeconds(lat.Median),
		formatSeconds(lat.P90), formatSeconds(lat.P95), formatSeconds(lat.P99), formatSeconds(lat.Total),
	)
}

func writeAccuracy(b *strings.Builder, acc aggregate.Accuracy) {
	fmt.Fprintf(b, "\n--- %s accuracy ---\n", acc.Field)
	if acc.Valid == 0 {
		fmt.Fprintf(b, "No valid %s predictions found for accuracy calculation\n", acc.Field)
		return
	}
	fmt.Fprintf(b, "Valid predictions: %d/%d (%s)\n", acc.Valid, acc.Total, formatPercent(acc.ValidRate))
	fmt.Fprintf(b, "Accuracy: %s (%d/%d correct)\n", formatPercent(acc.Percent), acc.Correct, acc.Valid)
	b.WriteString("Per label:\n")
	for _, label := range acc.PerLabel {
		fmt.Fprintf(b, "  %s: %s (%d/%d)\n", label.Label, formatPercent(label.Percent), label.Correct, label.Count)
	}
	if len(acc.Confusion) == 0 {
		b.WriteString("No misclassifications.\n")
		return
	}
	fmt.Fprintf(b, "Top %d true -> predicted pairs:\n", len(acc.Confusion))
	for _, pair := range acc.Confusion {
		fmt.Fprintf(b, "  %s -> %s: %d\n", pair.True, pair.Predicted, pair.Count)
	}
}

func writeOrdinal(b *strings.Builder, ord aggregate.OrdinalSummary) {
	fmt.Fprintf(b, "\n--- %s distribution ---\n", ord.Field)
	if ord.Valid == 0 {
		fmt.Fprintf(b, "No valid %s values\n", ord.Field)
		return
	}
	fmt.Fprintf(b, "Valid values: %d\n", ord.Valid)
	for _, level := range ord.Distribution {
		fmt.Fprintf(b, "  %s: %d (%s)\n", level.Key, level.Count, formatPercent(level.Percent))
	}
	for _, group := range ord.ByLabel {
		parts := make([]string, 0, len(group.Counts))
		for _, level := range group.Counts {
			parts = append(parts, fmt.Sprintf("%s %d", level.Key, level.Count))
		}
		fmt.Fprintf(b, "  by %s: %s (most common %s)\n", group.Label, strings.Join(parts, ", "), group.MostCommon)
	}
}

func writeNumeric(b *strings.Builder, num aggregate.NumericSummary) {
	fmt.Fprintf(b, "\n--- %s statistics ---\n", num.Field)
	if num.Count == 0 {
		fmt.Fprintf(b, "No valid %s values (%d failed)\n", num.Field, num.Failed)
		return
	}
	p := num.Precision
	fmt.Fprintf(b, "n=%d failed=%d mean %s min %s max %s median %s std %s\n",
		num.Count, num.Failed,
		formatNumber(num.Mean, p), formatNumber(num.Min, p), formatNumber(num.Max, p),
		formatNumber(num.Median, p), formatStd(num.Std, p),
	)
	for _, label := range num.ByLabel {
		fmt.Fprintf(b, "  %s: mean %s (n=%d)\n", label.Label, formatNumber(label.Mean, p), label.Count)
	}
}
