package aggregate

import (
	"sort"

	"github.com/samber/lo"

	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/record"
)

// DefaultTopK is the number of confusion pairs reported by default.
const DefaultTopK = 10

// TotalLatency names the per-trial latency series.
const TotalLatency = "total"

// Summarize reduces a result log. Records are only read.
func Summarize(records []record.Result, opts Options) Summary {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	summary := Summary{
		Total:    len(records),
		Latency:  latencies(records, opts.CallIDs),
		Outcomes: outcomes(records),
	}
	if opts.AccuracyField != "" {
		accuracy := summarizeAccuracy(records, opts.AccuracyField, opts.TopK)
		summary.Accuracy = &accuracy
	}
	for _, field := range opts.Fields {
		summary.Errors = append(summary.Errors, fieldErrors(records, field.Name))
		switch {
		case field.Kind.Numeric():
			summary.Numeric = append(summary.Numeric, summarizeNumeric(records, field, opts.AccuracyField))
		case field.Kind == parse.KindOrdinal:
			summary.Ordinal = append(summary.Ordinal, summarizeOrdinal(records, field, opts.AccuracyField))
		}
	}
	return summary
}

func summarizeAccuracy(records []record.Result, field string, topK int) Accuracy {
	type prediction struct {
		truth     string
		predicted string
	}
	valid := lo.FilterMap(records, func(r record.Result, _ int) (prediction, bool) {
		value, ok := r.Field(field)
		if !ok {
			return prediction{}, false
		}
		label, ok := value.Label()
		return prediction{truth: r.TrueLabel, predicted: label}, ok
	})
	correct := lo.CountBy(valid, func(p prediction) bool { return p.truth == p.predicted })

	acc := Accuracy{
		Field:     field,
		Total:     len(records),
		Valid:     len(valid),
		Correct:   correct,
		ValidRate: percent(len(valid), len(records)),
		Percent:   percent(correct, len(valid)),
	}

	for label, group := range lo.GroupBy(valid, func(p prediction) string { return p.truth }) {
		hits := lo.CountBy(group, func(p prediction) bool { return p.predicted == label })
		acc.PerLabel = append(acc.PerLabel, LabelAccuracy{
			Label:   label,
			Count:   len(group),
			Correct: hits,
			Percent: percent(hits, len(group)),
		})
	}
	sort.Slice(acc.PerLabel, func(i, j int) bool {
		a, b := acc.PerLabel[i], acc.PerLabel[j]
		if a.Percent != b.Percent {
			return a.Percent > b.Percent
		}
		return a.Label < b.Label
	})

	wrong := lo.Filter(valid, func(p prediction, _ int) bool { return p.truth != p.predicted })
	for pair, count := range lo.CountValues(wrong) {
		acc.Confusion = append(acc.Confusion, ConfusionPair{True: pair.truth, Predicted: pair.predicted, Count: count})
	}
	sort.Slice(acc.Confusion, func(i, j int) bool {
		a, b := acc.Confusion[i], acc.Confusion[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.True != b.True {
			return a.True < b.True
		}
		return a.Predicted < b.Predicted
	})
	if len(acc.Confusion) > topK {
		acc.Confusion = acc.Confusion[:topK]
	}
	return acc
}

func latencies(records []record.Result, callIDs []string) []Latency {
	var out []Latency
	for _, id := range callIDs {
		series := lo.FilterMap(records, func(r record.Result, _ int) (float64, bool) {
			call, ok := r.Call(id)
			return call.Response.ElapsedSeconds, ok
		})
		out = append(out, DescribeLatency(id, series))
	}
	totals := lo.Map(records, func(r record.Result, _ int) float64 { return r.TotalSeconds })
	return append(out, DescribeLatency(TotalLatency, totals))
}

// DescribeLatency summarizes elapsed seconds. Empty input yields a zero
// summary with Count 0.
func DescribeLatency(name string, values []float64) Latency {
	latency := Latency{Name: name, Count: len(values)}
	if len(values) == 0 {
		return latency
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	latency.Total = lo.Sum(sorted)
	latency.Mean = latency.Total / float64(len(sorted))
	latency.Min = sorted[0]
	latency.Max = sorted[len(sorted)-1]
	latency.Median = sortedQuantile(sorted, 0.5)
	latency.P90 = sortedQuantile(sorted, 0.90)
	latency.P95 = sortedQuantile(sorted, 0.95)
	latency.P99 = sortedQuantile(sorted, 0.99)
	return latency
}

var outcomeOrder = []inference.Outcome{
	inference.OutcomeSuccess,
	inference.OutcomeHTTPError,
	inference.OutcomeTimeout,
	inference.OutcomeTransport,
}

func outcomes(records []record.Result) []Count {
	calls := lo.FlatMap(records, func(r record.Result, _ int) []record.Call { return r.Calls })
	counts := lo.CountValuesBy(calls, func(c record.Call) inference.Outcome { return c.Response.Outcome })
	out := make([]Count, 0, len(outcomeOrder))
	for _, outcome := range outcomeOrder {
		out = append(out, Count{Key: string(outcome), Count: counts[outcome], Percent: percent(counts[outcome], len(calls))})
	}
	return out
}

func fieldErrors(records []record.Result, field string) FieldErrors {
	failures := lo.FilterMap(records, func(r record.Result, _ int) (string, bool) {
		value, ok := r.Field(field)
		if !ok {
			return parse.SentinelParseError, true
		}
		return value.FailureKey(), !value.OK()
	})
	return FieldErrors{
		Field:     field,
		Total:     len(records),
		Failed:    len(failures),
		Rate:      percent(len(failures), len(records)),
		Breakdown: sortedCounts(lo.CountValues(failures), len(failures)),
	}
}

// sortedCounts orders buckets by count descending, then key.
func sortedCounts(counts map[string]int, whole int) []Count {
	out := make([]Count, 0, len(counts))
	for key, count := range counts {
		out = append(out, Count{Key: key, Count: count, Percent: percent(count, whole)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
