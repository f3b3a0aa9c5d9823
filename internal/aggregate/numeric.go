package aggregate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"emoeval/internal/parse"
	"emoeval/internal/record"
)

// maxBins caps histogram size for narrow bin widths over wide ranges.
const maxBins = 200

type labeledNumber struct {
	label string
	value float64
	// paired is set when the accuracy field is usable for the same record.
	paired bool
}

func summarizeNumeric(records []record.Result, field parse.FieldSpec, accuracyField string) NumericSummary {
	var numbers []labeledNumber
	failed := 0
	for _, r := range records {
		value, ok := r.Field(field.Name)
		if !ok {
			failed++
			continue
		}
		n, ok := value.Float()
		if !ok {
			failed++
			continue
		}
		paired := true
		if accuracyField != "" {
			other, found := r.Field(accuracyField)
			paired = found && other.OK()
		}
		numbers = append(numbers, labeledNumber{label: r.TrueLabel, value: n, paired: paired})
	}

	values := lo.Map(numbers, func(n labeledNumber, _ int) float64 { return n.value })
	summary := Describe(values)
	summary.Field = field.Name
	summary.Precision = field.Precision
	summary.Failed = failed
	summary.Histogram = Histogram(values, field.BinWidth)

	paired := lo.Filter(numbers, func(n labeledNumber, _ int) bool { return n.paired })
	for label, group := range lo.GroupBy(paired, func(n labeledNumber) string { return n.label }) {
		mean, _ := stats.Mean(lo.Map(group, func(n labeledNumber, _ int) float64 { return n.value }))
		summary.ByLabel = append(summary.ByLabel, LabelMean{Label: label, Count: len(group), Mean: mean})
	}
	sort.Slice(summary.ByLabel, func(i, j int) bool {
		a, b := summary.ByLabel[i], summary.ByLabel[j]
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		return a.Label < b.Label
	})
	return summary
}

// Describe computes descriptive statistics over usable values only.
func Describe(values []float64) NumericSummary {
	summary := NumericSummary{Count: len(values)}
	if len(values) == 0 {
		return summary
	}
	data := stats.Float64Data(values)
	summary.Mean, _ = stats.Mean(data)
	summary.Min, _ = stats.Min(data)
	summary.Max, _ = stats.Max(data)
	summary.Median = Quantile(values, 0.5)
	if len(values) > 1 {
		if std, err := stats.StandardDeviationSample(data); err == nil && !math.IsNaN(std) {
			summary.Std = &std
		}
	}
	return summary
}

// Histogram buckets values into bins of width starting at the multiple of
// width at or below the minimum.
func Histogram(values []float64, width float64) []Bin {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	minValue := lo.Min(values)
	maxValue := lo.Max(values)
	start := math.Floor(minValue/width) * width
	span := math.Floor((maxValue-start)/width+1e-9) + 1
	if math.IsNaN(span) || span > maxBins {
		return nil
	}
	count := int(span)
	bins := make([]Bin, count)
	for i := range bins {
		bins[i].Lower = roundTo(start+float64(i)*width, width)
		bins[i].Upper = roundTo(start+float64(i+1)*width, width)
	}
	for _, v := range values {
		idx := int(math.Floor((v-start)/width + 1e-9))
		if idx >= count {
			idx = count - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// roundTo trims float noise from bin edges to the precision of width.
func roundTo(v, width float64) float64 {
	scale := math.Pow(10, math.Max(0, math.Ceil(-math.Log10(width)))+2)
	return math.Round(v*scale) / scale
}
