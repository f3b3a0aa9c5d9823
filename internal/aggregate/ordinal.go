package aggregate

import (
	"sort"

	"github.com/samber/lo"

	"emoeval/internal/parse"
	"emoeval/internal/record"
)

func summarizeOrdinal(records []record.Result, field parse.FieldSpec, accuracyField string) OrdinalSummary {
	type observation struct {
		label  string
		level  string
		paired bool
	}
	observations := lo.FilterMap(records, func(r record.Result, _ int) (observation, bool) {
		value, ok := r.Field(field.Name)
		if !ok {
			return observation{}, false
		}
		level, ok := value.Label()
		if !ok {
			return observation{}, false
		}
		paired := true
		if accuracyField != "" {
			other, found := r.Field(accuracyField)
			paired = found && other.OK()
		}
		return observation{label: r.TrueLabel, level: level, paired: paired}, true
	})

	levels := lo.Map(field.Levels, func(level parse.Level, _ int) string { return level.Name })
	summary := OrdinalSummary{
		Field:        field.Name,
		Valid:        len(observations),
		Distribution: levelCounts(lo.Map(observations, func(o observation, _ int) string { return o.level }), levels),
	}

	paired := lo.Filter(observations, func(o observation, _ int) bool { return o.paired })
	for label, group := range lo.GroupBy(paired, func(o observation) string { return o.label }) {
		counts := levelCounts(lo.Map(group, func(o observation, _ int) string { return o.level }), levels)
		summary.ByLabel = append(summary.ByLabel, LabelDistribution{
			Label:      label,
			Counts:     counts,
			MostCommon: mostCommon(counts),
		})
	}
	sort.Slice(summary.ByLabel, func(i, j int) bool { return summary.ByLabel[i].Label < summary.ByLabel[j].Label })
	return summary
}

// levelCounts counts observed levels in canonical level order.
func levelCounts(observed []string, levels []string) []Count {
	counts := lo.CountValues(observed)
	out := make([]Count, 0, len(levels))
	for _, level := range levels {
		out = append(out, Count{Key: level, Count: counts[level], Percent: percent(counts[level], len(observed))})
	}
	return out
}

// mostCommon returns the first level with the highest count.
func mostCommon(counts []Count) string {
	best := Count{}
	for _, c := range counts {
		if c.Count > best.Count {
			best = c
		}
	}
	return best.Key
}
