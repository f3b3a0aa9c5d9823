package parse

import "sort"

// EmotionVocabulary is the closed set of emotion labels used by the bundled dataset.
var EmotionVocabulary = []string{"憤怒", "期待", "厭惡", "恐懼", "喜悅", "悲傷", "驚奇", "信任"}

// IntensityLevels are the canonical intensity levels with their accepted spellings.
var IntensityLevels = []Level{
	{Name: "Low", Aliases: []string{"low", "低", "低強度"}},
	{Name: "Medium", Aliases: []string{"medium", "中", "中強度"}},
	{Name: "High", Aliases: []string{"high", "高", "高強度"}},
}

var presets = map[string]FieldSpec{
	"emotion": {
		Name:       "emotion",
		Kind:       KindCategorical,
		Labels:     []string{"情緒", "Emotion"},
		Vocabulary: EmotionVocabulary,
	},
	"intensity": {
		Name:   "intensity",
		Kind:   KindOrdinal,
		Labels: []string{"強度", "Intensity"},
		Levels: IntensityLevels,
	},
	"score": {
		Name:      "score",
		Kind:      KindFloat,
		Labels:    []string{"程度", "Score"},
		Precision: 3,
		BinWidth:  0.1,
	},
	"modifier":    {Name: "modifier", Kind: KindInt, Labels: []string{"Modifier"}, BinWidth: 1},
	"idiom":       {Name: "idiom", Kind: KindInt, Labels: []string{"Idiom"}, BinWidth: 1},
	"degree_head": {Name: "degree_head", Kind: KindInt, Labels: []string{"DegreeHead"}, BinWidth: 1},
	"word_count":  {Name: "word_count", Kind: KindInt, Labels: []string{"WordCount"}, BinWidth: 5},
	"tension": {
		Name:      "tension",
		Kind:      KindFloat,
		Labels:    []string{"Tension"},
		Precision: 4,
		BinWidth:  0.05,
	},
}

var presetGroups = map[string][]string{
	"tension_metrics": {"modifier", "idiom", "degree_head", "word_count", "tension"},
}

// Preset returns a copy of a built-in field definition.
func Preset(name string) (FieldSpec, bool) {
	spec, ok := presets[name]
	if !ok {
		return FieldSpec{}, false
	}
	return cloneSpec(spec), true
}

// PresetGroup returns the member field names of a built-in group.
func PresetGroup(name string) ([]string, bool) {
	members, ok := presetGroups[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), members...), true
}

// PresetNames lists built-in fields and groups.
func PresetNames() []string {
	names := make([]string, 0, len(presets)+len(presetGroups))
	for name := range presets {
		names = append(names, name)
	}
	for name := range presetGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneSpec(spec FieldSpec) FieldSpec {
	spec.Labels = append([]string(nil), spec.Labels...)
	spec.Vocabulary = append([]string(nil), spec.Vocabulary...)
	levels := make([]Level, 0, len(spec.Levels))
	for _, level := range spec.Levels {
		levels = append(levels, Level{Name: level.Name, Aliases: append([]string(nil), level.Aliases...)})
	}
	spec.Levels = levels
	return spec
}
