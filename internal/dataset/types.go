package dataset

// Dataset is the labeled corpus: characters, each with sentences grouped by
// their ground-truth emotion.
type Dataset struct {
	Characters []Character
}

// Character is one speaker and the sentences written for them.
type Character struct {
	Information string         `json:"character_information" yaml:"character_information"`
	Groups      []EmotionGroup `json:"sentences" yaml:"sentences"`
}

// EmotionGroup holds the sentences sharing one ground-truth label.
type EmotionGroup struct {
	Label     string   `json:"emotion_label" yaml:"emotion_label"`
	Sentences []string `json:"emotion_sentences" yaml:"emotion_sentences"`
}

// Trial is one evaluation unit.
type Trial struct {
	Index     int    `json:"index"`
	Character string `json:"character"`
	TrueLabel string `json:"true_label"`
	Sentence  string `json:"sentence"`
}

// Trials expands the dataset in order: characters, then groups, then sentences.
func (d Dataset) Trials() []Trial {
	var trials []Trial
	for _, character := range d.Characters {
		for _, group := range character.Groups {
			for _, sentence := range group.Sentences {
				trials = append(trials, Trial{
					Index:     len(trials),
					Character: character.Information,
					TrueLabel: group.Label,
					Sentence:  sentence,
				})
			}
		}
	}
	return trials
}

// Labels lists distinct ground-truth labels in first-seen order.
func (d Dataset) Labels() []string {
	seen := map[string]struct{}{}
	var labels []string
	for _, character := range d.Characters {
		for _, group := range character.Groups {
			if _, ok := seen[group.Label]; ok {
				continue
			}
			seen[group.Label] = struct{}{}
			labels = append(labels, group.Label)
		}
	}
	return labels
}

// Limit truncates trials to at most n; n <= 0 keeps all.
func Limit(trials []Trial, n int) []Trial {
	if n <= 0 || n >= len(trials) {
		return trials
	}
	return trials[:n]
}
