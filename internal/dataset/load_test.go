package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `[
  {"character_information": "小明", "sentences": [
    {"emotion_label": "喜悅", "emotion_sentences": ["好開心", "太棒了"]},
    {"emotion_label": "悲傷", "emotion_sentences": ["好難過"]}
  ]},
  {"character_information": "小華", "sentences": [
    {"emotion_label": "喜悅", "emotion_sentences": ["笑了"]}
  ]}
]`

func writeDataset(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

// TestLoadExpandsTrialsInOrder verifies trial order and labels.
func TestLoadExpandsTrialsInOrder(t *testing.T) {
	ds, err := Load(writeDataset(t, "sentences.json", sampleJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	trials := ds.Trials()
	want := []Trial{
		{Index: 0, Character: "小明", TrueLabel: "喜悅", Sentence: "好開心"},
		{Index: 1, Character: "小明", TrueLabel: "喜悅", Sentence: "太棒了"},
		{Index: 2, Character: "小明", TrueLabel: "悲傷", Sentence: "好難過"},
		{Index: 3, Character: "小華", TrueLabel: "喜悅", Sentence: "笑了"},
	}
	if len(trials) != len(want) {
		t.Fatalf("expected %d trials, got %d", len(want), len(trials))
	}
	for i := range want {
		if trials[i] != want[i] {
			t.Fatalf("trial %d: expected %+v, got %+v", i, want[i], trials[i])
		}
	}
	if labels := ds.Labels(); strings.Join(labels, ",") != "喜悅,悲傷" {
		t.Fatalf("unexpected labels %v", labels)
	}
	if got := Limit(trials, 2); len(got) != 2 {
		t.Fatalf("expected limit to keep 2, got %d", len(got))
	}
	if got := Limit(trials, 0); len(got) != 4 {
		t.Fatalf("expected no limit, got %d", len(got))
	}
}

// TestLoadYAML verifies the YAML variant.
func TestLoadYAML(t *testing.T) {
	body := "- character_information: 小明\n  sentences:\n    - emotion_label: 信任\n      emotion_sentences: [\"我相信你\"]\n"
	ds, err := Load(writeDataset(t, "sentences.yml", body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Trials()) != 1 || ds.Trials()[0].TrueLabel != "信任" {
		t.Fatalf("unexpected trials: %+v", ds.Trials())
	}
}

// TestLoadRejectsMalformed verifies no partial dataset is accepted.
func TestLoadRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"truncated":     `[{"character_information": "a"`,
		"unknown key":   `[{"character_information": "a", "mood": 1, "sentences": []}]`,
		"empty":         `[]`,
		"no label":      `[{"character_information": "a", "sentences": [{"emotion_label": "", "emotion_sentences": ["x"]}]}]`,
		"blank text":    `[{"character_information": "a", "sentences": [{"emotion_label": "喜悅", "emotion_sentences": [" "]}]}]`,
		"no sentences":  `[{"character_information": "a", "sentences": [{"emotion_label": "喜悅", "emotion_sentences": []}]}]`,
		"wrong type":    `{"character_information": "a"}`,
		"two documents": `[] []`,
	}
	for name, body := range cases {
		if _, err := Load(writeDataset(t, "sentences.json", body)); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
