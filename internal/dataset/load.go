package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"emoeval/internal/spec"
)

// Load reads and validates a dataset file. JSON and YAML are accepted; any
// structural problem fails the whole load.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	var characters []Character
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := spec.DecodeStrictYAML(data, &characters); err != nil {
			return Dataset{}, fmt.Errorf("parse dataset yaml: %w", err)
		}
	default:
		if err := decodeStrictJSON(data, &characters); err != nil {
			return Dataset{}, fmt.Errorf("parse dataset json: %w", err)
		}
	}
	ds := Dataset{Characters: characters}
	if err := Validate(ds); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func decodeStrictJSON(data []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return fmt.Errorf("multiple documents are not supported")
		}
		return err
	}
	return nil
}

// Validate checks the dataset shape.
func Validate(ds Dataset) error {
	var problems []string
	if len(ds.Characters) == 0 {
		problems = append(problems, "dataset has no characters")
	}
	total := 0
	for i, character := range ds.Characters {
		if strings.TrimSpace(character.Information) == "" {
			problems = append(problems, fmt.Sprintf("characters[%d].character_information is required", i))
		}
		if len(character.Groups) == 0 {
			problems = append(problems, fmt.Sprintf("characters[%d].sentences is empty", i))
		}
		for j, group := range character.Groups {
			if strings.TrimSpace(group.Label) == "" {
				problems = append(problems, fmt.Sprintf("characters[%d].sentences[%d].emotion_label is required", i, j))
			}
			for k, sentence := range group.Sentences {
				if strings.TrimSpace(sentence) == "" {
					problems = append(problems, fmt.Sprintf("characters[%d].sentences[%d].emotion_sentences[%d] is empty", i, j, k))
				}
			}
			total += len(group.Sentences)
		}
	}
	if len(ds.Characters) > 0 && total == 0 {
		problems = append(problems, "dataset has no sentences")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid dataset:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
