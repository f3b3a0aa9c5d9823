package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"emoeval/internal/record"
)

// WriteRunOutputs writes results.json and one CSV per task into the run
// directory.
func WriteRunOutputs(results Results, paths OutputPaths) error {
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(paths.ResultsPath(), results); err != nil {
		return err
	}
	for _, task := range results.Tasks {
		if err := writeCSV(paths.CSVPath(task.TaskID), task); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(paths.LogsDir(), 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// LoadResults reads a results.json file.
func LoadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Results{}, fmt.Errorf("read results: %w", err)
	}
	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return Results{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return results, nil
}

// writeJSON writes a Results payload as pretty JSON.
func writeJSON(path string, results Results) error {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeCSV(path string, task TaskResult) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := record.WriteCSV(file, task.Layout(), task.Records); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
