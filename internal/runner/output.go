package runner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPaths describes filesystem locations for run outputs.
type OutputPaths struct {
	Root  string
	RunID string
}

// NewOutputPaths validates and constructs output paths metadata.
func NewOutputPaths(root, runID string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	if strings.TrimSpace(runID) == "" {
		return OutputPaths{}, fmt.Errorf("run ID is empty")
	}
	return OutputPaths{Root: root, RunID: runID}, nil
}

// RunDir returns the directory for a specific run.
func (o OutputPaths) RunDir() string {
	return filepath.Join(o.Root, o.RunID)
}

// ResultsPath returns the path to results.json.
func (o OutputPaths) ResultsPath() string {
	return filepath.Join(o.RunDir(), "results.json")
}

// CSVPath returns the path of a task's CSV table.
func (o OutputPaths) CSVPath(taskID string) string {
	return filepath.Join(o.RunDir(), taskID+".csv")
}

// SummaryPath returns the path to the plain text summary.
func (o OutputPaths) SummaryPath() string {
	return filepath.Join(o.RunDir(), "summary.txt")
}

// ReportPath returns the path to the HTML report.
func (o OutputPaths) ReportPath() string {
	return filepath.Join(o.RunDir(), "report.html")
}

// LogsDir returns the path for log outputs.
func (o OutputPaths) LogsDir() string {
	return filepath.Join(o.RunDir(), "logs")
}

// LogPath returns the structured run log.
func (o OutputPaths) LogPath() string {
	return filepath.Join(o.LogsDir(), "run.log")
}
