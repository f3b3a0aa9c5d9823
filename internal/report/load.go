package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"emoeval/internal/runner"
)

// LatestRef selects the most recent run.
const LatestRef = "latest"

// LoadResults reads results.json from a run directory.
func LoadResults(runDir string) (runner.Results, error) {
	return runner.LoadResults(filepath.Join(runDir, "results.json"))
}

// ResolveRun loads a run by id. An empty ref or "latest" picks the newest
// run, relying on run ids sorting by start time.
func ResolveRun(outputDir, ref string) (runner.Results, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == LatestRef {
		runIDs, err := ListRuns(outputDir)
		if err != nil {
			return runner.Results{}, "", err
		}
		if len(runIDs) == 0 {
			return runner.Results{}, "", fmt.Errorf("no runs found in %s", outputDir)
		}
		ref = runIDs[len(runIDs)-1]
	}
	runDir := filepath.Join(outputDir, ref)
	if info, err := os.Stat(runDir); err != nil || !info.IsDir() {
		return runner.Results{}, "", fmt.Errorf("run %s not found", ref)
	}
	results, err := LoadResults(runDir)
	if err != nil {
		return runner.Results{}, "", err
	}
	return results, runDir, nil
}

// ListRuns returns the ids of runs with a results.json, oldest first.
func ListRuns(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	runIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, entry.Name(), "results.json")); err == nil {
			runIDs = append(runIDs, entry.Name())
		}
	}
	sort.Strings(runIDs)
	return runIDs, nil
}
