package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"emoeval/internal/report"
	"emoeval/internal/runner"
	"emoeval/internal/warehouse"
)

const allRunsRef = "all"

func runIngest(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		inputDir := fs.String("input", "", "Directory containing runs (default: output_dir from config)")
		specPath := fs.String("spec", "", "Path to config file (default: search for .emoeval/config.yml)")
		dbPath := fs.String("db", "", "DuckDB file (default: warehouse.path from config)")
		runRef := fs.String("run", report.LatestRef, "Run id, latest, or all")
		if code, ok := parseFlags(cmd, fs, args, false, stdout, stderr); !ok {
			return code
		}

		db, err := resolveWarehousePath(*dbPath, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve warehouse: %v\n", err)
			return ExitError
		}
		outputDir, err := resolveInputDir(*inputDir, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
			return ExitError
		}
		runs, err := loadRuns(outputDir, strings.TrimSpace(*runRef))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load runs: %v\n", err)
			return ExitError
		}
		if err := ingestRuns(context.Background(), db, runs, stdout); err != nil {
			fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

// loadRuns resolves one run reference, or every stored run for "all".
func loadRuns(outputDir, ref string) ([]runner.Results, error) {
	if ref != allRunsRef {
		results, _, err := resolveRun(outputDir, ref)
		if err != nil {
			return nil, err
		}
		return []runner.Results{results}, nil
	}
	runIDs, err := report.ListRuns(outputDir)
	if err != nil {
		return nil, err
	}
	if len(runIDs) == 0 {
		return nil, fmt.Errorf("no runs found in %s", outputDir)
	}
	runs := make([]runner.Results, 0, len(runIDs))
	for _, runID := range runIDs {
		results, err := report.LoadResults(filepath.Join(outputDir, runID))
		if err != nil {
			return nil, err
		}
		runs = append(runs, results)
	}
	return runs, nil
}

func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .emoeval/config.yml)")
		dbPath := fs.String("db", "", "DuckDB file (default: warehouse.path from config)")
		taskID := fs.String("task", "", "Only show this task")
		if code, ok := parseFlags(cmd, fs, args, false, stdout, stderr); !ok {
			return code
		}

		path, err := resolveWarehousePath(*dbPath, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve warehouse: %v\n", err)
			return ExitError
		}
		ctx := context.Background()
		db, err := warehouse.Open(ctx, path)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open warehouse: %v\n", err)
			return ExitError
		}
		defer db.Close()
		rows, err := warehouse.History(ctx, db, strings.TrimSpace(*taskID))
		if err != nil {
			fmt.Fprintf(stderr, "History query failed: %v\n", err)
			return ExitError
		}
		if len(rows) == 0 {
			fmt.Fprintln(stdout, "No runs ingested yet")
			return ExitOK
		}
		fmt.Fprintf(stdout, "%-28s %-20s %-18s %6s %6s %10s %10s\n", "run", "task", "model", "trials", "valid", "accuracy", "mean time")
		for _, row := range rows {
			fmt.Fprintf(stdout, "%-28s %-20s %-18s %6d %6d %9.2f%% %9.3fs\n",
				row.RunID, row.TaskID, row.Model, row.Trials, row.Valid, row.Accuracy(), row.MeanSeconds)
		}
		return ExitOK
	}
}
