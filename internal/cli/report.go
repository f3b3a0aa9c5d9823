package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"emoeval/internal/report"
	"emoeval/internal/runner"
)

var resolveRun = report.ResolveRun

func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		inputDir := fs.String("input", "", "Directory containing runs (default: output_dir from config)")
		specPath := fs.String("spec", "", "Path to config file (default: search for .emoeval/config.yml)")
		runRef := fs.String("run", report.LatestRef, "Run id or latest")
		reparse := fs.Bool("reparse", false, "Parse stored raw responses again with the configured fields")
		if code, ok := parseFlags(cmd, fs, args, false, stdout, stderr); !ok {
			return code
		}

		outputDir, err := resolveInputDir(*inputDir, *specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve input: %v\n", err)
			return ExitError
		}
		results, runDir, err := resolveRun(outputDir, *runRef)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load run: %v\n", err)
			return ExitError
		}
		paths := runner.OutputPaths{Root: filepath.Dir(runDir), RunID: filepath.Base(runDir)}
		if *reparse {
			p, err := loadProject(*specPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
				return ExitError
			}
			results, err = report.Reparse(results, p.Config)
			if err != nil {
				fmt.Fprintf(stderr, "Reparse failed: %v\n", err)
				return ExitError
			}
			if err := runner.WriteRunOutputs(results, paths); err != nil {
				fmt.Fprintf(stderr, "Failed to write reparsed outputs: %v\n", err)
				return ExitError
			}
		}

		if err := report.WriteRunReports(context.Background(), results, paths); err != nil {
			fmt.Fprintf(stderr, "Failed to write reports: %v\n", err)
			return ExitError
		}
		if err := report.WriteSummary(stdout, results); err != nil {
			fmt.Fprintf(stderr, "Failed to print summary: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "\nReport written to %s\n", paths.ReportPath())
		return ExitOK
	}
}
