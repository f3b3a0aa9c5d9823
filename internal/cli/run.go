package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"emoeval/internal/config"
	"emoeval/internal/report"
	"emoeval/internal/runner"
	"emoeval/internal/ui/live"
	"emoeval/internal/warehouse"
)

var (
	runAndWrite        = runner.RunAndWrite
	resolveCredentials = config.ResolveCredentials
	startLiveUI        = func(stdout io.Writer, opts live.Options, interrupt func()) runObserver {
		return live.Start(stdout, opts, interrupt)
	}
)

// runObserver is a run observer whose output must be drained before the
// command prints its summary.
type runObserver interface {
	runner.RunObserver
	Close()
	Wait()
}

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .emoeval/config.yml)")
		modelOverride := fs.String("model", "", "Model name override for every task")
		limit := fs.Int("limit", 0, "Run only the first N trials")
		outputDir := fs.String("output-dir", "", "Override output directory")
		uiMode := fs.String("ui", "auto", "Console UI mode: auto|live|plain")
		verbose := fs.Bool("verbose", false, "Print one line per trial")
		noColor := fs.Bool("no-color", false, "Disable ANSI colors")
		if code, ok := parseFlags(cmd, fs, interspersed(fs, args), true, stdout, stderr); !ok {
			return code
		}
		if *limit < 0 {
			fmt.Fprintln(stderr, "--limit must not be negative")
			return ExitUsage
		}

		p, err := loadProject(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		creds, err := resolveCredentials(p.Config, p.Root, os.LookupEnv)
		if err != nil {
			fmt.Fprintf(stderr, "Missing credentials: %v\n", err)
			return ExitError
		}
		decision, err := resolveUIMode(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		params := runner.RunParams{
			Root:          p.Root,
			OutputDir:     strings.TrimSpace(*outputDir),
			TaskIDs:       fs.Args(),
			ModelOverride: strings.TrimSpace(*modelOverride),
			Limit:         *limit,
			Credentials:   creds,
			Verbose:       *verbose,
			VerboseWriter: stdout,
			NoColor:       *noColor,
		}
		var ui runObserver
		if decision.useLive {
			ui = startLiveUI(stdout, live.Options{NoColor: *noColor}, stop)
			params.Observer = ui
		}

		results, paths, err := runAndWrite(ctx, p.Config, params)
		if ui != nil {
			ui.Close()
			ui.Wait()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}

		// The run context may already be cancelled; reports cover what finished.
		if err := report.WriteRunReports(context.Background(), results, paths); err != nil {
			fmt.Fprintf(stderr, "Failed to write reports: %v\n", err)
			return ExitError
		}
		if err := report.WriteSummary(stdout, results); err != nil {
			fmt.Fprintf(stderr, "Failed to print summary: %v\n", err)
			return ExitError
		}
		if path := strings.TrimSpace(p.Config.Warehouse.Path); path != "" {
			dbPath := config.ResolvePath(p.Root, path)
			if err := ingestRuns(context.Background(), dbPath, []runner.Results{results}, stdout); err != nil {
				fmt.Fprintf(stderr, "Warehouse ingest failed: %v\n", err)
				return ExitError
			}
		}

		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "Results: %s\n", paths.ResultsPath())
		for _, task := range results.Tasks {
			fmt.Fprintf(stdout, "CSV: %s\n", paths.CSVPath(task.TaskID))
		}
		fmt.Fprintf(stdout, "Summary: %s\n", paths.SummaryPath())
		fmt.Fprintf(stdout, "Report: %s\n", paths.ReportPath())
		if results.Cancelled {
			fmt.Fprintf(stderr, "Run %s cancelled; partial results written\n", results.RunID)
			return ExitError
		}
		fmt.Fprintf(stdout, "Run %s completed\n", results.RunID)
		return ExitOK
	}
}

// ingestRuns writes runs into the warehouse at dbPath.
func ingestRuns(ctx context.Context, dbPath string, runs []runner.Results, stdout io.Writer) error {
	db, err := warehouse.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, results := range runs {
		stats, err := warehouse.Ingest(ctx, db, results, time.Now())
		if err != nil {
			return fmt.Errorf("run %s: %w", results.RunID, err)
		}
		fmt.Fprintf(stdout, "Ingested run %s into %s (%d trials, %d calls, %d field values)\n",
			results.RunID, dbPath, stats.Trials, stats.Calls, stats.Fields)
	}
	return nil
}
