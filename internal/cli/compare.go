package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"emoeval/internal/compare"
)

func runCompare(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		field := fs.String("field", "emotion", "Column compared against true_label")
		outPath := fs.String("out", "", "Write the joined CSV to this path")
		baseline := fs.String("baseline", "", "Table name whose score column the others are diffed against")
		scoreField := fs.String("score", "score", "Numeric column diffed against the baseline")
		binWidth := fs.Float64("bin-width", compare.DefaultDiffBinWidth, "Histogram bin width for score differences")
		if code, ok := parseFlags(cmd, fs, interspersed(fs, args), true, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() < 2 {
			fmt.Fprintln(stderr, "compare needs at least two CSV files")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		tables := make([]compare.Table, 0, fs.NArg())
		for _, path := range fs.Args() {
			table, err := compare.Load(path)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load CSV: %v\n", err)
				return ExitError
			}
			tables = append(tables, table)
		}

		fmt.Fprintf(stdout, "%-24s %6s %6s %8s %10s %10s\n", "file", "rows", "valid", "correct", "accuracy", "mean time")
		for _, table := range tables {
			s := compare.Summarize(table, *field)
			fmt.Fprintf(stdout, "%-24s %6d %6d %8d %9.2f%% %9.3fs\n",
				s.Name, s.Rows, s.Valid, s.Correct, s.Accuracy(), s.MeanSeconds)
		}

		joined := compare.Join(tables)
		if name := strings.TrimSpace(*baseline); name != "" {
			diffs, err := compare.AddBaselineDiffs(&joined, name, *scoreField, *binWidth)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to diff against baseline: %v\n", err)
				return ExitUsage
			}
			for _, diff := range diffs {
				writeDiff(stdout, diff)
			}
		}

		if path := strings.TrimSpace(*outPath); path != "" {
			file, err := os.Create(path)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to create %s: %v\n", path, err)
				return ExitError
			}
			if err := compare.WriteCSV(file, joined); err != nil {
				_ = file.Close()
				fmt.Fprintf(stderr, "Failed to write %s: %v\n", path, err)
				return ExitError
			}
			if err := file.Close(); err != nil {
				fmt.Fprintf(stderr, "Failed to write %s: %v\n", path, err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Joined %d rows into %s\n", len(joined.Rows), path)
		}
		return ExitOK
	}
}

func writeDiff(w io.Writer, diff compare.Diff) {
	s := diff.Summary
	fmt.Fprintf(w, "\n--- %s ---\n", diff.Column)
	if s.Count == 0 {
		fmt.Fprintf(w, "No paired scores (%d rows skipped)\n", s.Failed)
		return
	}
	std := "n/a"
	if s.Std != nil {
		std = fmt.Sprintf("%.4f", *s.Std)
	}
	fmt.Fprintf(w, "n=%d skipped=%d mean %.4f std %s min %.4f max %.4f\n", s.Count, s.Failed, s.Mean, std, s.Min, s.Max)
	for _, bin := range s.Histogram {
		fmt.Fprintf(w, "  [%+.2f, %+.2f) %d\n", bin.Lower, bin.Upper, bin.Count)
	}
}
