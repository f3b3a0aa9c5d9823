package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/lo"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one emoeval subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches args to a subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	switch {
	case len(args) == 0:
		printUsage(stdout)
		return ExitUsage
	case isHelpArg(args[0]):
		printUsage(stdout)
		return ExitOK
	}
	cmd, ok := lo.Find(commands, func(c *Command) bool { return c.Name == args[0] })
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}
	return cmd.Run(args[1:], stdout, stderr)
}

func isHelpArg(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// wantsHelp reports whether any argument asks for command help.
func wantsHelp(args []string) bool {
	return lo.ContainsBy(args, func(arg string) bool { return arg == "-h" || arg == "--help" })
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "emoeval evaluates LLM emotion classification on Chinese sentences.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  emoeval <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Name, cmd.Summary)
	}
	_ = tw.Flush()
	fmt.Fprintln(w, "\nRun \"emoeval <command> --help\" for command options.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .emoeval/config.yml, prompts and a sample dataset", []string{
		"emoeval init [--spec <path>]",
	}, runInit),
	command("validate", "Validate .emoeval/config.yml and the files it references", []string{
		"emoeval validate [--spec <path>]",
	}, runValidate),
	command("run", "Classify every dataset sentence with each configured task", []string{
		"emoeval run [task-id]... [--model <name>] [--limit <n>] [--ui auto|live|plain] [--verbose]",
	}, runRun),
	command("report", "Print the summary and rebuild report.html for a stored run", []string{
		"emoeval report [--run <run-id>|latest] [--reparse]",
	}, runReport),
	command("compare", "Join task CSVs by sentence and compare accuracy", []string{
		"emoeval compare [--field <name>] [--out <path>] <a.csv> <b.csv>...",
		"emoeval compare --baseline <name> [--score <column>] [--bin-width <w>] <a.csv> <b.csv>...",
	}, runCompare),
	command("ingest", "Load stored runs into the DuckDB warehouse", []string{
		"emoeval ingest [--db <path>] [--run <run-id>|latest|all]",
	}, runIngest),
	command("history", "Show accuracy and latency per run from the warehouse", []string{
		"emoeval history [--db <path>] [--task <task-id>]",
	}, runHistory),
}
