package cli

import (
	"fmt"
	"io"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := newFlagSet(cmd, stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .emoeval/config.yml)")
		if code, ok := parseFlags(cmd, fs, args, false, stdout, stderr); !ok {
			return code
		}

		p, err := loadProject(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Config OK (%d tasks, %d custom fields)\n", len(p.Config.Tasks), len(p.Config.Fields))
		return ExitOK
	}
}
