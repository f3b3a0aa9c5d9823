package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"emoeval/internal/config"
)

// initInput is where init reads answers. Tests replace it.
var initInput io.Reader = os.Stdin

var errInitDeclined = errors.New("init cancelled")

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := newFlagSet(cmd, stderr)
		specPath := fs.String("spec", "", "Config file to create (default: .emoeval/config.yml in the git root or CWD)")
		if code, ok := parseFlags(cmd, fs, args, false, stdout, stderr); !ok {
			return code
		}

		target, repoRoot, err := initTarget(strings.TrimSpace(*specPath))
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		in := initInput
		if in == nil {
			in = os.Stdin
		}
		if err := scaffoldProject(newPrompter(in, stdout), target, repoRoot, stdout); err != nil {
			if errors.Is(err, errInitDeclined) {
				fmt.Fprintln(stderr, "Init cancelled.")
			} else {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
			}
			return ExitError
		}
		return ExitOK
	}
}

// initTarget resolves where the config goes and the git root, if any.
func initTarget(specPath string) (string, string, error) {
	if specPath != "" {
		abs, err := filepath.Abs(specPath)
		if err != nil {
			return "", "", err
		}
		return abs, discoverGitRoot(config.RootFromConfigPath(abs)), nil
	}
	repoRoot := discoverGitRoot("")
	base := repoRoot
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		base = wd
	}
	return config.ConfigPath(base), repoRoot, nil
}

func scaffoldProject(p *prompter, target, repoRoot string, stdout io.Writer) error {
	configDir := filepath.Dir(target)
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return fmt.Errorf("config directory %q is not a directory", configDir)
	}
	switch info, err := os.Stat(target); {
	case err == nil && info.IsDir():
		return fmt.Errorf("spec path %q is a directory", target)
	case err == nil:
		return fmt.Errorf("spec file already exists at %q", target)
	case !os.IsNotExist(err):
		return fmt.Errorf("stat spec file: %w", err)
	}

	ok, err := p.confirm(fmt.Sprintf("Create an emoeval config in %s?", configDir), true)
	if err != nil {
		return err
	}
	if !ok {
		return errInitDeclined
	}
	outputDir, err := p.text("Results folder", config.DefaultOutputDir)
	if err != nil {
		return err
	}
	ignore := false
	if repoRoot != "" {
		if ignore, err = p.confirm("Add the results folder to .gitignore?", true); err != nil {
			return err
		}
	}

	if err := config.Scaffold(target, outputDir); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", target)
	for _, rel := range config.ScaffoldFiles {
		fmt.Fprintf(stdout, "Wrote %s\n", filepath.Join(configDir, filepath.FromSlash(rel)))
	}
	if ignore {
		updated, err := ignoreResultsDir(repoRoot, outputDir)
		if err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
		if updated {
			fmt.Fprintf(stdout, "Updated %s\n", filepath.Join(repoRoot, ".gitignore"))
		}
	}
	fmt.Fprintf(stdout, "Set %s in the environment or in .env before running.\n", config.DefaultTokenEnv)
	return nil
}

// discoverGitRoot walks up from startDir to the directory holding .git, or
// returns empty when there is none.
func discoverGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
