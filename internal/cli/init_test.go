package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emoeval/internal/config"
)

func withInitInput(t *testing.T, input string) {
	t.Helper()
	original := initInput
	initInput = strings.NewReader(input)
	t.Cleanup(func() { initInput = original })
}

// TestInitCommandCreatesFiles verifies the scaffold is written and validates.
func TestInitCommandCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)
	withInitInput(t, "")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--spec", specPath}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, err.String())
	}
	if err.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", err.String())
	}
	if !strings.Contains(out.String(), "Wrote") {
		t.Fatalf("expected output to include writes, got %q", out.String())
	}
	for _, rel := range append([]string{config.ConfigFileName}, config.ScaffoldFiles...) {
		if _, statErr := os.Stat(filepath.Join(dir, config.ConfigDirName, filepath.FromSlash(rel))); statErr != nil {
			t.Fatalf("expected %s to exist: %v", rel, statErr)
		}
	}

	out.Reset()
	err.Reset()
	if code := Run([]string{"validate", "--spec", specPath}, &out, &err); code != ExitOK {
		t.Fatalf("expected scaffold to validate, got %d (%s)", code, err.String())
	}
}

// TestInitCommandUpdatesGitignore verifies the results folder is ignored
// inside a git checkout.
func TestInitCommandUpdatesGitignore(t *testing.T) {
	dir := t.TempDir()
	if mkErr := os.Mkdir(filepath.Join(dir, ".git"), 0o755); mkErr != nil {
		t.Fatalf("mkdir .git: %v", mkErr)
	}
	specPath := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)
	withInitInput(t, "y\nruns\ny\n")

	var out, err bytes.Buffer
	if code := Run([]string{"init", "--spec", specPath}, &out, &err); code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, err.String())
	}
	data, readErr := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if readErr != nil {
		t.Fatalf("read .gitignore: %v", readErr)
	}
	if strings.TrimSpace(string(data)) != "runs" {
		t.Fatalf("unexpected .gitignore %q", data)
	}
}

// TestInitCommandRefusesOverwrite verifies an existing config is kept.
func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "emoeval.yml")
	if err := os.WriteFile(specPath, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	withInitInput(t, "")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--spec", specPath}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(err.String(), "already exists") {
		t.Fatalf("expected overwrite warning, got %q", err.String())
	}
}

// TestInitCommandDeclined verifies answering no writes nothing.
func TestInitCommandDeclined(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)
	withInitInput(t, "n\n")

	var out bytes.Buffer
	if code := Run([]string{"init", "--spec", specPath}, &out, io.Discard); code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if _, err := os.Stat(specPath); !os.IsNotExist(err) {
		t.Fatalf("expected no config written, got %v", err)
	}
}
