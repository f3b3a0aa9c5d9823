package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emoeval/internal/config"
	"emoeval/internal/runner"
	"emoeval/internal/spec"
)

// TestRunCommandWritesOutputs verifies a full run against a fake proxy writes
// every artifact and ingests into the configured warehouse.
func TestRunCommandWritesOutputs(t *testing.T) {
	server := fakeProxy(t)
	root, specPath := writeProject(t, server.URL)
	t.Setenv(config.DefaultTokenEnv, "test-token")

	var out, stderr bytes.Buffer
	code := Run([]string{"run", "--spec", specPath, "--ui", "plain"}, &out, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, stderr.String())
	}
	text := out.String()
	for _, want := range []string{
		"Accuracy: 100.00% (2/2 correct)",
		"Ingested run",
		"Results: ",
		"completed",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	runs, err := os.ReadDir(filepath.Join(root, "out"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var runDir string
	for _, entry := range runs {
		if entry.IsDir() {
			runDir = filepath.Join(root, "out", entry.Name())
		}
	}
	if runDir == "" {
		t.Fatalf("expected a run directory in %v", runs)
	}
	for _, name := range []string{"results.json", "combined.csv", "summary.txt", "report.html", filepath.Join("logs", "run.log")} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	var history bytes.Buffer
	stderr.Reset()
	if code := Run([]string{"history", "--spec", specPath, "--task", "combined"}, &history, &stderr); code != ExitOK {
		t.Fatalf("history failed with %d: %s", code, stderr.String())
	}
	if !strings.Contains(history.String(), filepath.Base(runDir)) || !strings.Contains(history.String(), "100.00%") {
		t.Fatalf("unexpected history output:\n%s", history.String())
	}
}

// TestRunCommandMissingCredentials verifies the run aborts before any call.
func TestRunCommandMissingCredentials(t *testing.T) {
	_, specPath := writeProject(t, "http://127.0.0.1:1/invoke")
	t.Setenv(config.DefaultTokenEnv, "")

	called := false
	original := runAndWrite
	runAndWrite = func(ctx context.Context, cfg spec.Config, params runner.RunParams) (runner.Results, runner.OutputPaths, error) {
		called = true
		return runner.Results{}, runner.OutputPaths{}, nil
	}
	t.Cleanup(func() { runAndWrite = original })

	var out, stderr bytes.Buffer
	code := Run([]string{"run", "--spec", specPath}, &out, &stderr)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if called {
		t.Fatalf("expected no run without credentials")
	}
	if !strings.Contains(stderr.String(), config.DefaultTokenEnv) {
		t.Fatalf("expected error to name the token variable, got %q", stderr.String())
	}
}

// TestRunCommandPassesSelection verifies task ids and flags reach the runner.
func TestRunCommandPassesSelection(t *testing.T) {
	_, specPath := writeProject(t, "http://127.0.0.1:1/invoke")
	t.Setenv(config.DefaultTokenEnv, "token")

	var got runner.RunParams
	original := runAndWrite
	runAndWrite = func(ctx context.Context, cfg spec.Config, params runner.RunParams) (runner.Results, runner.OutputPaths, error) {
		got = params
		return runner.Results{}, runner.OutputPaths{}, errors.New("stop")
	}
	t.Cleanup(func() { runAndWrite = original })

	var out, stderr bytes.Buffer
	code := Run([]string{"run", "combined", "--spec", specPath, "--model", "gpt-4o", "--limit", "5", "--ui", "plain"}, &out, &stderr)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if len(got.TaskIDs) != 1 || got.TaskIDs[0] != "combined" {
		t.Fatalf("unexpected task ids %v", got.TaskIDs)
	}
	if got.ModelOverride != "gpt-4o" || got.Limit != 5 || got.Credentials.Token != "token" {
		t.Fatalf("unexpected params %+v", got)
	}
	if !strings.Contains(stderr.String(), "Run failed: stop") {
		t.Fatalf("expected run failure message, got %q", stderr.String())
	}
}

// TestRunCommandRejectsBadUIMode verifies usage errors for unknown modes.
func TestRunCommandRejectsBadUIMode(t *testing.T) {
	_, specPath := writeProject(t, "http://127.0.0.1:1/invoke")
	t.Setenv(config.DefaultTokenEnv, "token")
	var out, stderr bytes.Buffer
	if code := Run([]string{"run", "--spec", specPath, "--ui", "fancy"}, &out, &stderr); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
}
