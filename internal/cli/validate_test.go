package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emoeval/internal/testutil"
)

// TestValidateCommandSuccess verifies validate command success path.
func TestValidateCommandSuccess(t *testing.T) {
	_, specPath := writeProject(t, "http://127.0.0.1:8010/invoke")

	var out, err bytes.Buffer
	code := Run([]string{"validate", "--spec", specPath}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, err.String())
	}
	if err.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", err.String())
	}
	if !strings.Contains(out.String(), "Config OK (1 tasks") {
		t.Fatalf("expected success message, got %q", out.String())
	}
}

// TestValidateCommandFailure verifies every issue is reported.
func TestValidateCommandFailure(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, ".emoeval", "config.yml")
	testutil.WriteFile(t, specPath, `version: 1
dataset: missing.json
tasks:
  - id: combined
    calls:
      - id: combined
        function_name: emotion-analyze
        prompt_file: prompts/missing.txt
        fields: [emotion]
`)

	var out, err bytes.Buffer
	code := Run([]string{"validate", "--spec", specPath}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	for _, want := range []string{"Validation failed", "dataset:", "tasks[0].model", "tasks[0].calls[0].prompt"} {
		if !strings.Contains(err.String(), want) {
			t.Fatalf("expected %q in %q", want, err.String())
		}
	}
}

// TestValidateFindsConfigInParent verifies config discovery from parent dirs.
func TestValidateFindsConfigInParent(t *testing.T) {
	root, _ := writeProject(t, "http://127.0.0.1:8010/invoke")
	nested := filepath.Join(root, "nested", "dir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("create nested dir: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd: %v", err)
	}
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out, stderr bytes.Buffer
	code := Run([]string{"validate"}, &out, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, stderr.String())
	}
}
