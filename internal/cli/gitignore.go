package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// ignoreResultsDir appends the results folder to the repository .gitignore.
// It reports false when the entry was already present.
func ignoreResultsDir(repoRoot, outputDir string) (bool, error) {
	entry, err := gitignoreEntry(repoRoot, outputDir)
	if err != nil {
		return false, err
	}
	path := filepath.Join(repoRoot, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}
	content := string(data)
	lines := lo.Map(strings.Split(content, "\n"), func(line string, _ int) string {
		return strings.TrimSuffix(strings.TrimSpace(line), "/")
	})
	if lo.Contains(lines, entry) {
		return false, nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content+entry+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write .gitignore: %w", err)
	}
	return true, nil
}

// gitignoreEntry turns an output dir into a slash path relative to the repo.
func gitignoreEntry(repoRoot, outputDir string) (string, error) {
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		return "", fmt.Errorf("results folder is empty")
	}
	dir = filepath.Clean(dir)
	if filepath.IsAbs(dir) {
		rel, err := filepath.Rel(repoRoot, dir)
		if err != nil {
			return "", fmt.Errorf("relate results folder to repo: %w", err)
		}
		dir = rel
	}
	if dir == "." || dir == ".." || strings.HasPrefix(dir, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("results folder %q is not inside %s", outputDir, repoRoot)
	}
	return filepath.ToSlash(dir), nil
}
