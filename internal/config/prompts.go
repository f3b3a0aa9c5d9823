package config

import (
	"fmt"
	"os"
	"strings"

	"emoeval/internal/spec"
)

// LoadPrompt returns a call's developer prompt. A prompt_file that exists
// wins; a missing file falls back to the inline prompt.
func LoadPrompt(root string, call spec.CallConfig) (string, bool, error) {
	inline := strings.TrimSpace(call.Prompt)
	if path := strings.TrimSpace(call.PromptFile); path != "" {
		data, err := os.ReadFile(ResolvePath(root, path))
		switch {
		case err == nil:
			if text := strings.TrimSpace(string(data)); text != "" {
				return text, false, nil
			}
			if inline == "" {
				return "", false, fmt.Errorf("prompt file %q is empty", path)
			}
			return inline, true, nil
		case os.IsNotExist(err) && inline != "":
			return inline, true, nil
		case os.IsNotExist(err):
			return "", false, fmt.Errorf("prompt file %q not found", path)
		default:
			return "", false, fmt.Errorf("read prompt file %q: %w", path, err)
		}
	}
	if inline == "" {
		return "", false, fmt.Errorf("prompt or prompt_file is required")
	}
	return inline, false, nil
}
