package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"emoeval/internal/spec"
)

// Load reads the config at path, fills defaults and checks it together with
// the dataset and prompt files it references. Validation problems come back
// as a *ValidationError listing every issue.
func Load(path string) (spec.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return spec.Config{}, fmt.Errorf("config %s does not exist; run emoeval init", filepath.Base(path))
	}
	if err != nil {
		return spec.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := spec.ParseConfig(data)
	if err != nil {
		return spec.Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	Normalize(&cfg)
	if err := Validate(&cfg, RootFromConfigPath(path)); err != nil {
		return spec.Config{}, err
	}
	return cfg, nil
}
