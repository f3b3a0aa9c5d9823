package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"emoeval/internal/config"
	"emoeval/internal/spec"
)

// project is a loaded config together with the root its paths resolve against.
type project struct {
	ConfigPath string
	Root       string
	Config     spec.Config
}

// resolveSpecPath normalizes a config path or finds it from CWD.
func resolveSpecPath(specPath string) (string, error) {
	if strings.TrimSpace(specPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(specPath)
	if err != nil {
		return "", fmt.Errorf("resolve spec path: %w", err)
	}
	return abs, nil
}

// loadProject resolves and loads the config.
func loadProject(specPath string) (project, error) {
	resolved, err := resolveSpecPath(specPath)
	if err != nil {
		return project{}, err
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return project{}, err
	}
	return project{
		ConfigPath: resolved,
		Root:       config.RootFromConfigPath(resolved),
		Config:     cfg,
	}, nil
}

// resolveInputDir determines the results directory from an explicit flag or
// the config's output_dir.
func resolveInputDir(inputDir, specPath string) (string, error) {
	if strings.TrimSpace(inputDir) != "" {
		return filepath.Abs(inputDir)
	}
	p, err := loadProject(specPath)
	if err != nil {
		return "", err
	}
	return config.ResolvePath(p.Root, p.Config.OutputDir), nil
}

// resolveWarehousePath picks the --db flag or the config's warehouse path.
func resolveWarehousePath(dbPath, specPath string) (string, error) {
	if strings.TrimSpace(dbPath) != "" {
		return filepath.Abs(dbPath)
	}
	p, err := loadProject(specPath)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(p.Config.Warehouse.Path) == "" {
		return "", fmt.Errorf("no --db given and warehouse.path is not set in %s", p.ConfigPath)
	}
	return config.ResolvePath(p.Root, p.Config.Warehouse.Path), nil
}
