package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config path constants used by the CLI and loaders.
const (
	ConfigDirName    = ".emoeval"
	ConfigFileName   = "config.yml"
	DefaultOutputDir = ".emoeval/results"
)

// ConfigPath returns the config file path under a project root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// RootFromConfigPath derives the project root from a config file path.
// Relative paths in the config resolve against this root.
func RootFromConfigPath(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ConfigDirName {
		return filepath.Dir(dir)
	}
	return dir
}

// ResolvePath joins a config-relative path onto root.
func ResolvePath(root, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// FindConfigPath searches upward from a directory for .emoeval/config.yml.
func FindConfigPath(startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		candidate := ConfigPath(dir)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return "", fmt.Errorf("config path %q is a directory", candidate)
		case err == nil:
			return candidate, nil
		case !os.IsNotExist(err):
			return "", fmt.Errorf("stat config path %q: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or parent directories", filepath.Join(ConfigDirName, ConfigFileName), startDirOrWD(startDir))
		}
		dir = parent
	}
}

func startDirOrWD(startDir string) string {
	if strings.TrimSpace(startDir) != "" {
		return startDir
	}
	wd, _ := os.Getwd()
	return wd
}
