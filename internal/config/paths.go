// ABOUTME: Resolves the tern configuration directory and well-known paths
// ABOUTME: Honors TERN_CONFIG_DIR for tests and sandboxed setups

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the tern configuration directory, creating nothing.
// TERN_CONFIG_DIR overrides the default ~/.tern.
func Dir() (string, error) {
	if dir := os.Getenv("TERN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".tern"), nil
}

// EnsureDir creates the configuration directory if it does not exist.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// HistoryPath returns the prompt history file path.
func HistoryPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// CommandsDir returns the directory holding custom command definitions.
func CommandsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "commands"), nil
}

// SessionsDir returns the directory holding session transcripts.
func SessionsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// LogPath returns the debug log file path.
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tern.log"), nil
}
