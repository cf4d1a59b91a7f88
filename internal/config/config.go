// ABOUTME: User configuration loaded from config.yaml in the tern directory
// ABOUTME: Missing file yields defaults; unknown keys are ignored

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when config.yaml omits a value.
const (
	DefaultBaseURL         = "http://127.0.0.1:4096"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultWorktreeTimeout = 5 * time.Minute
)

// Config is the user-facing configuration.
type Config struct {
	// Model is the default model identifier for new sessions.
	Model string
	// Agent is the default agent name for new sessions.
	Agent string
	// BaseURL is the backend address.
	BaseURL string
	// RequestTimeout bounds individual RPC calls.
	RequestTimeout time.Duration
	// WorktreeTimeout bounds waiting for a worktree to become ready.
	WorktreeTimeout time.Duration
}

// fileConfig is the on-disk shape. Durations are strings like "30s"
// because yaml decodes time.Duration as a bare integer.
type fileConfig struct {
	Model           string `yaml:"model"`
	Agent           string `yaml:"agent"`
	BaseURL         string `yaml:"base_url"`
	RequestTimeout  string `yaml:"request_timeout"`
	WorktreeTimeout string `yaml:"worktree_timeout"`
}

// Load reads config.yaml from the tern directory. A missing file
// yields the defaults.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Config{
		BaseURL:         DefaultBaseURL,
		RequestTimeout:  DefaultRequestTimeout,
		WorktreeTimeout: DefaultWorktreeTimeout,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Model = raw.Model
	cfg.Agent = raw.Agent
	if raw.BaseURL != "" {
		cfg.BaseURL = raw.BaseURL
	}
	if cfg.RequestTimeout, err = overrideDuration(raw.RequestTimeout, "request_timeout", DefaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WorktreeTimeout, err = overrideDuration(raw.WorktreeTimeout, "worktree_timeout", DefaultWorktreeTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideDuration(value, key string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}
