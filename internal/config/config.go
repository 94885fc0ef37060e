package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the global srdiff configuration, loaded from
// ~/.srdiff/config.yaml.
type Config struct {
	// DefaultDialect is which engine "apply" defaults to when --dialect
	// is not passed: "strict" or "lenient".
	DefaultDialect string `yaml:"default_dialect,omitempty"`
	// ChunkLines is how many diff lines "preview" feeds to the engine per
	// streaming step when simulating incremental delivery. "watch" does
	// not use it: it applies each diff file in one final call.
	ChunkLines int `yaml:"chunk_lines,omitempty"`
	// WatchDir is the default directory "watch" polls when --dir is not
	// passed.
	WatchDir string `yaml:"watch_dir,omitempty"`
	// IgnoreFile is the default ignore file name "watch" looks for.
	IgnoreFile string `yaml:"ignore_file,omitempty"`
	// LogLevel is passed to the log/slog handler constructed in main:
	// "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level,omitempty"`
}

// RepoConfig is a repository-local override, loaded from
// <repo root>/.srdiff.yaml.
type RepoConfig struct {
	DefaultDialect string `yaml:"default_dialect,omitempty"`
	ChunkLines     int    `yaml:"chunk_lines,omitempty"`
	WatchDir       string `yaml:"watch_dir,omitempty"`
}

// defaultConfig is what a freshly-initialized Manager returns before any
// file is found on disk.
func defaultConfig() Config {
	return Config{
		DefaultDialect: "strict",
		ChunkLines:     1,
		IgnoreFile:     ".srdiffignore",
		LogLevel:       "info",
	}
}

// Manager handles configuration file operations: a global config plus an
// optional repo-local override.
type Manager struct {
	globalConfig *Config
	repoConfig   *RepoConfig
	globalPath   string
	repoPath     string
}

// NewManager creates a configuration manager rooted at the user's home
// directory and the current repository (or working directory, if not in
// a git repository).
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".srdiff", "config.yaml")

	repoRoot, err := findRepoRoot()
	if err != nil {
		repoRoot, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	repoPath := filepath.Join(repoRoot, ".srdiff.yaml")

	return &Manager{
		globalPath: globalPath,
		repoPath:   repoPath,
	}, nil
}

// findRepoRoot finds the repository root by looking for a .git directory
func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("not in a git repository")
		}
		dir = parent
	}
}

// Load loads both global and repository-specific configurations.
func (m *Manager) Load() error {
	globalConfig, err := m.loadGlobalConfig()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load global config: %w", err)
	}
	m.globalConfig = globalConfig

	repoConfig, err := m.loadRepoConfig()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load repo config: %w", err)
	}
	m.repoConfig = repoConfig

	return nil
}

func (m *Manager) loadGlobalConfig() (*Config, error) {
	data, err := os.ReadFile(m.globalPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return &cfg, os.ErrNotExist
		}
		return nil, err
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse global config: %w", err)
	}

	return &config, nil
}

func (m *Manager) loadRepoConfig() (*RepoConfig, error) {
	data, err := os.ReadFile(m.repoPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RepoConfig{}, os.ErrNotExist
		}
		return nil, err
	}

	var config RepoConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig writes the loaded global configuration back to disk.
func (m *Manager) SaveGlobalConfig() error {
	if m.globalConfig == nil {
		return errors.New("global config not loaded")
	}

	dir := filepath.Dir(m.globalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(m.globalConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal global config: %w", err)
	}

	if err := os.WriteFile(m.globalPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write global config: %w", err)
	}

	return nil
}

// GetGlobalConfig returns the loaded global configuration.
func (m *Manager) GetGlobalConfig() *Config {
	return m.globalConfig
}

// GetRepoConfig returns the loaded repo-local override.
func (m *Manager) GetRepoConfig() *RepoConfig {
	return m.repoConfig
}

// EffectiveDialect returns the repo override's dialect if set, else the
// global default.
func (m *Manager) EffectiveDialect() string {
	if m.repoConfig != nil && m.repoConfig.DefaultDialect != "" {
		return m.repoConfig.DefaultDialect
	}
	if m.globalConfig != nil && m.globalConfig.DefaultDialect != "" {
		return m.globalConfig.DefaultDialect
	}
	return "strict"
}

// EffectiveChunkLines returns the repo override's chunk size if set, else
// the global default, else 1.
func (m *Manager) EffectiveChunkLines() int {
	if m.repoConfig != nil && m.repoConfig.ChunkLines > 0 {
		return m.repoConfig.ChunkLines
	}
	if m.globalConfig != nil && m.globalConfig.ChunkLines > 0 {
		return m.globalConfig.ChunkLines
	}
	return 1
}

// EffectiveWatchDir returns the repo override's watch directory if set,
// else the global default, else ".".
func (m *Manager) EffectiveWatchDir() string {
	if m.repoConfig != nil && m.repoConfig.WatchDir != "" {
		return m.repoConfig.WatchDir
	}
	if m.globalConfig != nil && m.globalConfig.WatchDir != "" {
		return m.globalConfig.WatchDir
	}
	return "."
}

// EffectiveIgnoreFile returns the global config's ignore file name, or the
// package default.
func (m *Manager) EffectiveIgnoreFile() string {
	if m.globalConfig != nil && m.globalConfig.IgnoreFile != "" {
		return m.globalConfig.IgnoreFile
	}
	return ".srdiffignore"
}

// EffectiveLogLevel returns the global config's log level, or "info".
func (m *Manager) EffectiveLogLevel() string {
	if m.globalConfig != nil && m.globalConfig.LogLevel != "" {
		return m.globalConfig.LogLevel
	}
	return "info"
}
