package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the wikihop configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the wikihop configuration directory
const ConfigDirName = ".wikihop"

// Config holds all wikihop configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Search   SearchConfig   `yaml:"search"`
}

// DatabaseConfig holds configuration for the link graph database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Addr                  string `yaml:"addr"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`

	// Analytics is a pointer so an explicit "analytics: false" in the
	// config file can be told apart from the key being absent.
	Analytics *bool `yaml:"analytics"`
}

// AnalyticsEnabled reports whether searches should be recorded.
// An unset key means the default, which is on.
func (c ServerConfig) AnalyticsEnabled() bool {
	if c.Analytics == nil {
		return true
	}
	return *c.Analytics
}

// SearchConfig holds configuration for path searches
type SearchConfig struct {
	// MaxPaths caps the number of paths returned to callers.
	// Zero means unlimited. The search itself always enumerates every
	// shortest path; the cap is applied to the response only.
	MaxPaths int `yaml:"max_paths"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .wikihop/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .wikihop directory by walking up from startDir.
// Returns the path to the .wikihop directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .wikihop directory if it doesn't exist.
// Returns the path to the .wikihop directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("%w: database path must not be empty", ErrInvalidConfig)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("%w: server addr must not be empty", ErrInvalidConfig)
	}

	if cfg.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: request_timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Server.RequestTimeoutSeconds)
	}

	if cfg.Search.MaxPaths < 0 {
		return fmt.Errorf("%w: max_paths must be non-negative, got %d",
			ErrInvalidConfig, cfg.Search.MaxPaths)
	}

	return nil
}

// SaveDefault writes the default configuration to .wikihop/config.yaml in workDir.
// Creates the .wikihop directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
