// Package config handles loading and saving application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "shopfloor"

// Backend names accepted by the backend setting.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRemote = "remote"
)

// Config represents the application configuration.
type Config struct {
	// Backend selects where project lists are read from and saved to.
	Backend  string         `yaml:"backend"`
	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Autosave AutosaveConfig `yaml:"autosave"`
	UI       UIConfig       `yaml:"ui"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds settings for the remote backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	// Timeout is a Go duration string such as "15s".
	Timeout string `yaml:"timeout,omitempty"`
}

// StoreConfig holds settings for the local backends.
type StoreConfig struct {
	// Path is the database (sqlite) or document (file) location. Empty means
	// a file in the data directory.
	Path string `yaml:"path,omitempty"`
}

// AutosaveConfig holds the save timing, as Go duration strings.
type AutosaveConfig struct {
	Debounce  string `yaml:"debounce,omitempty"`
	SavedHold string `yaml:"saved_hold,omitempty"`
}

// UIConfig holds UI-related settings.
type UIConfig struct {
	VimMode bool `yaml:"vim_mode"`
	// Notify sends a desktop notification when a save fails.
	Notify bool `yaml:"notify"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn or error
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendMemory,
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: "15s",
		},
		Autosave: AutosaveConfig{
			Debounce:  "1s",
			SavedHold: "850ms",
		},
		UI: UIConfig{
			VimMode: true,
			Notify:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the path to the configuration directory.
// Creates the directory if it doesn't exist.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", appName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the config file.
// If the file doesn't exist, returns a default configuration.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path, creating its directory.
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the backend name and every duration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendFile, BackendRemote:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	for name, v := range map[string]string{
		"api.timeout":         c.API.Timeout,
		"autosave.debounce":   c.Autosave.Debounce,
		"autosave.saved_hold": c.Autosave.SavedHold,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// Debounce returns the autosave quiet period, or zero for the default.
func (c *Config) Debounce() time.Duration {
	d, _ := parseDuration(c.Autosave.Debounce)
	return d
}

// SavedHold returns how long the saved indicator stays up, or zero for the
// default.
func (c *Config) SavedHold() time.Duration {
	d, _ := parseDuration(c.Autosave.SavedHold)
	return d
}

// APITimeout returns the HTTP timeout, or zero for the default.
func (c *Config) APITimeout() time.Duration {
	d, _ := parseDuration(c.API.Timeout)
	return d
}

// StorePath returns the configured store location, defaulting to a file in
// the data directory named after the backend.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	name := appName + ".json"
	if c.Backend == BackendSQLite {
		name = appName + ".db"
	}
	return filepath.Join(dir, name), nil
}

// LogPath returns the log file location, defaulting to the data directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) > 1 && path[0] == '~' && path[1] == '/'
}
