// ABOUTME: Persistent user configuration for stepseq
// ABOUTME: Loads and saves ~/.config/stepseq/config.json with defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SessionConfig holds defaults for a new session
type SessionConfig struct {
	BPM   int `json:"bpm,omitempty"`
	Steps int `json:"steps,omitempty"`
}

// ControlConfig holds remote control server settings
type ControlConfig struct {
	Port       int    `json:"port,omitempty"`
	Name       string `json:"name,omitempty"`
	EnableMDNS bool   `json:"enableMdns"`
}

// OutputConfig holds audio device settings
type OutputConfig struct {
	SampleRate int `json:"sampleRate,omitempty"`
	Channels   int `json:"channels,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Session    SessionConfig `json:"session"`
	Control    ControlConfig `json:"control"`
	Output     OutputConfig  `json:"output"`
	ExportDir  string        `json:"exportDir,omitempty"`
	SampleDirs []string      `json:"sampleDirs,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			BPM:   120,
			Steps: 16,
		},
		Control: ControlConfig{
			Port:       8928,
			Name:       "stepseq",
			EnableMDNS: true,
		},
		Output: OutputConfig{
			SampleRate: 44100,
			Channels:   2,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stepseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing files yield defaults;
// fields absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
