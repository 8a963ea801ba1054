// Package config loads the application configuration from YAML, merging the
// file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Library struct {
		Root    string   `yaml:"root"`    // Directory to scan for viewable files
		Exclude []string `yaml:"exclude"` // Glob patterns to skip while scanning
	} `yaml:"library"`
	Zoom struct {
		Floor   float64 `yaml:"floor"`   // Fixed lower scale limit
		Ceiling float64 `yaml:"ceiling"` // Fixed upper scale limit
	} `yaml:"zoom"`
	Slideshow struct {
		IntervalSeconds int `yaml:"interval_seconds"` // Auto-advance interval
	} `yaml:"slideshow"`
	Storage struct {
		Dir string `yaml:"dir"` // Directory for the tag and preference databases
	} `yaml:"storage"`
	Convert struct {
		CacheDir string `yaml:"cache_dir"` // Directory for converted renditions
	} `yaml:"convert"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Zoom.Floor = 0.1
	cfg.Zoom.Ceiling = 5.0
	cfg.Slideshow.IntervalSeconds = 2
	return cfg
}

// Load reads the configuration from the default location
// (~/.config/allusion/config.yaml).
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(configDir, "allusion", "config.yaml"))
}

// LoadFile reads the configuration from path. A missing file yields the
// defaults; set fields in the file override them.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if loaded.Library.Root != "" {
		cfg.Library.Root = loaded.Library.Root
	}
	if len(loaded.Library.Exclude) > 0 {
		cfg.Library.Exclude = loaded.Library.Exclude
	}
	if loaded.Zoom.Floor > 0 {
		cfg.Zoom.Floor = loaded.Zoom.Floor
	}
	if loaded.Zoom.Ceiling > 0 {
		cfg.Zoom.Ceiling = loaded.Zoom.Ceiling
	}
	if loaded.Slideshow.IntervalSeconds > 0 {
		cfg.Slideshow.IntervalSeconds = loaded.Slideshow.IntervalSeconds
	}
	if loaded.Storage.Dir != "" {
		cfg.Storage.Dir = loaded.Storage.Dir
	}
	if loaded.Convert.CacheDir != "" {
		cfg.Convert.CacheDir = loaded.Convert.CacheDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Zoom.Floor <= 0 {
		return fmt.Errorf("zoom.floor must be positive, got %v", c.Zoom.Floor)
	}
	if c.Zoom.Ceiling < c.Zoom.Floor {
		return fmt.Errorf("zoom.ceiling %v below zoom.floor %v", c.Zoom.Ceiling, c.Zoom.Floor)
	}
	return nil
}

// StorageDir returns the configured storage directory, defaulting to the
// user config dir, and ensures it exists.
func (c *Config) StorageDir() (string, error) {
	dir := c.Storage.Dir
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "allusion")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating storage dir %s: %w", dir, err)
	}
	return dir, nil
}
