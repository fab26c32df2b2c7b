// Package config handles fluere's TOML configuration file, which
// describes the plugins the external host should drive. The core treats
// the per-plugin extra arguments as an opaque map.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

const (
	configDirName  = "fluere"
	configFileName = "fluere.toml"
)

// Plugin describes one plugin entry of the configuration file
type Plugin struct {
	Enabled bool `toml:"enabled"`

	// Path points to a local, unpublished plugin
	Path string `toml:"path,omitempty"`

	ExtraArguments map[string]string `toml:"extra_arguments,omitempty"`
}

// Config is the top-level configuration file structure
type Config struct {
	Plugins map[string]Plugin `toml:"plugins"`
}

// New returns an empty default configuration
func New() *Config {
	return &Config{
		Plugins: make(map[string]Plugin),
	}
}

// EnabledPlugins returns the extra arguments of all enabled plugins,
// keyed by plugin name
func (c *Config) EnabledPlugins() map[string]map[string]string {
	enabled := make(map[string]map[string]string)
	for name, plugin := range c.Plugins {
		if plugin.Enabled {
			enabled[name] = plugin.ExtraArguments
		}
	}
	return enabled
}

// Path resolves the location of the configuration file:
// $XDG_CONFIG_HOME/fluere/fluere.toml (or the platform equivalent).
// When running under sudo the invoking user's configuration is used
// rather than root's.
func Path() (string, error) {
	base, err := configBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

func configBase() (string, error) {
	// SUDO_USER points at the invoking user's home; macOS keeps its
	// config dir per-user under the same root, so the default applies
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && runtime.GOOS != "darwin" {
		return filepath.Join("/home", sudoUser, ".config"), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine the user config directory: %w", err)
	}
	return base, nil
}

// Load reads the configuration file at the default location, creating a
// default file first if none exists. A malformed file is a hard error;
// a missing directory is created on the fly.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads (and, if missing, initializes) the given config file
func LoadFile(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		cfg := New()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := New()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Plugins == nil {
		cfg.Plugins = make(map[string]Plugin)
	}

	return cfg, nil
}

// Save writes the configuration to the given path
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
