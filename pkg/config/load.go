package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SettingsPathEnv names the environment variable holding the settings file path.
const SettingsPathEnv = "APP_SETTINGS_PATH"

// Load builds a Config from defaults, the settings file at path (or at
// $APP_SETTINGS_PATH when path is empty), environment overrides and opts, in
// that order. A missing path means no file layer.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(SettingsPathEnv)
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML or JSON document at path onto cfg. Only keys
// present in the file are changed.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	// yaml.v3 accepts JSON documents as well.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return nil
}
