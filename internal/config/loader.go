package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".ritual"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("RITUAL_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from the default path and environment
// variables. Priority: environment > file > defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil // Use defaults if we can't find config path
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit file path and the
// environment. A missing file is not an error; the defaults apply.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("RITUAL_PATHS", &cfg.Paths)
	envconfig.Process("RITUAL_TIME", &cfg.Time)
	envconfig.Process("RITUAL_HISTORY", &cfg.History)

	// Expand ~ in paths
	expandHome := func(p *string) {
		if strings.HasPrefix(*p, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				*p = filepath.Join(home, (*p)[1:])
			}
		}
	}
	expandHome(&cfg.Paths.Database)
	expandHome(&cfg.Paths.Catalog)

	if strings.TrimSpace(cfg.Time.Zone) == "" {
		cfg.Time.Zone = "UTC"
	}
	if cfg.History.DefaultDays <= 0 {
		cfg.History.DefaultDays = 30
	}

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ResolveLocation loads the configured civil timezone.
func (c *Config) ResolveLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Time.Zone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Time.Zone, err)
	}
	return loc, nil
}
