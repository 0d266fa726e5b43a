// Package config provides configuration types and loading for ritual.
package config

// Config is the root configuration struct.
// Top-level groups: Paths, Time, History.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Time    TimeConfig    `json:"time"`
	History HistoryConfig `json:"history"`
}

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	// Database is the SQLite file holding the completion ledger.
	Database string `json:"database" envconfig:"DATABASE"`
	// Catalog is an optional CUE file overriding the built-in task
	// catalog. Empty means use the built-in one.
	Catalog string `json:"catalog,omitempty" envconfig:"CATALOG"`
}

// TimeConfig groups civil time settings.
type TimeConfig struct {
	// Zone is the IANA name of the fixed zone used to resolve "today".
	// All date keys are wall-clock dates in this zone, independent of
	// the server locale.
	Zone string `json:"zone" envconfig:"ZONE"`
}

// HistoryConfig groups history view settings.
type HistoryConfig struct {
	DefaultDays int `json:"defaultDays" envconfig:"DEFAULT_DAYS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Database: "~/.ritual/ritual.db",
		},
		Time: TimeConfig{
			Zone: "UTC",
		},
		History: HistoryConfig{
			DefaultDays: 30,
		},
	}
}
