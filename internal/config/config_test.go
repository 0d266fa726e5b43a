package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.Database != "~/.ritual/ritual.db" {
		t.Errorf("expected default database ~/.ritual/ritual.db, got %s", cfg.Paths.Database)
	}

	if cfg.Paths.Catalog != "" {
		t.Errorf("expected empty default catalog path, got %s", cfg.Paths.Catalog)
	}

	if cfg.Time.Zone != "UTC" {
		t.Errorf("expected default zone UTC, got %s", cfg.Time.Zone)
	}

	if cfg.History.DefaultDays != 30 {
		t.Errorf("expected default history days 30, got %d", cfg.History.DefaultDays)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Temporarily set HOME to a directory with no config file
	tmpDir := t.TempDir()
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Time.Zone != "UTC" {
		t.Errorf("expected zone UTC, got %s", cfg.Time.Zone)
	}
	if cfg.History.DefaultDays != 30 {
		t.Errorf("expected defaultDays 30, got %d", cfg.History.DefaultDays)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp config
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".ritual")
	os.MkdirAll(configDir, 0755)
	configFile := filepath.Join(configDir, "config.json")

	configJSON := `{
		"paths": {
			"database": "/custom/ritual.db"
		},
		"time": {
			"zone": "Pacific/Auckland"
		},
		"history": {
			"defaultDays": 14
		}
	}`
	os.WriteFile(configFile, []byte(configJSON), 0600)

	// Temporarily set HOME
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Paths.Database != "/custom/ritual.db" {
		t.Errorf("expected database /custom/ritual.db, got %s", cfg.Paths.Database)
	}

	if cfg.Time.Zone != "Pacific/Auckland" {
		t.Errorf("expected zone Pacific/Auckland, got %s", cfg.Time.Zone)
	}

	if cfg.History.DefaultDays != 14 {
		t.Errorf("expected defaultDays 14, got %d", cfg.History.DefaultDays)
	}
}

func TestEnvOverride(t *testing.T) {
	// Set env var with correct prefix for nested struct
	os.Setenv("RITUAL_TIME_ZONE", "Europe/Berlin")
	os.Setenv("RITUAL_HISTORY_DEFAULT_DAYS", "7")
	defer func() {
		os.Unsetenv("RITUAL_TIME_ZONE")
		os.Unsetenv("RITUAL_HISTORY_DEFAULT_DAYS")
	}()

	// Use temp home with no config file
	tmpDir := t.TempDir()
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Time.Zone != "Europe/Berlin" {
		t.Errorf("expected zone Europe/Berlin from env, got %s", cfg.Time.Zone)
	}

	if cfg.History.DefaultDays != 7 {
		t.Errorf("expected defaultDays 7 from env, got %d", cfg.History.DefaultDays)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".ritual")
	os.MkdirAll(configDir, 0755)
	configFile := filepath.Join(configDir, "config.json")
	os.WriteFile(configFile, []byte(`{"time": {"zone": "Asia/Tokyo"}}`), 0600)

	os.Setenv("RITUAL_TIME_ZONE", "Europe/Berlin")
	defer os.Unsetenv("RITUAL_TIME_ZONE")

	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Time.Zone != "Europe/Berlin" {
		t.Errorf("expected env to beat file, got %s", cfg.Time.Zone)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	tmpDir := t.TempDir()
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if strings.HasPrefix(cfg.Paths.Database, "~") {
		t.Errorf("expected ~ expanded in database path, got %s", cfg.Paths.Database)
	}
	if !strings.HasPrefix(cfg.Paths.Database, tmpDir) {
		t.Errorf("expected database under %s, got %s", tmpDir, cfg.Paths.Database)
	}
}

func TestLoadClampsInvalidDays(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".ritual")
	os.MkdirAll(configDir, 0755)
	configFile := filepath.Join(configDir, "config.json")
	os.WriteFile(configFile, []byte(`{"history": {"defaultDays": -3}}`), 0600)

	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.History.DefaultDays != 30 {
		t.Errorf("expected non-positive defaultDays reset to 30, got %d", cfg.History.DefaultDays)
	}
}

func TestLoadFromExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "elsewhere.json")
	os.WriteFile(configFile, []byte(`{"history": {"defaultDays": 9}}`), 0600)

	cfg, err := LoadFrom(configFile)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.History.DefaultDays != 9 {
		t.Errorf("expected defaultDays 9, got %d", cfg.History.DefaultDays)
	}
	if cfg.Time.Zone != "UTC" {
		t.Errorf("expected unset fields to keep defaults, got zone %s", cfg.Time.Zone)
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.History.DefaultDays != 30 {
		t.Errorf("expected defaults for missing file, got %d", cfg.History.DefaultDays)
	}
}

func TestLoadFromMalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "bad.json")
	os.WriteFile(configFile, []byte(`{not json`), 0600)

	if _, err := LoadFrom(configFile); err == nil {
		t.Error("expected error for malformed config JSON")
	}
}

func TestConfigPathExplicitEnv(t *testing.T) {
	os.Setenv("RITUAL_CONFIG", "/explicit/config.json")
	defer os.Unsetenv("RITUAL_CONFIG")

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error: %v", err)
	}

	if path != "/explicit/config.json" {
		t.Errorf("expected explicit path, got %s", path)
	}
}

func TestResolveLocation(t *testing.T) {
	cfg := DefaultConfig()

	loc, err := cfg.ResolveLocation()
	if err != nil {
		t.Fatalf("ResolveLocation() error: %v", err)
	}
	if loc.String() != "UTC" {
		t.Errorf("expected UTC, got %s", loc)
	}

	cfg.Time.Zone = "Not/AZone"
	if _, err := cfg.ResolveLocation(); err == nil {
		t.Error("expected error for invalid zone")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", origHome)

	cfg := DefaultConfig()
	cfg.Time.Zone = "Europe/Berlin"
	cfg.History.DefaultDays = 14

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loaded.Time.Zone != "Europe/Berlin" {
		t.Errorf("expected saved zone round-tripped, got %s", loaded.Time.Zone)
	}
	if loaded.History.DefaultDays != 14 {
		t.Errorf("expected saved days round-tripped, got %d", loaded.History.DefaultDays)
	}
}
