package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// =============================================================================
// Loading Tests
// =============================================================================

// TestLoad_OverridesDefaults verifies file values replace defaults while
// unset keys keep them.
func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
api:
  base_url: "http://intel.internal:8000"
cache:
  enabled: true
  redis:
    addr: "redis.internal:6379"
dashboard:
  poll_interval: 30s
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://intel.internal:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Redis.Addr != "redis.internal:6379" {
		t.Errorf("cache settings not applied: %+v", cfg.Cache)
	}
	if cfg.Dashboard.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.Dashboard.PollInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}

	// Unset keys keep their defaults.
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout default lost: %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Dashboard.TimelineLimit != 50 {
		t.Errorf("TimelineLimit default lost: %d", cfg.Dashboard.TimelineLimit)
	}
}

// TestLoad_MissingFile verifies a missing file is an error the caller can
// fall back from.
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should error")
	}
}

// TestLoad_MalformedYAML verifies parse failures surface.
func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should error")
	}
}

// TestLoad_EnvOverridesAPIOrigin verifies SENTINEL_API_URL wins over the
// file value.
func TestLoad_EnvOverridesAPIOrigin(t *testing.T) {
	t.Setenv("SENTINEL_API_URL", "http://from-env:8000")

	path := writeConfig(t, `
api:
  base_url: "http://from-file:8000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}

	if cfg.API.BaseURL != "http://from-env:8000" {
		t.Errorf("env override lost, BaseURL = %q", cfg.API.BaseURL)
	}
}

// TestDefaultConfig verifies the zero-file defaults are serviceable.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should default off")
	}
	if cfg.Dashboard.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.Dashboard.PollInterval)
	}
}
