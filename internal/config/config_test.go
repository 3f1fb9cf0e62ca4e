package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_addr: ":9999"
tracker:
  data_dir: "/var/lib/varde"
  admin_token: "hunter2"
  alert_threshold: 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Tracker.AdminToken != "hunter2" {
		t.Errorf("admin_token = %q", cfg.Tracker.AdminToken)
	}
	if cfg.Tracker.AlertThreshold != 60 {
		t.Errorf("alert_threshold = %d", cfg.Tracker.AlertThreshold)
	}

	// Absent fields fall back to defaults
	if cfg.Tracker.GeoTimeout != 5 || cfg.Tracker.RecentLimit != 500 {
		t.Errorf("defaults not applied: %+v", cfg.Tracker)
	}
	if cfg.DatabasePath() != "/var/lib/varde/attacks.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath())
	}
	if cfg.EvidencePath() != "/var/lib/varde/evidence" {
		t.Errorf("EvidencePath = %q", cfg.EvidencePath())
	}
}

// A written configuration must load back with the same values, so the starter
// file seeded on first run round-trips.
func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Defaults()
	cfg.Server.ListenAddr = ":9000"
	cfg.Tracker.AdminToken = "hunter2"
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.ListenAddr != ":9000" {
		t.Errorf("listen_addr = %q", loaded.Server.ListenAddr)
	}
	if loaded.Tracker.AdminToken != "hunter2" {
		t.Errorf("admin_token = %q", loaded.Tracker.AdminToken)
	}
	if loaded.Tracker.AlertThreshold != cfg.Tracker.AlertThreshold {
		t.Errorf("alert_threshold = %d", loaded.Tracker.AlertThreshold)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing configuration file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Tracker.AlertThreshold != 50 {
		t.Errorf("alert_threshold = %d", cfg.Tracker.AlertThreshold)
	}
	if cfg.Tracker.AdminToken != "" {
		t.Error("default admin token must be empty")
	}
	if cfg.DatabasePath() != filepath.Join("data", "attacks.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath())
	}
}
