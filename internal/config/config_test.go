package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Instance.ID == "" {
		t.Error("default instance ID should not be empty")
	}
	if cfg.Scan.Interval.Duration != 1*time.Hour {
		t.Errorf("default scan interval = %v, want %v", cfg.Scan.Interval.Duration, 1*time.Hour)
	}
	if cfg.Display.Precision != 1 {
		t.Errorf("default display precision = %d, want 1", cfg.Display.Precision)
	}
	if cfg.Cooldown.Window.Duration != 6*time.Hour {
		t.Errorf("default cooldown window = %v, want %v", cfg.Cooldown.Window.Duration, 6*time.Hour)
	}
	if cfg.DB.Retention.Duration != 90*24*time.Hour {
		t.Errorf("default retention = %v, want %v", cfg.DB.Retention.Duration, 90*24*time.Hour)
	}
	if cfg.Ntfy.Priority != "high" {
		t.Errorf("default ntfy priority = %q, want %q", cfg.Ntfy.Priority, "high")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("loading nonexistent config should return defaults, got error: %v", err)
	}
	if cfg.Display.Precision != 1 {
		t.Errorf("precision = %d, want default 1", cfg.Display.Precision)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[instance]
id = "mynas"

[scan]
roots = ["/home", "/var"]
interval = "30m"

[display]
precision = 2

[limits]
"/home" = 53687091200

[ntfy]
url = "https://ntfy.sh/my-topic"
priority = "urgent"

[cooldown]
window = "12h"

[db]
path = "/tmp/snaps.db"
retention = "720h"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Instance.ID != "mynas" {
		t.Errorf("instance.id = %q, want %q", cfg.Instance.ID, "mynas")
	}
	if len(cfg.Scan.Roots) != 2 || cfg.Scan.Roots[0] != "/home" {
		t.Errorf("scan.roots = %v, want [/home /var]", cfg.Scan.Roots)
	}
	if cfg.Scan.Interval.Duration != 30*time.Minute {
		t.Errorf("scan.interval = %v, want 30m", cfg.Scan.Interval.Duration)
	}
	if cfg.Display.Precision != 2 {
		t.Errorf("display.precision = %d, want 2", cfg.Display.Precision)
	}
	if cfg.Ntfy.URL != "https://ntfy.sh/my-topic" {
		t.Errorf("ntfy.url = %q", cfg.Ntfy.URL)
	}
	if cfg.Ntfy.Priority != "urgent" {
		t.Errorf("ntfy.priority = %q, want %q", cfg.Ntfy.Priority, "urgent")
	}
	if cfg.Cooldown.Window.Duration != 12*time.Hour {
		t.Errorf("cooldown.window = %v, want 12h", cfg.Cooldown.Window.Duration)
	}
	if cfg.DBPath() != "/tmp/snaps.db" {
		t.Errorf("DBPath() = %q, want %q", cfg.DBPath(), "/tmp/snaps.db")
	}
	if cfg.DB.Retention.Duration != 720*time.Hour {
		t.Errorf("db.retention = %v, want 720h", cfg.DB.Retention.Duration)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not valid [[[ toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLimitFor(t *testing.T) {
	cfg := Default()
	cfg.Limits = map[string]int64{"/home": 50 * 1024 * 1024 * 1024}

	limit, ok := cfg.LimitFor("/home")
	if !ok {
		t.Fatal("limit for /home should exist")
	}
	if limit != 50*1024*1024*1024 {
		t.Errorf("limit = %d, want %d", limit, int64(50*1024*1024*1024))
	}

	if _, ok := cfg.LimitFor("/var"); ok {
		t.Error("limit for /var should not exist")
	}
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg := Default()
	want := filepath.Join("/tmp/xdg-data", "dusnap", "snapshots.db")
	if got := cfg.DBPath(); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
}
