// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for dusnap.
type Config struct {
	Instance InstanceConfig   `toml:"instance"`
	Scan     ScanConfig       `toml:"scan"`
	Display  DisplayConfig    `toml:"display"`
	Limits   map[string]int64 `toml:"limits"`
	Ntfy     NtfyConfig       `toml:"ntfy"`
	Cooldown CooldownConfig   `toml:"cooldown"`
	DB       DBConfig         `toml:"db"`
	Log      LogConfig        `toml:"log"`
}

// InstanceConfig identifies this machine.
type InstanceConfig struct {
	ID string `toml:"id"`
}

// ScanConfig controls which roots are scanned and how often.
type ScanConfig struct {
	Roots    []string `toml:"roots"`
	Interval Duration `toml:"interval"`
}

// DisplayConfig controls how byte amounts are rendered.
type DisplayConfig struct {
	// Precision is the number of decimal places, e.g. 1 -> "32.0 Kb".
	Precision int `toml:"precision"`
}

// NtfyConfig controls the ntfy notification target for limit alerts.
type NtfyConfig struct {
	URL      string `toml:"url"`
	Priority string `toml:"priority"`
}

// CooldownConfig controls how often limit alerts may repeat per root.
type CooldownConfig struct {
	Window Duration `toml:"window"`
}

// DBConfig controls snapshot storage.
type DBConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return &Config{
		Instance: InstanceConfig{
			ID: hostname,
		},
		Scan: ScanConfig{
			Interval: Duration{1 * time.Hour},
		},
		Display: DisplayConfig{
			Precision: 1,
		},
		Ntfy: NtfyConfig{
			Priority: "high",
		},
		Cooldown: CooldownConfig{
			Window: Duration{6 * time.Hour},
		},
		DB: DBConfig{
			Retention: Duration{90 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "dusnap", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// DBPath returns the configured snapshot database path, or the default
// location under the user data directory.
func (c *Config) DBPath() string {
	if c.DB.Path != "" {
		return c.DB.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "dusnap", "snapshots.db")
}

// LimitFor returns the configured byte limit for the given root. Limits
// are configured in raw bytes; unit-string parsing is deliberately not
// supported.
func (c *Config) LimitFor(root string) (int64, bool) {
	limit, ok := c.Limits[root]
	return limit, ok
}
