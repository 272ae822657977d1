package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/tracker"
)

// Config represents the application configuration
type Config struct {
	Backend backend.Config `toml:"backend"`
	Tracker tracker.Config `toml:"tracker"`
	Sync    SyncConfig     `toml:"sync"`
	Journal JournalConfig  `toml:"journal"`
	Logging LoggingConfig  `toml:"logging"`
}

// SyncConfig holds transfer pipeline settings
type SyncConfig struct {
	RoundingMinutes int  `toml:"rounding_minutes"`
	RequireFullDay  bool `toml:"require_full_day"`
}

// JournalConfig holds audit journal settings. The journal is enabled when a
// DSN is set.
type JournalConfig struct {
	DSN string `toml:"dsn"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tracker: tracker.Config{
			APIURL:     "https://www.toggl.com/api/v8",
			ReportsURL: "https://toggl.com/reports/api/v2",
		},
		Sync: SyncConfig{
			RoundingMinutes: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Environment variables (credentials and endpoints)
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()

	return config, nil
}

// applyEnv overlays environment variables on the loaded configuration.
// Credentials are only ever environment-sourced; they have no TOML keys.
func (c *Config) applyEnv() {
	c.Backend.URL = getEnv("BACKEND_URL", c.Backend.URL)
	c.Backend.Database = getEnv("BACKEND_DB", c.Backend.Database)
	c.Backend.Login = getEnv("BACKEND_USER", c.Backend.Login)
	c.Backend.Password = getEnv("BACKEND_PASSWORD", c.Backend.Password)

	c.Tracker.APIURL = getEnv("TRACKER_API_URL", c.Tracker.APIURL)
	c.Tracker.ReportsURL = getEnv("TRACKER_REPORTS_URL", c.Tracker.ReportsURL)
	c.Tracker.Token = getEnv("TRACKER_API_TOKEN", c.Tracker.Token)
	c.Tracker.Workspace = getEnv("TRACKER_WORKSPACE", c.Tracker.Workspace)
	c.Tracker.UserAgent = getEnv("TRACKER_USER_AGENT", c.Tracker.UserAgent)

	c.Journal.DSN = getEnv("JOURNAL_DSN", c.Journal.DSN)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend URL must be specified (BACKEND_URL)")
	}
	if c.Backend.Database == "" {
		return fmt.Errorf("backend database must be specified (BACKEND_DB)")
	}
	if c.Backend.Login == "" {
		return fmt.Errorf("backend user must be specified (BACKEND_USER)")
	}
	if c.Backend.Password == "" {
		return fmt.Errorf("backend password must be specified (BACKEND_PASSWORD)")
	}

	if c.Tracker.APIURL == "" || c.Tracker.ReportsURL == "" {
		return fmt.Errorf("tracker API and reports URLs must be specified")
	}
	if c.Tracker.Token == "" {
		return fmt.Errorf("tracker API token must be specified (TRACKER_API_TOKEN)")
	}
	if c.Tracker.Workspace == "" {
		return fmt.Errorf("tracker workspace must be specified (TRACKER_WORKSPACE)")
	}
	if c.Tracker.UserAgent == "" {
		return fmt.Errorf("tracker user agent must be specified (TRACKER_USER_AGENT), the reports API requires it")
	}

	if c.Sync.RoundingMinutes <= 0 {
		return fmt.Errorf("sync rounding_minutes must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
