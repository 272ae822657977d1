package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timeclerk.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// validConfig returns a config that passes Validate, for tests that knock out
// one field at a time.
func validConfig() *Config {
	config := DefaultConfig()
	config.Backend.URL = "https://erp.example.com"
	config.Backend.Database = "production"
	config.Backend.Login = "alice"
	config.Backend.Password = "wonderland"
	config.Tracker.Token = "secret-token"
	config.Tracker.Workspace = "Company"
	config.Tracker.UserAgent = "timeclerk <dev@example.com>"
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "https://www.toggl.com/api/v8", config.Tracker.APIURL)
	assert.Equal(t, "https://toggl.com/reports/api/v2", config.Tracker.ReportsURL)
	assert.Equal(t, 15, config.Sync.RoundingMinutes)
	assert.False(t, config.Sync.RequireFullDay)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Empty(t, config.Journal.DSN)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
[backend]
url = "https://erp.example.com"
database = "production"

[tracker]
workspace = "Company"
user_agent = "timeclerk <dev@example.com>"

[sync]
rounding_minutes = 30
require_full_day = true

[journal]
dsn = "timeclerk.db"

[logging]
level = "debug"
format = "json"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com", config.Backend.URL)
	assert.Equal(t, "production", config.Backend.Database)
	assert.Equal(t, "Company", config.Tracker.Workspace)
	assert.Equal(t, 30, config.Sync.RoundingMinutes)
	assert.True(t, config.Sync.RequireFullDay)
	assert.Equal(t, "timeclerk.db", config.Journal.DSN)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	// File values must not disturb untouched defaults.
	assert.Equal(t, "https://www.toggl.com/api/v8", config.Tracker.APIURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
[backend]
url = "https://stale.example.com"
database = "staging"
`)

	t.Setenv("BACKEND_URL", "https://erp.example.com")
	t.Setenv("BACKEND_DB", "production")
	t.Setenv("BACKEND_USER", "alice")
	t.Setenv("BACKEND_PASSWORD", "wonderland")
	t.Setenv("TRACKER_API_TOKEN", "secret-token")
	t.Setenv("TRACKER_WORKSPACE", "Company")
	t.Setenv("TRACKER_USER_AGENT", "timeclerk <dev@example.com>")
	t.Setenv("JOURNAL_DSN", "audit.db")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com", config.Backend.URL)
	assert.Equal(t, "production", config.Backend.Database)
	assert.Equal(t, "alice", config.Backend.Login)
	assert.Equal(t, "wonderland", config.Backend.Password)
	assert.Equal(t, "secret-token", config.Tracker.Token)
	assert.Equal(t, "Company", config.Tracker.Workspace)
	assert.Equal(t, "audit.db", config.Journal.DSN)

	require.NoError(t, config.Validate())
}

// Credentials have no TOML keys; a config file cannot carry them.
func TestLoadConfig_FileCannotSetCredentials(t *testing.T) {
	path := writeConfigFile(t, `
[backend]
password = "leaked"

[tracker]
token = "leaked"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Empty(t, config.Backend.Password)
	assert.Empty(t, config.Tracker.Token)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*Config)
	}{
		{"missing backend url", func(c *Config) { c.Backend.URL = "" }},
		{"missing backend database", func(c *Config) { c.Backend.Database = "" }},
		{"missing backend user", func(c *Config) { c.Backend.Login = "" }},
		{"missing backend password", func(c *Config) { c.Backend.Password = "" }},
		{"missing tracker urls", func(c *Config) { c.Tracker.APIURL = "" }},
		{"missing tracker token", func(c *Config) { c.Tracker.Token = "" }},
		{"missing tracker workspace", func(c *Config) { c.Tracker.Workspace = "" }},
		{"missing tracker user agent", func(c *Config) { c.Tracker.UserAgent = "" }},
		{"zero rounding", func(c *Config) { c.Sync.RoundingMinutes = 0 }},
		{"negative rounding", func(c *Config) { c.Sync.RoundingMinutes = -15 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := validConfig()
			test.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
