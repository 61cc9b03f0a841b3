package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://www.strava.com/api/v3", cfg.Strava.BaseURL)
	assert.Equal(t, 15, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.RetryAfterFallback)
	assert.Equal(t, time.Duration(0), cfg.RateLimit.MaxThrottleWait)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STRAVA_ACCESS_TOKEN", "env-token")
	t.Setenv("STRAVADUMP_RPM", "30")
	t.Setenv("STRAVADUMP_OUTPUT_DIR", "/tmp/out")
	t.Setenv("STRAVADUMP_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.Strava.AccessToken)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "/tmp/out", cfg.Output.BaseDirectory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidRPM(t *testing.T) {
	t.Setenv("STRAVADUMP_RPM", "not-a-number")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	content := `
strava:
  base_url: https://example.com/api/v3
  request_timeout: 30s
rate_limit:
  requests_per_minute: 10
  max_throttle_wait: 5m
output:
  base_directory: ./dumps
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "https://example.com/api/v3", cfg.Strava.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Strava.RequestTimeout)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.MaxThrottleWait)
	assert.Equal(t, "./dumps", cfg.Output.BaseDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Strava.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.Strava.RequestTimeout = 0 }},
		{"zero rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"negative throttle wait", func(c *Config) { c.RateLimit.MaxThrottleWait = -time.Second }},
		{"zero fallback", func(c *Config) { c.RateLimit.RetryAfterFallback = 0 }},
		{"empty output dir", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFlagPrecedence(t *testing.T) {
	t.Setenv("STRAVADUMP_RPM", "30")

	cfg, err := Load("", map[string]interface{}{
		"rpm":    45,
		"output": "/tmp/flagged",
	})
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.RateLimit.RequestsPerMinute, "flags override environment")
	assert.Equal(t, "/tmp/flagged", cfg.Output.BaseDirectory)
}
