package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the extractor.
type Config struct {
	// Strava API settings
	Strava StravaConfig `yaml:"strava" json:"strava"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StravaConfig holds Strava-specific configuration.
type StravaConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	AccessToken    string        `yaml:"access_token" json:"access_token"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RateLimitConfig holds request pacing and throttle handling configuration.
type RateLimitConfig struct {
	RequestsPerMinute  int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	RetryAfterFallback time.Duration `yaml:"retry_after_fallback" json:"retry_after_fallback"`
	MaxThrottleWait    time.Duration `yaml:"max_throttle_wait" json:"max_throttle_wait"`
}

// OutputConfig holds output directory configuration.
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults. The rate
// defaults mirror Strava's published non-upload limits.
func DefaultConfig() *Config {
	return &Config{
		Strava: StravaConfig{
			BaseURL:        "https://www.strava.com/api/v3",
			RequestTimeout: 60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute:  15,
			RetryAfterFallback: 10 * time.Second,
			MaxThrottleWait:    0, // 0 means no ceiling
		},
		Output: OutputConfig{
			BaseDirectory: "./data/strava",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration overrides from environment variables.
// A .env file in the working directory is honored if present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if token := os.Getenv("STRAVA_ACCESS_TOKEN"); token != "" {
		c.Strava.AccessToken = token
	}
	if baseURL := os.Getenv("STRAVADUMP_BASE_URL"); baseURL != "" {
		c.Strava.BaseURL = baseURL
	}
	if rpm := os.Getenv("STRAVADUMP_RPM"); rpm != "" {
		v, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid STRAVADUMP_RPM: %w", err)
		}
		c.RateLimit.RequestsPerMinute = v
	}
	if dir := os.Getenv("STRAVADUMP_OUTPUT_DIR"); dir != "" {
		c.Output.BaseDirectory = dir
	}
	if level := os.Getenv("STRAVADUMP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("STRAVADUMP_LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyFlags applies command line flag overrides to the configuration.
func (c *Config) applyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "token":
			if v, ok := value.(string); ok {
				c.Strava.AccessToken = v
			}
		case "base-url":
			if v, ok := value.(string); ok {
				c.Strava.BaseURL = v
			}
		case "rpm":
			if v, ok := value.(int); ok {
				c.RateLimit.RequestsPerMinute = v
			}
		case "max-throttle-wait":
			if v, ok := value.(time.Duration); ok {
				c.RateLimit.MaxThrottleWait = v
			}
		case "output":
			if v, ok := value.(string); ok {
				c.Output.BaseDirectory = v
			}
		case "log-level":
			if v, ok := value.(string); ok {
				c.Logging.Level = v
			}
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Strava.BaseURL == "" {
		return fmt.Errorf("strava base URL cannot be empty")
	}
	if c.Strava.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be at least 1")
	}
	if c.RateLimit.RetryAfterFallback <= 0 {
		return fmt.Errorf("retry-after fallback must be positive")
	}
	if c.RateLimit.MaxThrottleWait < 0 {
		return fmt.Errorf("max throttle wait cannot be negative")
	}
	if c.Output.BaseDirectory == "" {
		return fmt.Errorf("output base directory cannot be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Load creates a configuration by combining defaults, an optional config
// file, environment variables, and command line flags, in increasing order
// of precedence.
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.applyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
