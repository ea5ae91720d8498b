// Package config handles configuration loading for ledgersync.
//
// Values are read from an optional YAML file and from environment
// variables prefixed with LEDGERSYNC_ (environment wins).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Schedule holds the cron fields shared by every scheduled job.
// Each field accepts standard cron syntax ("*", "*/4", "30", ...).
type Schedule struct {
	Second    string
	Minute    string
	Hour      string
	Day       string
	Month     string
	DayOfWeek string
}

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port
	HTTPPort int

	// Log level: debug, info, warn, error
	LogLevel string

	// API key required by the operator endpoints
	APIKey string

	// OTLP endpoint for trace export; empty disables tracing export
	OTELEndpoint string

	// Accounting provider OAuth credentials
	ProviderClientID     string
	ProviderClientSecret string
	ProviderTokenURL     string
	ProviderScope        string

	// Accounting provider API base URL
	ProviderBaseURL string

	// Downstream processing service
	BrainBaseURL string
	BrainAPIKey  string

	// Hard deadline for a single job body run
	JobTimeout time.Duration

	// Cron schedule applied to every job
	Schedule Schedule
}

// Load reads configuration from the given file path (optional) and the
// environment. A missing file is only an error when a path was given
// explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 6180)
	v.SetDefault("log_level", "info")
	v.SetDefault("job_timeout", "5m")
	v.SetDefault("provider_token_url", "https://identity.xero.com/connect/token")
	v.SetDefault("provider_base_url", "https://api.xero.com/api.xro/2.0")
	v.SetDefault("schedule.second", "0")
	v.SetDefault("schedule.minute", "0")
	v.SetDefault("schedule.hour", "*/4")
	v.SetDefault("schedule.day", "*")
	v.SetDefault("schedule.month", "*")
	v.SetDefault("schedule.day_of_week", "*")

	v.SetEnvPrefix("LEDGERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ledgersync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// No config file is fine; everything can come from the environment.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		DatabaseURL:          v.GetString("database_url"),
		HTTPPort:             v.GetInt("http_port"),
		LogLevel:             v.GetString("log_level"),
		APIKey:               v.GetString("api_key"),
		OTELEndpoint:         v.GetString("otel_endpoint"),
		ProviderClientID:     v.GetString("provider_client_id"),
		ProviderClientSecret: v.GetString("provider_client_secret"),
		ProviderTokenURL:     v.GetString("provider_token_url"),
		ProviderScope:        v.GetString("provider_scope"),
		ProviderBaseURL:      v.GetString("provider_base_url"),
		BrainBaseURL:         v.GetString("brain_base_url"),
		BrainAPIKey:          v.GetString("brain_api_key"),
		JobTimeout:           v.GetDuration("job_timeout"),
		Schedule: Schedule{
			Second:    v.GetString("schedule.second"),
			Minute:    v.GetString("schedule.minute"),
			Hour:      v.GetString("schedule.hour"),
			Day:       v.GetString("schedule.day"),
			Month:     v.GetString("schedule.month"),
			DayOfWeek: v.GetString("schedule.day_of_week"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.ProviderClientID == "" || c.ProviderClientSecret == "" {
		return fmt.Errorf("provider_client_id and provider_client_secret are required")
	}
	if c.BrainBaseURL == "" {
		return fmt.Errorf("brain_base_url is required")
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("job_timeout must be positive")
	}
	return nil
}

// CronSpec renders the schedule as a six-field cron expression
// (seconds first), the format the scheduler consumes.
func (s Schedule) CronSpec() string {
	return strings.Join([]string{s.Second, s.Minute, s.Hour, s.Day, s.Month, s.DayOfWeek}, " ")
}
