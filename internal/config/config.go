// Package config loads service settings from the environment through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort  string
	LogLevel string

	LocalDBDriver string
	LocalDBDSN    string

	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string

	JWTSecret    string
	PhoneHashKey string
	RabbitMQURL  string

	SyncInterval time.Duration
	ProbeURL     string
	ProbeTimeout time.Duration
}

// Load reads the configuration from environment variables, falling back to
// development defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LocalDBDriver:    v.GetString("LOCAL_DB_DRIVER"),
		LocalDBDSN:       v.GetString("LOCAL_DB_DSN"),
		SurrealURL:       v.GetString("SURREALDB_URL"),
		SurrealNamespace: v.GetString("SURREALDB_NAMESPACE"),
		SurrealDatabase:  v.GetString("SURREALDB_DATABASE"),
		SurrealUser:      v.GetString("SURREALDB_USER"),
		SurrealPass:      v.GetString("SURREALDB_PASS"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		PhoneHashKey:     v.GetString("PHONE_HASH_KEY"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		SyncInterval:     v.GetDuration("SYNC_INTERVAL"),
		ProbeURL:         v.GetString("PROBE_URL"),
		ProbeTimeout:     v.GetDuration("PROBE_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOCAL_DB_DRIVER", "sqlite")
	v.SetDefault("LOCAL_DB_DSN", "user.db?_busy_timeout=5000&_journal_mode=WAL")
	v.SetDefault("SURREALDB_URL", "")
	v.SetDefault("SURREALDB_NAMESPACE", "travel")
	v.SetDefault("SURREALDB_DATABASE", "buddy")
	v.SetDefault("SURREALDB_USER", "")
	v.SetDefault("SURREALDB_PASS", "")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("PHONE_HASH_KEY", "change-me-too")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SYNC_INTERVAL", 5*time.Minute)
	v.SetDefault("PROBE_URL", "https://www.google.com")
	v.SetDefault("PROBE_TIMEOUT", 5*time.Second)
}

func (c *Config) validate() error {
	var errs []error
	switch c.LocalDBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("LOCAL_DB_DRIVER must be sqlite or postgres, got %q", c.LocalDBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.PhoneHashKey == "" || len(c.PhoneHashKey) > 64 {
		errs = append(errs, errors.New("PHONE_HASH_KEY must be 1 to 64 bytes"))
	}
	if c.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", c.SyncInterval))
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PROBE_TIMEOUT must be positive, got %s", c.ProbeTimeout))
	}
	return errors.Join(errs...)
}
