// Package config loads the engine's environment-variable configuration.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds every environment-derived setting the engine and the
// management API need. No other configuration source is honored.
type Config struct {
	ListenAddr string

	StoreDriver string // "sqlite" or "postgres"
	StorePath   string // sqlite file path
	StoreURL    string // postgres connection URL
	StoreName   string // logical database name; loaded but not passed to the store

	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SMTPFromAddress string
	SMTPFromName    string

	TickInterval    time.Duration
	DefaultInterval time.Duration
	DefaultTimeout  time.Duration
	WorkerCount     int
}

// Default returns the baseline configuration before environment
// overrides are applied.
func Default() Config {
	return Config{
		ListenAddr:      ":8090",
		StoreDriver:     "sqlite",
		StorePath:       "pulse.db",
		StoreName:       "pulse",
		SMTPPort:        465,
		SMTPFromAddress: "alerts@localhost",
		SMTPFromName:    "Pulse Monitoring",
		TickInterval:    30 * time.Second,
		DefaultInterval: 300 * time.Second,
		DefaultTimeout:  10 * time.Second,
		WorkerCount:     50,
	}
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	cfg := Default()

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = v
	}
	if v := os.Getenv("STORE_URL"); v != "" {
		cfg.StoreURL = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("STORE_NAME"); v != "" {
		cfg.StoreName = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		var p int
		if _, err := fmt.Sscanf(v, "%d", &p); err != nil {
			return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTPPassword = v
	}
	if v := os.Getenv("SMTP_FROM_ADDRESS"); v != "" {
		cfg.SMTPFromAddress = v
	}
	if v := os.Getenv("SMTP_FROM_NAME"); v != "" {
		cfg.SMTPFromName = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		cfg.TickInterval = d
	}
	if v := os.Getenv("DEFAULT_CHECK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEFAULT_CHECK_INTERVAL: %w", err)
		}
		cfg.DefaultInterval = d
	}
	if v := os.Getenv("DEFAULT_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEFAULT_PROBE_TIMEOUT: %w", err)
		}
		cfg.DefaultTimeout = d
	}

	return cfg, nil
}
