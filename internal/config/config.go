// Package config reads the dashboard's settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/homelabdash/homelabdash/internal/database"
)

// SourceMode selects where the dashboard gets its records.
type SourceMode string

const (
	SourceStatic   SourceMode = "static"
	SourceFetch    SourceMode = "fetch"
	SourceDatabase SourceMode = "database"
)

// ErrInvalidSourceMode is returned for an unknown DASHBOARD_SOURCE.
var ErrInvalidSourceMode = errors.New("invalid DASHBOARD_SOURCE")

// Valid reports whether m is a known mode.
func (m SourceMode) Valid() bool {
	switch m {
	case SourceStatic, SourceFetch, SourceDatabase:
		return true
	}
	return false
}

// Telemetry controls the OpenTelemetry exporters.
type Telemetry struct {
	Enabled      bool   `env:"OTEL_ENABLED"                envDefault:"false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

// Config is the full process configuration.
type Config struct {
	Port        string     `env:"APP_PORT"             envDefault:"8080"`
	Environment string     `env:"APP_ENV"              envDefault:"development"`
	LogLevel    string     `env:"LOG_LEVEL"            envDefault:"info"`
	SourceMode  SourceMode `env:"DASHBOARD_SOURCE"     envDefault:"fetch"`
	SourceURL   string     `env:"DASHBOARD_SOURCE_URL"`
	ConfigDir   string     `env:"CONFIG_DIR"           envDefault:"config"`
	RequireTLS  bool       `env:"REQUIRE_TLS"          envDefault:"false"`

	// LogFile receives the terminal UI's logs. Empty discards them.
	LogFile string `env:"DASHBOARD_LOG_FILE"`

	Telemetry Telemetry
	Database  database.Config
}

// Load parses the environment and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.withDefaults()
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if !c.SourceMode.Valid() {
		return Config{}, fmt.Errorf("%w: %q (want static, fetch or database)", ErrInvalidSourceMode, c.SourceMode)
	}
	if c.SourceURL == "" {
		c.SourceURL = "http://localhost:" + c.Port
	}
	return c, nil
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
