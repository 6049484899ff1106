// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Errors returned by Load wrap this package's sentinel errors.
package config

import (
	"context"
)

// Config contains process configuration shared by the dashboard and the
// project-health API binaries.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the dashboard HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBaseURL is the project-health API the dashboard reads from.
	// The loader requests {APIBaseURL}/project-health.
	APIBaseURL string `koanf:"api_base_url"`

	// HealthAPIAddr configures the project-health API listen address.
	HealthAPIAddr string `koanf:"health_api_addr"`

	// CatalogFile is a YAML file seeding the in-memory catalog.
	CatalogFile string `koanf:"catalog_file"`

	// DatabaseDSN switches the catalog to PostgreSQL when set.
	DatabaseDSN string `koanf:"database_dsn"`

	// DBMaxConns caps the PostgreSQL pool.
	DBMaxConns int `koanf:"db_max_conns"`

	// CORSAllowedOrigins lists origins allowed to call the project-health API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		APIBaseURL:         "http://localhost:5000",
		HealthAPIAddr:      ":5000",
		DBMaxConns:         10,
		CORSAllowedOrigins: []string{"*"},
	}
}
