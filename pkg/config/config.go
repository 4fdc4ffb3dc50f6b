// Package config provides unified configuration for the vorlage server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (VORLAGE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the vorlage server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// AuthConfig holds credential and rate limit settings.
type AuthConfig struct {
	// SessionTTL sets the session cookie Max-Age. Zero issues a browser
	// session cookie.
	SessionTTL time.Duration `yaml:"session_ttl"` // default: 720h (30 days)

	// SecureCookies marks the session cookie Secure. Disable only for
	// plain-HTTP development setups.
	SecureCookies bool `yaml:"secure_cookies"` // default: true

	// RequestsPerMinute is the per-user rate limit budget. Zero disables
	// rate limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"` // default: 0 (off)

	// LoginRequestsPerMinute is a separate per-address budget for the
	// anonymous credential endpoints (login, register), where every request
	// is a guess. Zero disables it.
	LoginRequestsPerMinute int `yaml:"login_requests_per_minute"` // default: 0 (off)
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds log level and debug category settings. The VORLAGE_DEBUG
// and VORLAGE_LOG_LEVEL environment variables override both fields.
type LoggingConfig struct {
	Debug string `yaml:"debug"` // comma-separated debug categories
	Level string `yaml:"level"` // ERROR, WARN, INFO, DEBUG, TRACE
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Auth: AuthConfig{
			SessionTTL:    30 * 24 * time.Hour,
			SecureCookies: true,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
}
