// Package config provides centralized configuration management for the profile service
// with validation, type safety, and clear documentation for SRE/DevOps teams.
//
// Configuration Sources (12-factor app principles):
//  1. Default values (envDefault struct tags)
//  2. .env file (local development via godotenv)
//  3. Environment variables (Kubernetes runtime)
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	maxShutdownTimeout     = 60 * time.Second
	maxReadinessDrainDelay = 30 * time.Second

	defaultShutdownTimeout     = 10 * time.Second
	defaultReadinessDrainDelay = 5 * time.Second
)

// Config holds all configuration for the service
type Config struct {
	Service   ServiceConfig   // Service-specific settings (port, name, version)
	Tracing   TracingConfig   // OpenTelemetry configuration
	Profiling ProfilingConfig // Pyroscope continuous profiling
	Logging   LoggingConfig   // Structured logging (Zap)
	Metrics   MetricsConfig   // Prometheus metrics
	Database  DatabaseConfig  // PostgreSQL database configuration

	// ShutdownTimeout bounds the graceful HTTP shutdown (SHUTDOWN_TIMEOUT, default 10s, max 60s).
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// ReadinessDrainDelay is the delay after failing readiness before the HTTP server stops.
	// This gives Kubernetes/Service routing time to stop sending new traffic.
	// From READINESS_DRAIN_DELAY env (default: 5s, max: 30s).
	ReadinessDrainDelay time.Duration `env:"READINESS_DRAIN_DELAY" envDefault:"5s"`
}

// ServiceConfig defines basic service configuration
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" envDefault:"unknown"` // Service name (e.g., "profile")
	Port    string `env:"PORT" envDefault:"8080"`            // HTTP server port
	Version string `env:"VERSION" envDefault:"dev"`          // Service version (optional)
	Env     string `env:"ENV" envDefault:"development"`      // Environment (dev/staging/production)
}

// TracingConfig defines OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled            bool    `env:"TRACING_ENABLED" envDefault:"true"`
	Endpoint           string  `env:"OTEL_COLLECTOR_ENDPOINT" envDefault:"otel-collector-opentelemetry-collector.monitoring.svc.cluster.local:4318"`
	SampleRate         float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
	ServiceName        string  `env:"SERVICE_NAME" envDefault:"unknown"`
	MaxExportBatchSize int     `env:"OTEL_BATCH_SIZE" envDefault:"512"`
}

// ProfilingConfig defines Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled     bool   `env:"PROFILING_ENABLED" envDefault:"false"`
	Endpoint    string `env:"PYROSCOPE_ENDPOINT" envDefault:"http://pyroscope.monitoring.svc.cluster.local:4040"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"unknown"`
}

// LoggingConfig defines structured logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, console
}

// MetricsConfig defines Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// DatabaseConfig defines PostgreSQL database configuration
// All database connections use separate environment variables (not DATABASE_URL string)
type DatabaseConfig struct {
	Host           string `env:"DB_HOST"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	Name           string `env:"DB_NAME"`
	User           string `env:"DB_USER"`
	Password       string `env:"DB_PASSWORD"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnections int    `env:"DB_POOL_MAX_CONNECTIONS" envDefault:"25"`
	// MigrateOnStart applies pending schema migrations before serving traffic.
	MigrateOnStart bool `env:"DB_MIGRATE_ON_START" envDefault:"true"`
}

// BuildDSN constructs PostgreSQL connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConnections)
}

// BuildMigrationURL constructs the golang-migrate URL (pgx/v5 driver scheme).
func (c *DatabaseConfig) BuildMigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Load reads configuration from environment variables with defaults.
// It automatically loads .env file if present (for local development).
//
// Priority: .env file < environment variables
func Load() (*Config, error) {
	// godotenv.Load() fails silently if .env doesn't exist - fine for production
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.ShutdownTimeout = clampDuration(cfg.ShutdownTimeout, defaultShutdownTimeout, maxShutdownTimeout)
	cfg.ReadinessDrainDelay = clampDuration(cfg.ReadinessDrainDelay, defaultReadinessDrainDelay, maxReadinessDrainDelay)
	return cfg, nil
}

// Validate performs comprehensive validation of all configuration fields
// Returns detailed error messages for SRE/DevOps troubleshooting
func (c *Config) Validate() error {
	var errors []string

	// Service validation
	if c.Service.Name == "" || c.Service.Name == "unknown" {
		errors = append(errors, "SERVICE_NAME is required (e.g., 'profile')")
	}
	if c.Service.Port == "" {
		errors = append(errors, "PORT is required (e.g., '8080')")
	} else if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Service.Port))
	}
	validEnvs := []string{"development", "dev", "test", "staging", "stage", "production", "prod"}
	if !contains(validEnvs, c.Service.Env) {
		errors = append(errors, fmt.Sprintf("ENV must be one of %v, got: %s", validEnvs, c.Service.Env))
	}

	// Tracing validation
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errors = append(errors, "OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			errors = append(errors, fmt.Sprintf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", c.Tracing.SampleRate))
		}
	}

	// Profiling validation
	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		errors = append(errors, "PYROSCOPE_ENDPOINT is required when profiling is enabled")
	}

	// Logging validation
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of %v, got: %s", validLogLevels, c.Logging.Level))
	}
	validLogFormats := []string{"json", "console"}
	if !contains(validLogFormats, c.Logging.Format) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of %v, got: %s", validLogFormats, c.Logging.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, fmt.Sprintf("METRICS_PATH must start with '/', got: %s", c.Metrics.Path))
	}

	// Database validation
	if c.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if c.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if c.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}
	if c.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}
	if _, err := strconv.Atoi(c.Database.Port); err != nil {
		errors = append(errors, fmt.Sprintf("DB_PORT must be a valid number, got: %s", c.Database.Port))
	}
	if c.Database.MaxConnections < 1 {
		errors = append(errors, fmt.Sprintf("DB_POOL_MAX_CONNECTIONS must be positive, got: %d", c.Database.MaxConnections))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "development" || env == "dev"
}

// clampDuration returns def for non-positive or oversized values (silent fallback for startup safety).
func clampDuration(d, def, max time.Duration) time.Duration {
	if d <= 0 || d > max {
		return def
	}
	return d
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
