package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setValidEnv sets the minimum environment needed for a valid configuration.
func setValidEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "profile")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "profile")
	t.Setenv("DB_USER", "profile")
	t.Setenv("DB_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "profile", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "development", cfg.Service.Env)
	assert.Equal(t, "profile", cfg.Tracing.ServiceName)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadinessDrainDelay)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadClampsDurations(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "5m")
	t.Setenv("READINESS_DRAIN_DELAY", "20s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20*time.Second, cfg.ReadinessDrainDelay)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OTEL_SAMPLE_RATE", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Service:  ServiceConfig{Name: "unknown", Port: "http", Env: "moon"},
		Tracing:  TracingConfig{Enabled: true, SampleRate: 2},
		Logging:  LoggingConfig{Level: "trace", Format: "xml"},
		Database: DatabaseConfig{Port: "5432", MaxConnections: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"SERVICE_NAME is required",
		"PORT must be a valid number",
		"ENV must be one of",
		"OTEL_COLLECTOR_ENDPOINT is required",
		"OTEL_SAMPLE_RATE must be between",
		"LOG_LEVEL must be one of",
		"LOG_FORMAT must be one of",
		"DB_HOST is required",
		"DB_PASSWORD is required",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestBuildDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", Name: "profile", User: "u", Password: "p",
		SSLMode: "disable", MaxConnections: 10,
	}

	assert.Equal(t, "postgresql://u:p@db:5432/profile?sslmode=disable&pool_max_conns=10", db.BuildDSN())
	assert.Equal(t, "pgx5://u:p@db:5432/profile?sslmode=disable", db.BuildMigrationURL())
}

func TestIsDevelopment(t *testing.T) {
	tests := map[string]bool{
		"development": true,
		"dev":         true,
		"DEV":         true,
		"test":        false,
		"staging":     false,
		"production":  false,
	}
	for env, want := range tests {
		cfg := &Config{Service: ServiceConfig{Env: env}}
		assert.Equal(t, want, cfg.IsDevelopment(), env)
	}
}
