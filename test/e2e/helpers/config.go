//go:build integration

// Package helpers provides test utilities for E2E testing.
package helpers

import (
	"os"
	"time"
)

// E2EConfig holds configuration for E2E tests.
type E2EConfig struct {
	// PostgreSQL configuration. When the DSN is empty the tests start a
	// throwaway container instead.
	PostgresDSN string

	// Test configuration
	SessionTTL time.Duration
	Timeout    time.Duration
}

// DefaultE2EConfig returns E2E configuration from environment variables with defaults.
func DefaultE2EConfig() *E2EConfig {
	return &E2EConfig{
		PostgresDSN: getEnv("E2E_POSTGRES_DSN", ""),
		SessionTTL:  getEnvDuration("E2E_SESSION_TTL", 5*time.Minute),
		Timeout:     getEnvDuration("E2E_TIMEOUT", 30*time.Second),
	}
}

// HasExternalPostgres reports whether an externally managed database was
// provided via E2E_POSTGRES_DSN.
func (c *E2EConfig) HasExternalPostgres() bool {
	return c.PostgresDSN != ""
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
