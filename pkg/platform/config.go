// Package platform assembles the simulation runtime from configuration.
package platform

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txn2/sim-platform/pkg/api"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds the complete platform configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     api.AuthConfig `yaml:"auth"`
	Sessions SessionsConfig `yaml:"sessions"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TLS             TLSConfig     `yaml:"tls"`
}

// TLSConfig configures TLS.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SessionsConfig configures session storage and expiry.
type SessionsConfig struct {
	Store           string        `yaml:"store"` // "memory", "postgres"
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DatabaseConfig configures the database connection.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text"
}

// LoadConfig loads configuration from a file.
// The path is expected to come from command line arguments, controlled by the administrator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns a configuration suitable for local development: an
// in-memory session store behind an open endpoint.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "sim-platform"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "1.0.0"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Sessions.Store == "" {
		cfg.Sessions.Store = StoreMemory
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = 30 * time.Minute
	}
	if cfg.Sessions.CleanupInterval == 0 {
		cfg.Sessions.CleanupInterval = 5 * time.Minute
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	switch c.Sessions.Store {
	case StoreMemory, StorePostgres:
	default:
		errs = append(errs, fmt.Sprintf("sessions.store must be %q or %q", StoreMemory, StorePostgres))
	}
	if c.Sessions.Store == StorePostgres && c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required when sessions.store is \"postgres\"")
	}
	if c.Sessions.TTL < 0 {
		errs = append(errs, "sessions.ttl must not be negative")
	}
	if c.Sessions.CleanupInterval < 0 {
		errs = append(errs, "sessions.cleanup_interval must not be negative")
	}

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			errs = append(errs, "server.tls.cert_file and server.tls.key_file are required when TLS is enabled")
		}
	}

	switch c.Auth.Mode {
	case "", api.AuthModeNone:
	case api.AuthModeAPIKey:
		if len(c.Auth.Keys) == 0 {
			errs = append(errs, "auth.keys is required when auth.mode is \"api_key\"")
		}
	case api.AuthModeBearer:
		if c.Auth.JWTSigningKey == "" {
			errs = append(errs, "auth.jwt_signing_key is required when auth.mode is \"bearer\"")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown auth.mode: %q", c.Auth.Mode))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
