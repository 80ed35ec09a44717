package platform

import (
	"database/sql"

	"github.com/txn2/sim-platform/pkg/api"
	"github.com/txn2/sim-platform/pkg/registry"
	"github.com/txn2/sim-platform/pkg/session"
)

// Options configures the platform.
type Options struct {
	// Config is the platform configuration.
	Config *Config

	// DB is the database connection (optional, opened from config if not
	// provided).
	DB *sql.DB

	// SessionStore (optional, created from config if not provided).
	SessionStore session.Store

	// Registry (optional, the built-in model catalog if not provided).
	Registry *registry.Registry

	// AuthMiddleware (optional, built from config if not provided).
	AuthMiddleware api.Middleware
}

// Option is a functional option for configuring the platform.
type Option func(*Options)

// WithConfig sets the configuration.
func WithConfig(cfg *Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithDB sets the database connection.
func WithDB(db *sql.DB) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithSessionStore sets the session store.
func WithSessionStore(store session.Store) Option {
	return func(o *Options) {
		o.SessionStore = store
	}
}

// WithRegistry sets the model registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *Options) {
		o.Registry = reg
	}
}

// WithAuthMiddleware sets the API authentication middleware.
func WithAuthMiddleware(mw api.Middleware) Option {
	return func(o *Options) {
		o.AuthMiddleware = mw
	}
}
