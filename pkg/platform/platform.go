package platform

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/txn2/sim-platform/pkg/api"
	"github.com/txn2/sim-platform/pkg/database/migrate"
	"github.com/txn2/sim-platform/pkg/health"
	"github.com/txn2/sim-platform/pkg/registry"
	"github.com/txn2/sim-platform/pkg/session"
	sessionpg "github.com/txn2/sim-platform/pkg/session/postgres"
	"github.com/txn2/sim-platform/pkg/simulation"
)

// pingTimeout bounds the connectivity check when opening the database.
const pingTimeout = 5 * time.Second

// Platform is the main runtime facade: it owns the session store, the
// model registry, the session manager, and the API handler.
type Platform struct {
	config    *Config
	lifecycle *Lifecycle

	db     *sql.DB
	ownsDB bool

	store   session.Store
	manager *simulation.Manager
	checker *health.Checker
	handler *api.Handler
}

// New creates a new platform instance.
func New(opts ...Option) (*Platform, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := options.Config.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogging(options.Config.Logging); err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	p := &Platform{
		config:    options.Config,
		lifecycle: NewLifecycle(),
		checker:   health.NewChecker(),
	}

	// Initialize components
	if err := p.initializeComponents(options); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("initializing components: %w", err)
	}

	return p, nil
}

// initializeComponents initializes all platform components.
func (p *Platform) initializeComponents(opts *Options) error {
	if err := p.initStore(opts); err != nil {
		return err
	}
	p.initManager(opts)
	return p.initHandler(opts)
}

// initStore initializes the session store from options or config.
func (p *Platform) initStore(opts *Options) error {
	if opts.SessionStore != nil {
		p.store = opts.SessionStore
		return nil
	}

	switch p.config.Sessions.Store {
	case StorePostgres:
		return p.initPostgresStore(opts)
	default:
		p.initMemoryStore()
		return nil
	}
}

// initMemoryStore initializes the in-memory session store.
func (p *Platform) initMemoryStore() {
	store := session.NewMemoryStore(p.config.Sessions.TTL)
	store.StartCleanupRoutine(p.config.Sessions.CleanupInterval)
	p.store = store
}

// initPostgresStore opens the database, applies migrations, and wires
// the database-backed session store with its health probe.
func (p *Platform) initPostgresStore(opts *Options) error {
	db := opts.DB
	if db == nil {
		var err error
		db, err = openDatabase(p.config.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		p.ownsDB = true
	}
	p.db = db

	if err := migrate.Run(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	store := sessionpg.New(db, sessionpg.Config{TTL: p.config.Sessions.TTL})
	store.StartCleanupRoutine(p.config.Sessions.CleanupInterval)
	p.store = store

	p.checker.AddProbe("database", store.Ping)
	return nil
}

// openDatabase opens and verifies the database connection.
func openDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// initManager initializes the model registry and session manager.
func (p *Platform) initManager(opts *Options) {
	reg := opts.Registry
	if reg == nil {
		reg = registry.NewWithBuiltins()
	}
	p.manager = simulation.New(reg, p.store)
}

// initHandler builds the API handler with its auth middleware.
func (p *Platform) initHandler(opts *Options) error {
	authMiddle := opts.AuthMiddleware
	if authMiddle == nil {
		var err error
		authMiddle, err = p.config.Auth.Middleware()
		if err != nil {
			return fmt.Errorf("building auth middleware: %w", err)
		}
	}
	p.handler = api.NewHandler(p.manager, authMiddle)
	return nil
}

// Start starts the platform and marks it ready to serve.
func (p *Platform) Start(ctx context.Context) error {
	if err := p.lifecycle.Start(ctx); err != nil {
		return err
	}
	p.checker.SetReady()
	slog.Info("platform started",
		"name", p.config.Server.Name,
		"version", p.config.Server.Version,
		"store", p.config.Sessions.Store,
	)
	return nil
}

// Stop drains the platform and stops its components.
func (p *Platform) Stop(ctx context.Context) error {
	p.checker.SetDraining()
	return p.lifecycle.Stop(ctx)
}

// Config returns the platform configuration.
func (p *Platform) Config() *Config {
	return p.config
}

// Manager returns the session manager.
func (p *Platform) Manager() *simulation.Manager {
	return p.manager
}

// Handler returns the API handler.
func (p *Platform) Handler() *api.Handler {
	return p.handler
}

// Health returns the health checker.
func (p *Platform) Health() *health.Checker {
	return p.checker
}

// Lifecycle returns the lifecycle manager.
func (p *Platform) Lifecycle() *Lifecycle {
	return p.lifecycle
}

// closeResource closes a resource and appends any error.
func closeResource(errs *[]error, closer Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		*errs = append(*errs, err)
	}
}

// Close closes all platform resources.
func (p *Platform) Close() error {
	var errs []error

	if p.store != nil {
		closeResource(&errs, p.store)
	}
	if p.ownsDB && p.db != nil {
		closeResource(&errs, p.db)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing platform: %v", errs)
	}
	return nil
}
