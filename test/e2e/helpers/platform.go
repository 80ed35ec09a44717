//go:build integration

package helpers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/txn2/sim-platform/internal/server"
	"github.com/txn2/sim-platform/pkg/platform"
)

// Test API key values used across e2e tests.
const (
	RunnerAPIKey  = "e2e-runner-key-secret-value"
	RunnerSubject = "e2e-runner"
)

// --- Config builders ---

// baseConfig returns a config with the common e2e settings.
func baseConfig(e2eCfg *E2EConfig) *platform.Config {
	cfg := platform.DefaultConfig()
	cfg.Server.Name = "e2e-sim-platform"
	cfg.Sessions.TTL = e2eCfg.SessionTTL
	cfg.Logging.Level = "warn"
	return cfg
}

// MemoryConfig returns a config backed by the in-memory session store.
func MemoryConfig(e2eCfg *E2EConfig) *platform.Config {
	return baseConfig(e2eCfg)
}

// PostgresConfig returns a config backed by the database session store.
func PostgresConfig(e2eCfg *E2EConfig, dsn string) *platform.Config {
	cfg := baseConfig(e2eCfg)
	cfg.Sessions.Store = platform.StorePostgres
	cfg.Database.DSN = dsn
	return cfg
}

// APIKeyConfig returns a memory-backed config with API key auth enabled.
func APIKeyConfig(e2eCfg *E2EConfig) *platform.Config {
	cfg := baseConfig(e2eCfg)
	cfg.Auth.Mode = "api_key"
	cfg.Auth.Keys = map[string]string{RunnerAPIKey: RunnerSubject}
	return cfg
}

// --- Platform and server ---

// StartTestServer builds a platform from cfg, starts it, and serves the full
// HTTP stack through an httptest server. Everything is torn down with the test.
func StartTestServer(t *testing.T, cfg *platform.Config) (*platform.Platform, *httptest.Server) {
	t.Helper()

	p, err := platform.New(platform.WithConfig(cfg))
	if err != nil {
		t.Fatalf("creating platform: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("closing platform: %v", err)
		}
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("starting platform: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = p.Stop(ctx)
	})

	srv := server.New(cfg.Server, p.Handler(), p.Health())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return p, ts
}

// --- PostgreSQL container ---

// StartPostgres starts a PostgreSQL testcontainer and returns its DSN.
// The container is automatically terminated when the test completes.
func StartPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("simdb"),
		postgres.WithUsername("sim"),
		postgres.WithPassword("sim"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting postgres connection string: %v", err)
	}
	return dsn
}

// PostgresDSN resolves the database for postgres-backed tests: an external
// instance when E2E_POSTGRES_DSN is set, a throwaway container otherwise.
func PostgresDSN(t *testing.T, e2eCfg *E2EConfig) string {
	t.Helper()

	if e2eCfg.HasExternalPostgres() {
		ctx, cancel := context.WithTimeout(context.Background(), e2eCfg.Timeout)
		defer cancel()
		if err := WaitForPostgres(ctx, e2eCfg.PostgresDSN, DefaultWaitConfig()); err != nil {
			t.Fatalf("postgres not ready: %v", err)
		}
		return e2eCfg.PostgresDSN
	}
	return StartPostgres(t)
}
