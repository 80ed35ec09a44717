package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/txn2/sim-platform/internal/server"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(serverOptions{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q, want %q", cfg.Server.Address, ":8080")
	}
	if cfg.Sessions.Store != "memory" {
		t.Errorf("store = %q, want %q", cfg.Sessions.Store, "memory")
	}
}

func TestLoadConfig_AddressOverride(t *testing.T) {
	cfg, err := loadConfig(serverOptions{address: "127.0.0.1:9999"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:9999" {
		t.Errorf("address = %q, want %q", cfg.Server.Address, "127.0.0.1:9999")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
server:
  address: ":9090"
sessions:
  store: memory
  ttl: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(serverOptions{configPath: path})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("address = %q, want %q", cfg.Server.Address, ":9090")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(serverOptions{configPath: "/nonexistent/config.yml"})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %q, want 'loading config'", err.Error())
	}
}

func TestLoadConfig_StampsVersion(t *testing.T) {
	cfg, err := loadConfig(serverOptions{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Version != server.Version {
		t.Errorf("version = %q, want %q", cfg.Server.Version, server.Version)
	}
}
