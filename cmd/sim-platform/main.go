// Package main provides the entry point for the sim-platform server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/txn2/sim-platform/internal/server"
	"github.com/txn2/sim-platform/pkg/platform"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	address     string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.address, "address", "", "Listen address, overrides configuration")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func loadConfig(opts serverOptions) (*platform.Config, error) {
	cfg := platform.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = platform.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	cfg.Server.Version = server.Version
	return cfg, nil
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("sim-platform version %s\n", server.Version)
		return nil
	}

	ctx := setupSignalHandler()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	p, err := platform.New(platform.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("creating platform: %w", err)
	}
	defer func() { _ = p.Close() }()

	srv := server.New(cfg.Server, p.Handler(), p.Health())
	p.Lifecycle().RegisterComponent(srv)

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("starting platform: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := p.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping platform: %w", err)
	}
	return nil
}
