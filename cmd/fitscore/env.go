package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/logging"
	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/config"
	"github.com/fitscore/fitscore/pkg/scoring"
	"github.com/fitscore/fitscore/pkg/surface"
)

// env bundles what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
}

// loadConfig reads env files, the config file and FITSCORE_* overrides.
// Without an explicit path the config file is searched upward from cwd.
func loadConfig(path string) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	if err := config.LoadEnvFiles(config.DefaultEnvFiles(cwd)...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(firstNonEmpty(path, config.FindConfigFile(cwd)))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openEnv loads the configuration and connects to the database. The caller
// closes the store.
func openEnv(ctx context.Context, configPath string) (*env, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New("fitscore", cfg.Log, os.Stderr)
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: st}, nil
}

func (e *env) Close() error { return e.store.Close() }

func (e *env) engine() (*scoring.Engine, error) {
	opts, err := e.cfg.Scoring.EngineOptions()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(e.store, scoring.WithOptions(opts), scoring.WithLogger(e.logger)), nil
}

func (e *env) blobs(ctx context.Context) (blob.StorageClient, error) {
	return blob.New(ctx, e.cfg.Storage)
}

// rendererFor maps an --output value to a report renderer.
func rendererFor(format string) (surface.Renderer, error) {
	switch format {
	case "text", "":
		return &surface.TerminalRenderer{}, nil
	case "json":
		return &surface.JSONRenderer{}, nil
	case "markdown", "md":
		return &surface.MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or markdown)", format)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
