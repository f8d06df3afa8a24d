// Command fitscored is the FitScore HTTP service. It serves recipe
// assessment, the item catalogue, dataset administration, metrics and a
// health check.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitscore/fitscore/internal/api"
	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/dataset"
	"github.com/fitscore/fitscore/internal/logging"
	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/config"
	"github.com/fitscore/fitscore/pkg/scoring"
)

type serviceConfig struct {
	Port       string
	ConfigPath string
	APIKey     string
	Migrate    bool
}

func loadServiceConfig() serviceConfig {
	return serviceConfig{
		Port:       envOrDefault("PORT", "8080"),
		ConfigPath: os.Getenv("FITSCORE_CONFIG"),
		APIKey:     os.Getenv("FITSCORE_API_KEY"),
		Migrate:    os.Getenv("FITSCORE_AUTO_MIGRATE") != "false",
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	svcCfg := loadServiceConfig()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if err := config.LoadEnvFiles(config.DefaultEnvFiles(cwd)...); err != nil {
		return err
	}
	cfgPath := svcCfg.ConfigPath
	if cfgPath == "" {
		cfgPath = config.FindConfigFile(cwd)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.New("fitscored", cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	if svcCfg.Migrate {
		if err := st.Migrate(); err != nil {
			return err
		}
	}

	blobs, err := blob.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	opts, err := cfg.Scoring.EngineOptions()
	if err != nil {
		return err
	}
	cache := api.NewPlanCacheFromEnv()
	engine := scoring.NewEngine(st,
		scoring.WithOptions(opts),
		scoring.WithLogger(logger),
		scoring.WithPlanCache(cache),
	)

	handler := api.NewHandler(st, engine, api.Deps{
		Datasets: dataset.NewService(st, blobs, logger),
		Reports:  blobs,
		Cache:    cache,
		Logger:   logger,
	})

	var admin func(http.Handler) http.Handler
	if svcCfg.APIKey != "" {
		admin = api.APIKeyAuth(svcCfg.APIKey)
	} else {
		logger.Warn("FITSCORE_API_KEY not set; admin routes are unauthenticated")
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, admin)

	srv := &http.Server{
		Addr:              ":" + svcCfg.Port,
		Handler:           api.CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting fitscored", "port", svcCfg.Port, "db", st.Driver(), "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
