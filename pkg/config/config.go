// Package config handles loading and managing FitScore configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

// Environment variables that override file configuration.
const (
	EnvDatabaseURL = "FITSCORE_DATABASE_URL"
	EnvDBDriver    = "FITSCORE_DB_DRIVER"
	EnvLogLevel    = "FITSCORE_LOG_LEVEL"
	EnvLogJSON     = "FITSCORE_LOG_JSON"
	EnvStorageDir  = "FITSCORE_STORAGE_DIR"
	EnvBucket      = "FITSCORE_BUCKET"
	EnvS3AccessKey = "FITSCORE_S3_ACCESS_KEY"
	EnvS3SecretKey = "FITSCORE_S3_SECRET_KEY"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageGCS   = "gcs"
)

// Config is the top-level configuration for FitScore.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the LCIA database.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // sqlite or postgres
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// ScoringConfig controls the scoring engine.
type ScoringConfig struct {
	DefaultScheme  string `yaml:"default_scheme"`
	Stages         []int  `yaml:"stages"`
	Workers        int    `yaml:"workers"`
	WeightByAmount bool   `yaml:"weight_by_amount"`
}

// StorageConfig controls where datasets and reports are stored.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // local, s3 or gcs
	BaseDir  string `yaml:"base_dir"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // custom S3 endpoint, e.g. MinIO

	// Static S3 credentials; the default AWS chain is used when empty.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	stages := make([]int, 0, 4)
	for _, s := range scoring.DefaultStages() {
		stages = append(stages, int(s))
	}
	return &Config{
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "FIT.db",
			MaxOpenConns: 4,
		},
		Scoring: ScoringConfig{
			DefaultScheme: string(lcia.DefaultScheme),
			Stages:        stages,
			Workers:       scoring.DefaultWorkers,
		},
		Storage: StorageConfig{
			Backend: StorageLocal,
			BaseDir: filepath.Join(CacheDir(), "blobs"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads KEY=VALUE files into the process environment.
// Missing files are skipped; variables already set are never overwritten.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// DefaultEnvFiles returns the env files read relative to dir.
func DefaultEnvFiles(dir string) []string {
	return []string{
		filepath.Join(dir, "config", "database.env"),
		filepath.Join(dir, "config", "debug.env"),
	}
}

// ApplyEnv overrides cfg with any FITSCORE_* variables returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = DriverPostgres
		}
	}
	if v := getenv(EnvDBDriver); v != "" {
		c.Database.Driver = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvLogJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvLogJSON, err)
		}
		c.Log.JSON = b
	}
	if v := getenv(EnvStorageDir); v != "" {
		c.Storage.BaseDir = v
	}
	if v := getenv(EnvBucket); v != "" {
		c.Storage.Bucket = v
	}
	if v := getenv(EnvS3AccessKey); v != "" {
		c.Storage.AccessKey = v
	}
	if v := getenv(EnvS3SecretKey); v != "" {
		c.Storage.SecretKey = v
	}
	return nil
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	switch c.Storage.Backend {
	case StorageLocal:
	case StorageS3, StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend %s requires a bucket", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if _, err := lcia.NewWeightingSchemeName(c.Scoring.DefaultScheme); err != nil {
		return fmt.Errorf("scoring.default_scheme: %w", err)
	}
	if _, err := c.Scoring.StageIDs(); err != nil {
		return err
	}
	return nil
}

// StageIDs validates and converts the configured stages.
func (s ScoringConfig) StageIDs() ([]lcia.LCStageID, error) {
	if len(s.Stages) == 0 {
		return nil, fmt.Errorf("scoring.stages must not be empty")
	}
	out := make([]lcia.LCStageID, 0, len(s.Stages))
	for _, v := range s.Stages {
		id, err := lcia.NewLCStageID(v)
		if err != nil {
			return nil, fmt.Errorf("scoring.stages: %w", err)
		}
		out = append(out, id)
	}
	return out, nil
}

// EngineOptions converts the scoring section into engine options.
func (s ScoringConfig) EngineOptions() (scoring.Options, error) {
	stages, err := s.StageIDs()
	if err != nil {
		return scoring.Options{}, err
	}
	return scoring.Options{
		Stages:         stages,
		Workers:        s.Workers,
		WeightByAmount: s.WeightByAmount,
	}, nil
}

// FindConfigFile looks for .fitscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".fitscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the per-user FitScore cache directory.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "fitscore")
}
