package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Scoring.DefaultScheme != "delphi_r0110" {
		t.Errorf("expected default scheme delphi_r0110, got %q", cfg.Scoring.DefaultScheme)
	}
	if len(cfg.Scoring.Stages) != 4 {
		t.Errorf("expected 4 default stages, got %d", len(cfg.Scoring.Stages))
	}
	if cfg.Storage.Backend != StorageLocal {
		t.Errorf("expected local storage, got %q", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "non-existent file returns defaults",
			yaml: "", // signal: don't create a file
			check: func(t *testing.T, cfg *Config) {
				if cfg.Database.DSN != "FIT.db" {
					t.Errorf("expected default dsn, got %q", cfg.Database.DSN)
				}
			},
		},
		{
			name: "valid YAML overrides defaults",
			yaml: `
database:
  driver: postgres
  dsn: "postgres://fit@localhost/fit?sslmode=disable"
scoring:
  default_scheme: ef31_nr
  stages: [1, 2, 3]
  workers: 2
  weight_by_amount: true
storage:
  backend: s3
  bucket: fit-datasets
log:
  level: debug
  json: true
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Database.Driver != DriverPostgres {
					t.Errorf("expected postgres driver, got %q", cfg.Database.Driver)
				}
				if cfg.Scoring.DefaultScheme != "ef31_nr" {
					t.Errorf("expected scheme ef31_nr, got %q", cfg.Scoring.DefaultScheme)
				}
				opts, err := cfg.Scoring.EngineOptions()
				if err != nil {
					t.Fatalf("EngineOptions() error: %v", err)
				}
				if len(opts.Stages) != 3 || opts.Workers != 2 || !opts.WeightByAmount {
					t.Errorf("unexpected engine options %+v", opts)
				}
				if cfg.Storage.Bucket != "fit-datasets" {
					t.Errorf("expected bucket, got %q", cfg.Storage.Bucket)
				}
				if !cfg.Log.JSON || cfg.Log.Level != "debug" {
					t.Errorf("unexpected log config %+v", cfg.Log)
				}
				if err := cfg.Validate(); err != nil {
					t.Errorf("Validate() error: %v", err)
				}
			},
		},
		{
			name:    "invalid YAML returns error",
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if tc.yaml != "" {
				if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}

			cfg, err := Load(path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "dsn is required"},
		{"gcs without bucket", func(c *Config) { c.Storage.Backend = StorageGCS }, "requires a bucket"},
		{"unknown scheme", func(c *Config) { c.Scoring.DefaultScheme = "nope" }, "default_scheme"},
		{"bad stage", func(c *Config) { c.Scoring.Stages = []int{7} }, "scoring.stages"},
		{"no stages", func(c *Config) { c.Scoring.Stages = nil }, "must not be empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDatabaseURL: "postgres://fit@db/fit",
		EnvLogLevel:    "warn",
		EnvLogJSON:     "true",
		EnvBucket:      "reports",
		EnvS3AccessKey: "AKIA",
		EnvS3SecretKey: "secret",
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != env[EnvDatabaseURL] {
		t.Errorf("database not overridden: %+v", cfg.Database)
	}
	if cfg.Log.Level != "warn" || !cfg.Log.JSON {
		t.Errorf("log not overridden: %+v", cfg.Log)
	}
	if cfg.Storage.Bucket != "reports" {
		t.Errorf("bucket not overridden: %q", cfg.Storage.Bucket)
	}
	if cfg.Storage.AccessKey != "AKIA" || cfg.Storage.SecretKey != "secret" {
		t.Errorf("s3 credentials not overridden: %+v", cfg.Storage)
	}

	// An explicit driver wins over the URL scheme.
	env[EnvDBDriver] = DriverSQLite
	cfg = DefaultConfig()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected explicit driver, got %q", cfg.Database.Driver)
	}

	env[EnvLogJSON] = "maybe"
	if err := DefaultConfig().ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("expected error for non-boolean log json")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	envFile := filepath.Join(root, "config", "database.env")
	if err := os.WriteFile(envFile, []byte("FITSCORE_TEST_DSN=file.db\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FITSCORE_TEST_DSN") })

	// debug.env is absent and must be skipped.
	if err := LoadEnvFiles(DefaultEnvFiles(root)...); err != nil {
		t.Fatalf("LoadEnvFiles() error: %v", err)
	}
	if got := os.Getenv("FITSCORE_TEST_DSN"); got != "file.db" {
		t.Errorf("expected FITSCORE_TEST_DSN=file.db, got %q", got)
	}
}

func TestDirectoryFunctions(t *testing.T) {
	cache := CacheDir()
	if !strings.HasSuffix(cache, filepath.Join(".cache", "fitscore")) {
		t.Errorf("CacheDir should end with .cache/fitscore, got %q", cache)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("found in parent directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".fitscore")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		sub := filepath.Join(root, "a", "b", "c")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("create sub: %v", err)
		}

		if got := FindConfigFile(sub); got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
