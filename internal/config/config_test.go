package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "127.0.0.1", "port": 9090},
		"database": {
			"driver": "pgx",
			"host": "db", "port": 5432,
			"user": "u", "password": "p", "dbname": "d", "sslmode": "disable",
			"migrations_path": "migrations"
		},
		"redis": {"host": "cache", "port": 6379, "db": 1},
		"sales": {"commit_retry_attempts": 5},
		"rate_limit": {"enabled": true, "requests_per_minute": 30, "sweep_seconds": 10}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("unexpected server port: %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "pgx" {
		t.Fatalf("unexpected driver: %q", cfg.Database.Driver)
	}
	if cfg.Sales.CommitRetryAttempts != 5 {
		t.Fatalf("unexpected retry attempts: %d", cfg.Sales.CommitRetryAttempts)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerMinute != 30 {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "0.0.0.0", "port": 8080},
		"database": {"host": "db", "port": 5432, "user": "u", "password": "p", "dbname": "d", "sslmode": "disable"}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected default driver postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Sales.CommitRetryAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.Sales.CommitRetryAttempts)
	}
	if cfg.RateLimit.RequestsPerMinute != 120 || cfg.RateLimit.SweepSeconds != 60 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("rate limiting should stay off unless enabled")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432,
		User: "u", Password: "p", DBName: "d", SSLMode: "disable",
	}

	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
