package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxBodySize != 1<<20 {
		t.Errorf("MaxBodySize = %d, want 1 MiB", cfg.Server.MaxBodySize)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Auth.SessionTTL != 30*24*time.Hour {
		t.Errorf("SessionTTL = %s, want 720h", cfg.Auth.SessionTTL)
	}
	if !cfg.Auth.SecureCookies {
		t.Error("SecureCookies should default to true")
	}
	if !cfg.Observability.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
storage:
  type: postgres
  postgres:
    dsn: "postgres://localhost/vorlage"
    migrate_on_start: true
auth:
  session_ttl: 1h
  requests_per_minute: 120
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Type != "postgres" {
		t.Errorf("Storage.Type = %q, want postgres", cfg.Storage.Type)
	}
	if !cfg.Storage.Postgres.MigrateOnStart {
		t.Error("MigrateOnStart not loaded from YAML")
	}
	if cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %s, want 1h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.RequestsPerMinute != 120 {
		t.Errorf("RequestsPerMinute = %d, want 120", cfg.Auth.RequestsPerMinute)
	}

	// Unset fields keep their defaults.
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %s, want default 30s", cfg.Server.ShutdownTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VORLAGE_PORT", "7070")
	t.Setenv("VORLAGE_STORAGE", "postgres")
	t.Setenv("VORLAGE_POSTGRES_DSN", "postgres://env/db")
	t.Setenv("VORLAGE_SESSION_TTL", "15m")
	t.Setenv("VORLAGE_SECURE_COOKIES", "false")
	t.Setenv("VORLAGE_RATE_LIMIT", "60")
	t.Setenv("VORLAGE_METRICS", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.Postgres.DSN != "postgres://env/db" {
		t.Errorf("DSN = %q, want env value", cfg.Storage.Postgres.DSN)
	}
	if cfg.Auth.SessionTTL != 15*time.Minute {
		t.Errorf("SessionTTL = %s, want 15m", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.SecureCookies {
		t.Error("SecureCookies should be overridden to false")
	}
	if cfg.Auth.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", cfg.Auth.RequestsPerMinute)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to false")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VORLAGE_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, env override should win over YAML", cfg.Server.Port)
	}
}

func TestDSNFileResolution(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "dsn")
	if err := os.WriteFile(secret, []byte("postgres://file/db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  type: postgres\n  postgres:\n    dsn_file: " + secret + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Postgres.DSN != "postgres://file/db" {
		t.Errorf("DSN = %q, want trimmed file content", cfg.Storage.Postgres.DSN)
	}
}

func TestDSNValueWinsOverFile(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Postgres.DSN = "postgres://direct/db"
	cfg.Storage.Postgres.DSNFile = "/nonexistent/path"

	if err := resolveFileReferences(&cfg); err != nil {
		t.Fatalf("resolveFileReferences() error: %v", err)
	}
	if cfg.Storage.Postgres.DSN != "postgres://direct/db" {
		t.Errorf("DSN = %q, direct value should win", cfg.Storage.Postgres.DSN)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   "server.port",
		},
		{
			name:   "unknown storage type",
			mutate: func(c *Config) { c.Storage.Type = "redis" },
			want:   "storage.type",
		},
		{
			name:   "postgres without dsn",
			mutate: func(c *Config) { c.Storage.Type = "postgres" },
			want:   "storage.postgres.dsn",
		},
		{
			name:   "negative rate limit",
			mutate: func(c *Config) { c.Auth.RequestsPerMinute = -1 },
			want:   "auth.requests_per_minute",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted invalid config")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = -1
	cfg.Storage.Type = "redis"
	cfg.Auth.RequestsPerMinute = -5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted invalid config")
	}
	for _, want := range []string{"server.port", "storage.type", "auth.requests_per_minute"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q: %v", want, err)
		}
	}
}

func TestDiscoverConfigFile(t *testing.T) {
	// Explicit path wins over everything.
	t.Setenv("VORLAGE_CONFIG", "/env/config.yaml")
	if got := discoverConfigFile("/explicit/config.yaml"); got != "/explicit/config.yaml" {
		t.Errorf("discoverConfigFile = %q, want explicit path", got)
	}

	// Env var next.
	if got := discoverConfigFile(""); got != "/env/config.yaml" {
		t.Errorf("discoverConfigFile = %q, want env path", got)
	}
}
