package config

import (
	"context"
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Port", cfg.Server.Port, "8080"},
		{"Server.Host", cfg.Server.Host, "0.0.0.0"},
		{"Server.ReadTimeout", cfg.Server.ReadTimeout.Duration, 15 * time.Second},
		{"Postgres.Host", cfg.Postgres.Host, "localhost"},
		{"Postgres.SSLMode", cfg.Postgres.SSLMode, "disable"},
		{"Postgres.MigrationsDir", cfg.Postgres.MigrationsDir, "migrations"},
		{"Redis.Host", cfg.Redis.Host, "localhost"},
		{"JWT.Issuer", cfg.JWT.Issuer, "sneaker-library"},
		{"JWT.Audience", cfg.JWT.Audience, "sneaker-library"},
		{"JWT.AccessTokenExpiry", cfg.JWT.AccessTokenExpiry.Duration, 60 * time.Minute},
		{"Security.RateLimitRequests", cfg.Security.RateLimitRequests, 10},
		{"Cleanup.RevokedRetention", cfg.Cleanup.RevokedRetention.Duration, 30 * 24 * time.Hour},
		{"Cleanup.MaxTokenAgeDays", cfg.Cleanup.MaxTokenAgeDays, 90},
		{"Env", cfg.Env, "development"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if len(cfg.CORS.AllowedOrigins) == 0 || len(cfg.CORS.AllowedMethods) == 0 {
		t.Error("CORS defaults must not be empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "postgres.example.com")
	t.Setenv("POSTGRES_MIGRATIONS_DIR", "")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "30m")
	t.Setenv("CLEANUP_REVOKED_RETENTION", "7d")
	t.Setenv("ENV", "production")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "postgres.example.com" {
		t.Errorf("Postgres.Host = %q, want postgres.example.com", cfg.Postgres.Host)
	}
	if cfg.Postgres.MigrationsDir != "" {
		t.Errorf("Postgres.MigrationsDir = %q, want empty (migrations disabled)", cfg.Postgres.MigrationsDir)
	}
	if cfg.JWT.AccessTokenExpiry.Duration != 30*time.Minute {
		t.Errorf("JWT.AccessTokenExpiry = %v, want 30m", cfg.JWT.AccessTokenExpiry.Duration)
	}
	if cfg.Cleanup.RevokedRetention.Duration != 7*24*time.Hour {
		t.Errorf("Cleanup.RevokedRetention = %v, want 168h", cfg.Cleanup.RevokedRetention.Duration)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
}

func TestLoadSecretValidation(t *testing.T) {
	cases := []struct {
		name   string
		secret string
	}{
		{"missing", ""},
		{"too short", "short"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", c.secret)
			if _, err := Load(context.Background()); err == nil {
				t.Error("Load() accepted an invalid JWT secret")
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "auth",
		Password: "hunter2",
		DBName:   "authdb",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=auth password=hunter2 dbname=authdb sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestRedisAddress(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: "6380"}
	if got := r.Address(); got != "cache.internal:6380" {
		t.Errorf("Address() = %q, want cache.internal:6380", got)
	}
}

func TestDurationParsing(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"45m", 45 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, false},
		{"xd", 0, true},
		{"nonsense", 0, true},
	}
	for _, c := range cases {
		var d Duration
		err := d.EnvDecode(context.Background(), c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("EnvDecode(%q) succeeded, want error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("EnvDecode(%q) failed: %v", c.in, err)
			continue
		}
		if d.Duration != c.want {
			t.Errorf("EnvDecode(%q) = %v, want %v", c.in, d.Duration, c.want)
		}
	}
}
