package config

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		MaxTurns:        5,
		Host:            "127.0.0.1",
		Port:            8080,
		JWTSecret:       strings.Repeat("s", 32),
		PostgresHost:    "localhost",
		PostgresPort:    5432,
		PostgresUser:    "dropdawn",
		PostgresDBName:  "dropdawn",
		PostgresSSLMode: "disable",
		LogLevel:        "info",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxTurns != 5 {
		t.Errorf("MaxTurns = %d, want 5", cfg.MaxTurns)
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.PostgresPort != 5432 || cfg.PostgresSSLMode != "disable" {
		t.Errorf("postgres defaults = %d/%s", cfg.PostgresPort, cfg.PostgresSSLMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DROPDAWN_PORT", "9999")
	t.Setenv("DROPDAWN_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"max turns too low", func(c *Config) { c.MaxTurns = 0 }, ErrInvalidMaxTurns},
		{"max turns too high", func(c *Config) { c.MaxTurns = 26 }, ErrInvalidMaxTurns},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"postgres port out of range", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"empty dbname", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"bad sslmode", func(c *Config) { c.PostgresSSLMode = "maybe" }, ErrInvalidPostgresSSLMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestValidateServe(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("ValidateServe() error = %v", err)
	}

	cfg.JWTSecret = ""
	if err := cfg.ValidateServe(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Errorf("ValidateServe() error = %v, want ErrMissingJWTSecret", err)
	}

	cfg.JWTSecret = "short"
	if err := cfg.ValidateServe(); !errors.Is(err, ErrInvalidJWTSecret) {
		t.Errorf("ValidateServe() error = %v, want ErrInvalidJWTSecret", err)
	}
}

func TestMarshalJSONMasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "super-secret-pw"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out := string(data)
	if strings.Contains(out, "super-secret-pw") || strings.Contains(out, cfg.JWTSecret) {
		t.Errorf("marshaled config leaks secrets: %s", out)
	}
	if !strings.Contains(out, `"jwt_secret":"********"`) {
		t.Errorf("jwt_secret not masked: %s", out)
	}
	if !strings.Contains(out, `"postgres_password":"********"`) {
		t.Errorf("postgres_password not masked: %s", out)
	}
}

func TestMarshalJSONEmptySecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"jwt_secret":""`) {
		t.Errorf("empty secret should marshal empty, got %s", data)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "pw"

	got := cfg.PostgresURL()
	want := "postgres://dropdawn:pw@localhost:5432/dropdawn?sslmode=disable"
	if got != want {
		t.Errorf("PostgresURL() = %q, want %q", got, want)
	}
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "pw"

	got := cfg.PostgresConnectionString()
	want := "host=localhost port=5432 user=dropdawn password=pw dbname=dropdawn sslmode=disable"
	if got != want {
		t.Errorf("PostgresConnectionString() = %q, want %q", got, want)
	}
}
