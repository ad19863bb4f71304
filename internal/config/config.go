// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, DROPDAWN_ prefix)
//  2. Config file (~/.dropdawn/config.yaml)
//  3. Default values
//
// Provider API keys (GOOGLE_GENERATIVE_AI_API_KEY, MISTRAL_API_KEY,
// COHERE_API_KEY, DEEPINFRA_API_KEY) and external service credentials
// (NETLIFY_ACCESS_TOKEN, TAVILY_API_KEY) are read from their conventional
// unprefixed environment variables. Absence of a variable required by the
// selected code path is a reported configuration error, never a silent
// fallback.
//
// Security: sensitive values (passwords, tokens) are masked in MarshalJSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors, checked with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingHostingToken indicates NETLIFY_ACCESS_TOKEN is not set.
	ErrMissingHostingToken = errors.New("missing NETLIFY_ACCESS_TOKEN")

	// ErrMissingJWTSecret indicates the JWT signing secret is not set.
	ErrMissingJWTSecret = errors.New("missing JWT secret")

	// ErrInvalidJWTSecret indicates the JWT signing secret is too short.
	ErrInvalidJWTSecret = errors.New("invalid JWT secret")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidMaxTurns indicates the tool-calling step ceiling is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")
)

// Environment variable names consumed outside the DROPDAWN_ prefix.
const (
	EnvGoogleAPIKey    = "GOOGLE_GENERATIVE_AI_API_KEY"
	EnvMistralAPIKey   = "MISTRAL_API_KEY"
	EnvCohereAPIKey    = "COHERE_API_KEY"
	EnvDeepInfraAPIKey = "DEEPINFRA_API_KEY"
	EnvHostingToken    = "NETLIFY_ACCESS_TOKEN"
	EnvSearchAPIKey    = "TAVILY_API_KEY"
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Chat orchestration
	MaxTurns int `mapstructure:"max_turns" json:"max_turns"` // tool-calling step ceiling per request

	// HTTP server
	Host        string   `mapstructure:"host" json:"host"`
	Port        int      `mapstructure:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Auth
	JWTSecret string `mapstructure:"jwt_secret" json:"-"`

	// PostgreSQL
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"-"`
	PostgresDBName   string `mapstructure:"postgres_dbname" json:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode" json:"postgres_sslmode"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// MarshalJSON masks sensitive fields so configs can be logged safely.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	return json.Marshal(&struct {
		*alias
		JWTSecret        string `json:"jwt_secret"`
		PostgresPassword string `json:"postgres_password"`
	}{
		alias:            (*alias)(c),
		JWTSecret:        mask(c.JWTSecret),
		PostgresPassword: mask(c.PostgresPassword),
	})
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// Load reads configuration from file and environment.
// Missing config file is not an error; defaults plus environment apply.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DROPDAWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(home, ".dropdawn"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_turns", 5)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", 0)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "dropdawn")
	v.SetDefault("postgres_dbname", "dropdawn")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// HostingToken returns the hosting-provider access token from the environment.
// Empty string means unset; callers report that as a configuration error at
// the point of use.
func HostingToken() string {
	return os.Getenv(EnvHostingToken)
}

// SearchAPIKey returns the web-search provider key from the environment.
func SearchAPIKey() string {
	return os.Getenv(EnvSearchAPIKey)
}

// PostgresURL builds a postgres:// connection URL for migrations.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// PostgresConnectionString builds a keyword/value connection string for pgx.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDBName, c.PostgresSSLMode)
}
