// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvClientID and EnvClientSecret name the environment variables
	// that carry the OpenSky OAuth credentials.
	EnvClientID     = "OPENSKY_CLIENT_ID"
	EnvClientSecret = "OPENSKY_CLIENT_SECRET"

	DefaultDatabasePath   = "flights.db"
	DefaultMaxConcurrent  = 5
	DefaultRateLimitDelay = 500 * time.Millisecond
	DefaultHTTPTimeout    = 30 * time.Second
)

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	AuthURL    string `yaml:"auth_url"`
	BaseURL    string `yaml:"base_url"`
	TimeoutStr string `yaml:"timeout"`

	Timeout time.Duration `yaml:"-"` // parsed from TimeoutStr
}

type FetchConfig struct {
	MaxConcurrent     int    `yaml:"max_concurrent"`
	RateLimitDelayStr string `yaml:"rate_limit_delay"`

	RateLimitDelay time.Duration `yaml:"-"` // parsed from RateLimitDelayStr
}

// Config holds the file-configurable parameters. Command-line flags
// override it; it overrides the built-in defaults.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Fetch    FetchConfig    `yaml:"fetch"`
}

// Default returns the built-in configuration. API URLs are left empty
// here; the client fills in its well-known OpenSky endpoints when they
// are not overridden.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		API:      APIConfig{Timeout: DefaultHTTPTimeout},
		Fetch: FetchConfig{
			MaxConcurrent:  DefaultMaxConcurrent,
			RateLimitDelay: DefaultRateLimitDelay,
		},
	}
}

// Load reads a YAML config file over the defaults and parses duration
// fields.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.API.TimeoutStr != "" {
		cfg.API.Timeout, err = time.ParseDuration(cfg.API.TimeoutStr)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse api.timeout: %w", err)
		}
	}
	if cfg.Fetch.RateLimitDelayStr != "" {
		cfg.Fetch.RateLimitDelay, err = time.ParseDuration(cfg.Fetch.RateLimitDelayStr)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse fetch.rate_limit_delay: %w", err)
		}
	}
	if cfg.Fetch.MaxConcurrent <= 0 {
		cfg.Fetch.MaxConcurrent = DefaultMaxConcurrent
	}
	return cfg, nil
}

// Credentials are the OAuth client-credentials pair for the OpenSky
// token exchange.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials resolves credentials from the given flag values,
// falling back to the environment (a .env file is loaded if present).
func LoadCredentials(flagID, flagSecret string) (Credentials, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	creds := Credentials{ClientID: flagID, ClientSecret: flagSecret}
	if creds.ClientID == "" {
		creds.ClientID = os.Getenv(EnvClientID)
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = os.Getenv(EnvClientSecret)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, fmt.Errorf(
			"%w: OAuth credentials required; set %s and %s or use --client-id and --client-secret",
			ErrValidation, EnvClientID, EnvClientSecret)
	}
	return creds, nil
}
