package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service settings read from the environment
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	CatalogFile string // When set, candidates come from this YAML file instead of PostgreSQL

	GeminiAPIKey string
	GeminiModel  string

	PolicyPath string

	CatalogTimeout   time.Duration
	ProposalTimeout  time.Duration
	ProposalAttempts int
	ProposalBackoff  time.Duration
	ProposalRPS      float64
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv, applying defaults for unset values
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:         strings.TrimPrefix(valueOr(getenv, "PORT", "8080"), ":"),
		Env:          valueOr(getenv, "ENV", "development"),
		LogLevel:     strings.ToLower(valueOr(getenv, "LOG_LEVEL", "info")),
		DatabaseURL:  getenv("DATABASE_URL"),
		DBHost:       getenv("DB_HOST"),
		DBPort:       valueOr(getenv, "DB_PORT", "5432"),
		DBUser:       getenv("DB_USER"),
		DBPassword:   getenv("DB_PASSWORD"),
		DBName:       getenv("DB_NAME"),
		DBSSLMode:    valueOr(getenv, "DB_SSLMODE", "disable"),
		CatalogFile:  getenv("CATALOG_FILE"),
		GeminiAPIKey: getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL"),
		PolicyPath:   getenv("BUNDLE_POLICY_PATH"),
	}

	var err error
	if cfg.CatalogTimeout, err = durationOr(getenv, "CATALOG_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProposalTimeout, err = durationOr(getenv, "PROPOSAL_TIMEOUT", 20*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProposalBackoff, err = durationOr(getenv, "PROPOSAL_BACKOFF", 500*time.Millisecond); err != nil {
		return Config{}, err
	}

	cfg.ProposalAttempts = 3
	if raw := getenv("PROPOSAL_ATTEMPTS"); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil || attempts < 1 {
			return Config{}, fmt.Errorf("invalid PROPOSAL_ATTEMPTS %q: must be a positive integer", raw)
		}
		cfg.ProposalAttempts = attempts
	}

	cfg.ProposalRPS = 1
	if raw := getenv("PROPOSAL_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return Config{}, fmt.Errorf("invalid PROPOSAL_RPS %q: must be a non-negative number", raw)
		}
		cfg.ProposalRPS = rps
	}

	return cfg, nil
}

// IsProduction reports whether ENV is "production"
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address on all interfaces
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// DatabaseDSN returns DATABASE_URL or a DSN built from the DB_* variables
func (c Config) DatabaseDSN() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode), nil
}

func valueOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
