// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/bbref.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// League registry
// --------------------------------------------------------------------------

type LeagueConfig struct {
	ID   string
	Name string
	// FirstSeason is the end year of the earliest season the site covers.
	FirstSeason int
	// CurrentSeason is the end year of the season in progress.
	CurrentSeason int
	// FirstAllStarGame is the year of the first all-star game.
	FirstAllStarGame int
}

var LeagueRegistry = map[string]LeagueConfig{
	"NBA": {ID: "NBA", Name: "National Basketball Association", FirstSeason: 1947, CurrentSeason: 2027, FirstAllStarGame: 1951},
}

// NBA returns the registry entry every extraction validates against.
func NBA() LeagueConfig {
	return LeagueRegistry["NBA"]
}

// ValidSeason reports whether endYear is a season the league has played or
// is playing.
func (l LeagueConfig) ValidSeason(endYear int) bool {
	return endYear >= l.FirstSeason && endYear <= l.CurrentSeason
}

// --------------------------------------------------------------------------
// Table names, matching db.EnsureSchema
// --------------------------------------------------------------------------

const (
	ExtractedTablesTable = "extracted_tables"
	SeedRunsTable        = "seed_runs"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Site
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
	RetryMax          int
	Headless          bool
	UserAgent         string
	NameExceptions    string // path to a JSON name exception list, optional

	// Database (optional for extraction and the API, required for seeding)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Seeding
	SeedWorkers int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:           strings.TrimRight(envOr("BBREF_BASE_URL", "https://www.basketball-reference.com"), "/"),
		RequestsPerMinute: envInt("BBREF_REQUESTS_PER_MINUTE", 20),
		Timeout:           time.Duration(envInt("BBREF_TIMEOUT_SECONDS", 30)) * time.Second,
		RetryMax:          envInt("BBREF_RETRY_MAX", 3),
		Headless:          envBool("BBREF_HEADLESS", false),
		UserAgent:         envOr("BBREF_USER_AGENT", "bbref-tables/1.0"),
		NameExceptions:    envOr("BBREF_NAME_EXCEPTIONS", ""),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		SeedWorkers: envInt("SEED_WORKERS", 2),
	}

	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("BBREF_REQUESTS_PER_MINUTE must be positive, got %d", cfg.RequestsPerMinute)
	}
	if cfg.RetryMax < 0 {
		return nil, fmt.Errorf("BBREF_RETRY_MAX must not be negative, got %d", cfg.RetryMax)
	}
	return cfg, nil
}

// RequireDatabase returns an error when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
