// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir string // Base directory for databases and static datasets (always absolute)

	Port     int
	LogLevel string
	DevMode  bool

	// Cash-price provider (quota-limited REST)
	SerpAPIKey       string
	SerpAPIBaseURL   string
	MonthlyQuotaCap  int64

	// Award provider (job-based GraphQL)
	AwardHubBaseURL        string
	AwardHubCredentialFile string // session + anti-forgery cookie pair with expiry

	// Balances provider
	BalancesBaseURL string
	BalancesAPIKey  string
	BalancesAccount string

	// Out-of-process strategy
	HiddenCityScriptPath string

	// Poller tuning
	PollInterval       time.Duration
	PollDeadline       time.Duration
	StalenessThreshold int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VOYAGER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8010),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		SerpAPIKey:      getEnv("SERP_API_KEY", ""),
		SerpAPIBaseURL:  getEnv("SERP_API_BASE_URL", "https://serpapi.com/search.json"),
		MonthlyQuotaCap: int64(getEnvAsInt("SERP_API_MONTHLY_CAP", 250)),

		AwardHubBaseURL:        getEnv("AWARDHUB_BASE_URL", "https://api.awardhub.example/graphql"),
		AwardHubCredentialFile: getEnv("AWARDHUB_CREDENTIAL_FILE", filepath.Join(absDataDir, "awardhub_session.json")),

		BalancesBaseURL: getEnv("BALANCES_BASE_URL", ""),
		BalancesAPIKey:  getEnv("BALANCES_API_KEY", ""),
		BalancesAccount: getEnv("BALANCES_ACCOUNT", ""),

		HiddenCityScriptPath: getEnv("HIDDEN_CITY_SCRIPT", ""),

		PollInterval:       getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
		PollDeadline:       getEnvAsDuration("POLL_DEADLINE", 90*time.Second),
		StalenessThreshold: getEnvAsInt("POLL_STALENESS_THRESHOLD", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// All provider credentials are optional: each adapter degrades on its own
	// when its credential is missing (fail closed for that one source only).
	if c.PollInterval <= 0 || c.PollDeadline <= 0 {
		return fmt.Errorf("poll interval and deadline must be positive")
	}
	if c.StalenessThreshold < 1 {
		return fmt.Errorf("staleness threshold must be at least 1")
	}
	return nil
}

// StaticPath returns the path of a static dataset file under the data dir.
func (c *Config) StaticPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
