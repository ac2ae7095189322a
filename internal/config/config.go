// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for databases and the S&P 500 snapshot (always absolute)
	SP500CSVPath       string // Path to the S&P 500 universe CSV snapshot
	LogLevel           string
	Port               int
	DevMode            bool
	CacheEnabled       bool
	CacheTTLHours      int     // Default cache TTL in hours
	MaxRetries         int     // Maximum provider retry attempts
	RequestTimeoutSecs int     // Provider request timeout in seconds
	MinDataPoints      int     // Minimum observations for a valid series (1 trading year)
	MinDataYears       float64 // Minimum years of history for a full calculation
	ValidateSP500Count bool    // Enforce the 490-510 universe size check
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	csvPath := getEnv("SP500_CSV_PATH", "")
	if csvPath == "" {
		csvPath = filepath.Join(absDataDir, "sp500.csv")
	}

	cfg := &Config{
		DataDir:            absDataDir,
		SP500CSVPath:       csvPath,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnvAsInt("PORT", 8000),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		CacheEnabled:       getEnvAsBool("CACHE_ENABLED", true),
		CacheTTLHours:      getEnvAsInt("CACHE_TTL_HOURS", 24),
		MaxRetries:         getEnvAsInt("MAX_RETRIES", 5),
		RequestTimeoutSecs: getEnvAsInt("REQUEST_TIMEOUT", 30),
		MinDataPoints:      getEnvAsInt("MIN_DATA_POINTS", 252),
		MinDataYears:       getEnvAsFloat("MIN_DATA_YEARS", 3.0),
		ValidateSP500Count: getEnvAsBool("VALIDATE_SP500_COUNT", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration values are within acceptable ranges
func (c *Config) Validate() error {
	if c.CacheTTLHours <= 0 || c.CacheTTLHours > 168 {
		return fmt.Errorf("cache TTL must be between 1 and 168 hours, got %d", c.CacheTTLHours)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries)
	}

	if c.MinDataYears <= 0 {
		return fmt.Errorf("minimum data years must be positive, got %v", c.MinDataYears)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
