package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authorizer configuration, the permission oracle is off when empty
	AuthzURL      string
	AuthzClientID string

	// Logging
	LogLevel  string
	LogFormat string

	// Revision store behavior
	ValidatorCacheTTL        time.Duration
	AllowSystemTableMutation bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "3000"),
		DBType:                   getEnv("DB_TYPE", "sqlite"),
		DBHost:                   getEnv("DB_HOST", "localhost"),
		DBPort:                   getEnv("DB_PORT", "3306"),
		DBDatabase:               getEnv("DB_DATABASE", ""),
		DBUser:                   getEnv("DB_USER", ""),
		DBPassword:               getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:        getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AuthzURL:                 getEnv("AUTHZ_URL", ""),
		AuthzClientID:            getEnv("AUTHZ_CLIENT_ID", ""),
		LogLevel:                 getEnv("LOG_LEVEL", "INFO"),
		LogFormat:                getEnv("LOG_FORMAT", "JSON"),
		ValidatorCacheTTL:        getEnvAsDuration("VALIDATOR_CACHE_TTL", 10*time.Minute),
		AllowSystemTableMutation: getEnvAsBool("ALLOW_SYSTEM_TABLE_MUTATION", false),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if (cfg.AuthzURL == "") != (cfg.AuthzClientID == "") {
		return nil, fmt.Errorf("AUTHZ_URL and AUTHZ_CLIENT_ID must be set together")
	}

	return cfg, nil
}

// AuthzEnabled reports whether the permission oracle is configured.
func (c *Config) AuthzEnabled() bool {
	return c.AuthzURL != "" && c.AuthzClientID != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
