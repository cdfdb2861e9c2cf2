package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration, read from the environment.
// godotenv is loaded by the entrypoints before New is called.
type Config struct {
	Environment string
	Port        string

	// DatabaseURL takes precedence; otherwise a DSN is assembled from the
	// individual DB_* parts. When both are empty the server falls back to a
	// local SQLite file, which keeps development setup to zero steps.
	DatabaseURL string
	SQLitePath  string

	JWTSecret []byte
	TokenTTL  time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string

	LogLevel string
	LogFile  string
}

// New reads configuration from the environment.
func New() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttl := 7 * 24 * time.Hour // bearer tokens live for 7 days
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
		ttl = parsed
	}

	cfg := &Config{
		Environment:   getEnvOrDefault("ENVIRONMENT", "development"),
		Port:          getEnvOrDefault("PORT", "3001"),
		DatabaseURL:   databaseURL(),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "safehaven.db"),
		JWTSecret:     []byte(secret),
		TokenTTL:      ttl,
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:       getEnvOrDefault("LOG_FILE", "server.log"),
	}

	return cfg, nil
}

// databaseURL returns the Postgres DSN, or "" when no Postgres settings are
// present and the SQLite fallback should be used.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "safehaven")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
