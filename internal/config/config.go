package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	MigrationsPath string
	SessionDir     string
	LogLevel       string
	LogFormat      string
	PrometheusPort string
	Port           string
	SeedEvents     int
	DigestInterval time.Duration
}

// Load reads an optional .env file and then the environment. Only malformed
// values are errors: the bot and Postgres are disabled when their settings
// are empty.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		SessionDir:     getEnvOrDefault("SESSION_DIR", "data/session"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		Port:           getEnvOrDefault("PORT", "8080"),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	seed, err := strconv.Atoi(getEnvOrDefault("SEED_EVENTS", "0"))
	if err != nil || seed < 0 {
		return nil, fmt.Errorf("SEED_EVENTS must be a non-negative integer")
	}
	cfg.SeedEvents = seed

	interval, err := time.ParseDuration(getEnvOrDefault("DIGEST_INTERVAL", "1m"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("DIGEST_INTERVAL must be a positive duration")
	}
	cfg.DigestInterval = interval

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
