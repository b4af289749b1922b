package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

type Config struct {
	WorldPath   string
	PlayerName  string
	Store       string
	RedisURL    string
	DBPath      string
	RunTTL      time.Duration
	Environment string
	LogLevel    slog.Level
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		WorldPath:   getEnv("DOTIAM_WORLD", ""),
		PlayerName:  getEnv("DOTIAM_PLAYER", "Adventurer"),
		Store:       strings.ToLower(getEnv("DOTIAM_STORE", StoreMemory)),
		RedisURL:    getEnv("DOTIAM_REDIS_URL", "redis://localhost:6379/0"),
		DBPath:      getEnv("DOTIAM_DB_PATH", "dotiam.db"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	ttl, err := time.ParseDuration(getEnv("DOTIAM_RUN_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOTIAM_RUN_TTL: %w", err)
	}
	cfg.RunTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that may also have been overridden by flags.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis, StoreSQLite, StoreBolt:
	default:
		return fmt.Errorf("unknown store %q: want memory, redis, sqlite or bolt", c.Store)
	}
	if c.RunTTL < 0 {
		return fmt.Errorf("run TTL must not be negative, got %s", c.RunTTL)
	}
	if strings.TrimSpace(c.PlayerName) == "" {
		return fmt.Errorf("player name must not be empty")
	}
	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", level)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
