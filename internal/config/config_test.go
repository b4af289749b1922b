package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DOTIAM_WORLD", "DOTIAM_PLAYER", "DOTIAM_STORE", "DOTIAM_REDIS_URL",
		"DOTIAM_DB_PATH", "DOTIAM_RUN_TTL", "ENVIRONMENT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.WorldPath)
	assert.Equal(t, "Adventurer", cfg.PlayerName)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "dotiam.db", cfg.DBPath)
	assert.Equal(t, time.Duration(0), cfg.RunTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DOTIAM_WORLD", "worlds/demo.yaml")
	t.Setenv("DOTIAM_PLAYER", "Ada")
	t.Setenv("DOTIAM_STORE", "SQLite")
	t.Setenv("DOTIAM_DB_PATH", "/tmp/runs.db")
	t.Setenv("DOTIAM_RUN_TTL", "24h")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "warning")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "worlds/demo.yaml", cfg.WorldPath)
	assert.Equal(t, "Ada", cfg.PlayerName)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/runs.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.RunTTL)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown store", "DOTIAM_STORE", "postgres"},
		{"bad ttl", "DOTIAM_RUN_TTL", "forever"},
		{"negative ttl", "DOTIAM_RUN_TTL", "-1h"},
		{"bad log level", "LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_EmptyPlayer(t *testing.T) {
	cfg := &Config{Store: StoreMemory, PlayerName: "  "}
	assert.Error(t, cfg.Validate())
}
