package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TCGARENA_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.EventTimeout)
	assert.True(t, cfg.SeedCatalog)
	assert.False(t, cfg.SeedDemoUsers)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TCGARENA_JWT_SECRET", "secret")
	t.Setenv("TCGARENA_PORT", "9000")
	t.Setenv("TCGARENA_STORAGE", "sqlite")
	t.Setenv("TCGARENA_SQLITE_PATH", "/tmp/arena.db")
	t.Setenv("TCGARENA_ALLOWED_ORIGINS", "http://localhost:5173,https://arena.example.com")
	t.Setenv("TCGARENA_TOKEN_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/arena.db", cfg.SQLitePath)
	assert.Equal(t, []string{"http://localhost:5173", "https://arena.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("TCGARENA_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TCGARENA_JWT_SECRET")
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("TCGARENA_JWT_SECRET", "secret")
	t.Setenv("TCGARENA_STORAGE", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TCGARENA_STORAGE")
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("TCGARENA_JWT_SECRET", "secret")
	t.Setenv("TCGARENA_PORT", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "verbose"}.SlogLevel())
}
