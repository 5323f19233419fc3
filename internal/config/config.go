package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration read from the environment
type Config struct {
	Host            string        `env:"TCGARENA_HOST"`
	Port            int           `env:"TCGARENA_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"TCGARENA_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"TCGARENA_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"TCGARENA_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"TCGARENA_LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"TCGARENA_JWT_SECRET"`
	TokenTTL  time.Duration `env:"TCGARENA_TOKEN_TTL" envDefault:"168h"`

	StorageType   string `env:"TCGARENA_STORAGE" envDefault:"memory"`
	RedisURL      string `env:"TCGARENA_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPoolSize int    `env:"TCGARENA_REDIS_POOL_SIZE" envDefault:"10"`
	SQLitePath    string `env:"TCGARENA_SQLITE_PATH" envDefault:"tcgarena.db"`

	AllowedOrigins []string      `env:"TCGARENA_ALLOWED_ORIGINS" envSeparator:","`
	EventTimeout   time.Duration `env:"TCGARENA_EVENT_TIMEOUT" envDefault:"10s"`

	SeedCatalog   bool `env:"TCGARENA_SEED_CATALOG" envDefault:"true"`
	SeedDemoUsers bool `env:"TCGARENA_SEED_DEMO_USERS" envDefault:"false"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("TCGARENA_JWT_SECRET is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("TCGARENA_PORT out of range: %d", c.Port))
	}
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("TCGARENA_STORAGE must be memory, redis or sqlite, got %q", c.StorageType))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TCGARENA_TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
