package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/tcgarena/internal/api"
	"github.com/mcoot/tcgarena/internal/dependencies/clock"
	"github.com/mcoot/tcgarena/internal/dependencies/random"
	"github.com/mcoot/tcgarena/internal/gateway"
	"github.com/mcoot/tcgarena/internal/seed"
	"github.com/mcoot/tcgarena/internal/services/auth"
	"github.com/mcoot/tcgarena/internal/services/card"
	"github.com/mcoot/tcgarena/internal/services/deck"
	"github.com/mcoot/tcgarena/internal/services/room"
	"github.com/mcoot/tcgarena/internal/storage"
	"github.com/mcoot/tcgarena/internal/storage/memory"
	redisstorage "github.com/mcoot/tcgarena/internal/storage/redis"
	"github.com/mcoot/tcgarena/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	CardService    *card.Service
	DeckService    *deck.Service
	RoomRegistry   *room.Registry
	RoomController *room.Controller
	Seeder         *seed.Seeder

	// Realtime
	Hub         *gateway.Hub
	Broadcaster *gateway.Broadcaster
	Gateway     *gateway.Gateway

	// Handler serves the REST API and the websocket endpoint
	Handler http.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is required.
	AuthConfig auth.Config
	// GatewayConfig holds configuration for the realtime gateway (optional)
	GatewayConfig gateway.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired. Call Start
// before serving and Close when done.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if len(cfg.AuthConfig.Secret) == 0 {
		return nil, errors.New("AuthConfig.Secret is required")
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, cfg.GatewayConfig, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, gatewayCfg gateway.Config, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, clk, rnd, authCfg, logger)
	cardService := card.New(store)
	deckService := deck.New(store, clk, logger)
	roomRegistry := room.NewRegistry()
	roomController := room.NewController(roomRegistry, deckService, logger)
	seeder := seed.New(store, authService, deckService, rnd, logger)

	// Realtime channel
	hub := gateway.NewHub(logger)
	broadcaster := gateway.NewBroadcaster(hub, roomController, logger)
	gw := gateway.New(roomController, authService, hub, broadcaster, gatewayCfg, logger)

	handler := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    authService,
		CardService:    cardService,
		DeckService:    deckService,
		RoomController: roomController,
		RoomRegistry:   roomRegistry,
		Gateway:        gw,
		Broadcaster:    broadcaster,
		Hub:            hub,
	})

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		CardService:    cardService,
		DeckService:    deckService,
		RoomRegistry:   roomRegistry,
		RoomController: roomController,
		Seeder:         seeder,
		Hub:            hub,
		Broadcaster:    broadcaster,
		Gateway:        gw,
		Handler:        handler,
	}
}

// Start runs the background loops
func (a *App) Start() {
	go a.Hub.Run()
}

// Close stops the hub, disconnecting every client, and closes storage
func (a *App) Close() error {
	a.Hub.Close()
	return a.Storage.Close()
}
