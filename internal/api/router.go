package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tcgarena/internal/api/handler"
	"github.com/mcoot/tcgarena/internal/api/middleware"
	"github.com/mcoot/tcgarena/internal/gateway"
	"github.com/mcoot/tcgarena/internal/services/auth"
	"github.com/mcoot/tcgarena/internal/services/card"
	"github.com/mcoot/tcgarena/internal/services/deck"
	"github.com/mcoot/tcgarena/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	CardService    *card.Service
	DeckService    *deck.Service
	RoomController room.ControllerInterface
	Gateway        *gateway.Gateway
	Broadcaster    *gateway.Broadcaster
	Hub            *gateway.Hub
	RoomRegistry   *room.Registry
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	cardHandler := handler.NewCardHandler(cfg.CardService)
	deckHandler := handler.NewDeckHandler(cfg.DeckService)
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Broadcaster)

	var roomCount, connCount handler.Counter
	if cfg.RoomRegistry != nil {
		roomCount = cfg.RoomRegistry.Len
	}
	if cfg.Hub != nil {
		connCount = cfg.Hub.ClientCount
	}
	healthHandler := handler.NewHealthHandler(roomCount, connCount)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Realtime channel, authenticates before upgrading
	if cfg.Gateway != nil {
		r.Handle("/ws", cfg.Gateway).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Account routes (no auth required to sign up or in)
	api.HandleFunc("/auth/sign-up", authHandler.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/sign-in", authHandler.SignIn).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	// Card catalog is public
	api.HandleFunc("/cards", cardHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}", cardHandler.Get).Methods(http.MethodGet)

	// Deck routes (all require auth)
	decks := api.PathPrefix("/decks").Subrouter()
	decks.Use(authMiddleware)
	decks.HandleFunc("", deckHandler.Create).Methods(http.MethodPost)
	decks.HandleFunc("/mine", deckHandler.ListMine).Methods(http.MethodGet)
	decks.HandleFunc("/{id}", deckHandler.Get).Methods(http.MethodGet)
	decks.HandleFunc("/{id}", deckHandler.Update).Methods(http.MethodPatch)
	decks.HandleFunc("/{id}", deckHandler.Delete).Methods(http.MethodDelete)

	// Room routes, reads are public
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)
	api.Handle("/rooms/{id}", authMiddleware(http.HandlerFunc(roomHandler.Delete))).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}
