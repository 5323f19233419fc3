package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/tcgarena/internal/api/apierr"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/auth"
	"github.com/mcoot/tcgarena/internal/services/room"
)

// IdentityVerifier turns a bearer token into an identity
type IdentityVerifier interface {
	VerifyToken(token string) (*auth.Identity, error)
}

// Config holds configuration for the realtime gateway
type Config struct {
	// AllowedOrigins restricts the Origin header on upgrade. Empty allows any.
	AllowedOrigins []string
	// EventTimeout bounds the handling of a single inbound event
	EventTimeout time.Duration
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		EventTimeout: 10 * time.Second,
	}
}

// Gateway authenticates websocket connections and routes their events to
// the room controller
type Gateway struct {
	rooms       room.ControllerInterface
	verifier    IdentityVerifier
	hub         *Hub
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
	cfg         Config
	logger      *slog.Logger
}

// New creates a new Gateway
func New(rooms room.ControllerInterface, verifier IdentityVerifier, hub *Hub, broadcaster *Broadcaster, cfg Config, logger *slog.Logger) *Gateway {
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = DefaultConfig().EventTimeout
	}
	g := &Gateway{
		rooms:       rooms,
		verifier:    verifier,
		hub:         hub,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "gateway")),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// ServeHTTP verifies the token, upgrades the connection and serves it
// until the peer disconnects. A rejected token never opens the channel.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := g.verifier.VerifyToken(extractToken(r))
	if err != nil {
		g.logger.Info("websocket auth rejected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		apierr.WriteError(w, err)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		g.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := NewClient(conn, identity.UserID, identity.Email)
	g.hub.Register(client)
	defer func() {
		g.hub.Unregister(client)
		_ = conn.Close()
	}()

	go client.writePump(g.logger)
	client.readPump(g.logger, func(c *Client, env *Envelope) {
		g.dispatch(r.Context(), c, env)
	})
}

// dispatch handles one inbound event. Calls for the same client are
// sequential; calls for different clients run concurrently.
func (g *Gateway) dispatch(ctx context.Context, client *Client, env *Envelope) {
	if env == nil {
		g.broadcaster.SendError(client, MsgMalformedMessage)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.EventTimeout)
	defer cancel()

	switch env.Event {
	case EventCreateRoom:
		g.handleCreateRoom(ctx, client, env.Data)
	case EventGetRooms:
		g.broadcaster.SendRoomsList(client)
	case EventJoinRoom:
		g.handleJoinRoom(ctx, client, env.Data)
	default:
		g.logger.Debug("unknown event",
			slog.String("client_id", client.id),
			slog.String("event", env.Event))
		g.broadcaster.SendError(client, MsgUnknownEvent)
	}
}

func (g *Gateway) handleCreateRoom(ctx context.Context, client *Client, data json.RawMessage) {
	var payload CreateRoomPayload
	if len(data) > 0 && json.Unmarshal(data, &payload) != nil {
		g.broadcaster.SendError(client, MsgInvalidDeckID)
		return
	}
	deckID, err := coerceID(payload.DeckID)
	if err != nil {
		g.broadcaster.SendError(client, MsgInvalidDeckID)
		return
	}

	created, err := g.rooms.CreateRoom(ctx, client.userID, client.label, model.DeckID(deckID))
	if err != nil {
		g.replyError(client, EventCreateRoom, err)
		return
	}

	g.hub.Subscribe(client, RoomGroup(created.ID))
	g.broadcaster.SendEvent(client, EventRoomCreated, RoomFromModel(created))
	g.broadcaster.BroadcastRoomsList()
}

func (g *Gateway) handleJoinRoom(ctx context.Context, client *Client, data json.RawMessage) {
	var payload JoinRoomPayload
	if len(data) > 0 && json.Unmarshal(data, &payload) != nil {
		g.broadcaster.SendError(client, MsgInvalidParams)
		return
	}
	roomID, roomErr := coerceID(payload.RoomID)
	deckID, deckErr := coerceID(payload.DeckID)
	if roomErr != nil || deckErr != nil {
		g.broadcaster.SendError(client, MsgInvalidParams)
		return
	}

	joined, err := g.rooms.JoinRoom(ctx, client.userID, client.label, model.RoomID(roomID), model.DeckID(deckID))
	if err != nil {
		g.replyError(client, EventJoinRoom, err)
		return
	}

	g.hub.Subscribe(client, RoomGroup(joined.ID))
	g.broadcaster.BroadcastGameStarted(joined)
	g.broadcaster.BroadcastRoomsList()
}

// replyError reports a failed event to the originating client only
func (g *Gateway) replyError(client *Client, event string, err error) {
	if room.IsDomainError(err) {
		g.logger.Debug("event rejected",
			slog.String("client_id", client.id),
			slog.String("event", event),
			slog.String("error", err.Error()))
	} else {
		g.logger.Error("event failed",
			slog.String("client_id", client.id),
			slog.String("event", event),
			slog.Any("error", err))
	}
	g.broadcaster.SendError(client, messageFor(err))
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// extractToken reads the bearer token from the Authorization header,
// falling back to the token query parameter for browser clients
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
