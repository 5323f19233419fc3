package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mcoot/tcgarena/internal/model"
)

// DeckFinder looks decks up by id. Implemented by the deck service.
type DeckFinder interface {
	FindDeckByID(ctx context.Context, id model.DeckID) (*model.Deck, error)
}

// Controller enforces the room lifecycle on top of the Registry:
// create (waiting), join (waiting -> playing), remove.
type Controller struct {
	registry *Registry
	decks    DeckFinder
	nextID   atomic.Int64
	logger   *slog.Logger
}

// NewController creates a new room Controller
func NewController(registry *Registry, decks DeckFinder, logger *slog.Logger) *Controller {
	return &Controller{
		registry: registry,
		decks:    decks,
		logger:   logger.With(slog.String("component", "room")),
	}
}

// ValidateDeck checks the deck exists, belongs to the user and holds
// exactly DeckSize cards. It runs on every attachment, so a deck edited
// after an earlier check is judged on its current contents.
func (c *Controller) ValidateDeck(ctx context.Context, userID model.UserID, deckID model.DeckID) (*model.Deck, error) {
	deck, err := c.decks.FindDeckByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, model.ErrDeckNotFound
	}
	if deck.UserID != userID {
		return nil, model.ErrDeckNotOwned
	}
	if len(deck.Cards) != model.DeckSize {
		return nil, model.ErrInvalidDeckSize
	}
	return deck, nil
}

// CreateRoom opens a waiting room hosted by the user. A user may host any
// number of rooms.
func (c *Controller) CreateRoom(ctx context.Context, userID model.UserID, displayName string, deckID model.DeckID) (model.Room, error) {
	if _, err := c.ValidateDeck(ctx, userID, deckID); err != nil {
		return model.Room{}, err
	}

	room := model.Room{
		ID: model.RoomID(c.nextID.Add(1)),
		Host: model.Player{
			UserID:      userID,
			DisplayName: displayName,
			DeckID:      deckID,
		},
		Status: model.RoomStatusWaiting,
	}

	if err := c.registry.Add(room); err != nil {
		c.logger.Error("room id collision",
			slog.Int64("room_id", int64(room.ID)),
			slog.Any("error", err))
		return model.Room{}, fmt.Errorf("add room %d: %w", room.ID, err)
	}

	c.logger.Info("room created",
		slog.Int64("room_id", int64(room.ID)),
		slog.Int64("host_id", int64(userID)))
	return room, nil
}

// GetAvailableRooms returns a snapshot of the waiting rooms
func (c *Controller) GetAvailableRooms() []model.Room {
	return c.registry.ListAvailable()
}

// GetRoom returns one room in any state
func (c *Controller) GetRoom(roomID model.RoomID) (model.Room, error) {
	room, ok := c.registry.Find(roomID)
	if !ok {
		return model.Room{}, model.ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom seats the user as guest and starts the game.
//
// The early status check only fails fast; the deck lookup in between can
// take arbitrarily long, so the seat is claimed with the registry's
// compare-and-swap and a lost race is reported as not joinable.
func (c *Controller) JoinRoom(ctx context.Context, userID model.UserID, displayName string, roomID model.RoomID, deckID model.DeckID) (model.Room, error) {
	room, ok := c.registry.Find(roomID)
	if !ok {
		return model.Room{}, model.ErrRoomNotFound
	}
	if !room.IsJoinable() {
		return model.Room{}, model.ErrRoomNotJoinable
	}

	if _, err := c.ValidateDeck(ctx, userID, deckID); err != nil {
		return model.Room{}, err
	}

	guest := model.Player{
		UserID:      userID,
		DisplayName: displayName,
		DeckID:      deckID,
	}
	joined, ok := c.registry.TransitionIfWaiting(roomID, guest)
	if !ok {
		if _, exists := c.registry.Find(roomID); !exists {
			return model.Room{}, model.ErrRoomNotFound
		}
		return model.Room{}, model.ErrRoomNotJoinable
	}

	c.logger.Info("room started",
		slog.Int64("room_id", int64(roomID)),
		slog.Int64("host_id", int64(joined.Host.UserID)),
		slog.Int64("guest_id", int64(userID)))
	return joined, nil
}

// RemoveRoom drops the room. Unknown ids are ignored.
func (c *Controller) RemoveRoom(roomID model.RoomID) {
	c.registry.Remove(roomID)
	c.logger.Info("room removed", slog.Int64("room_id", int64(roomID)))
}

// RemoveRoomAs drops the room on behalf of one of its members
func (c *Controller) RemoveRoomAs(userID model.UserID, roomID model.RoomID) error {
	room, err := c.GetRoom(roomID)
	if err != nil {
		return err
	}
	if !room.HasMember(userID) {
		return model.ErrNotRoomMember
	}
	c.RemoveRoom(roomID)
	return nil
}

// IsDomainError reports whether err is a rule violation to show the user
// rather than an internal failure
func IsDomainError(err error) bool {
	for _, target := range []error{
		model.ErrDeckNotFound,
		model.ErrDeckNotOwned,
		model.ErrInvalidDeckSize,
		model.ErrRoomNotFound,
		model.ErrRoomNotJoinable,
		model.ErrNotRoomMember,
		model.ErrInvalidPayload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Interface for dependency injection
type ControllerInterface interface {
	ValidateDeck(ctx context.Context, userID model.UserID, deckID model.DeckID) (*model.Deck, error)
	CreateRoom(ctx context.Context, userID model.UserID, displayName string, deckID model.DeckID) (model.Room, error)
	GetAvailableRooms() []model.Room
	GetRoom(roomID model.RoomID) (model.Room, error)
	JoinRoom(ctx context.Context, userID model.UserID, displayName string, roomID model.RoomID, deckID model.DeckID) (model.Room, error)
	RemoveRoom(roomID model.RoomID)
	RemoveRoomAs(userID model.UserID, roomID model.RoomID) error
}

var _ ControllerInterface = (*Controller)(nil)
