package storage

import (
	"context"

	"github.com/mcoot/tcgarena/internal/model"
)

// Storage defines the interface for account, catalog and deck persistence.
// Rooms are deliberately absent: they live only in the room registry.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Card catalog operations
	SaveCards(ctx context.Context, cards []model.Card) error
	ListCards(ctx context.Context) ([]model.Card, error)
	GetCard(ctx context.Context, id model.CardID) (*model.Card, error)
	GetCardsByIDs(ctx context.Context, ids []model.CardID) ([]model.Card, error)

	// Deck operations
	CreateDeck(ctx context.Context, deck *model.Deck) error
	GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error)
	ListDecksByUser(ctx context.Context, userID model.UserID) ([]model.Deck, error)
	UpdateDeck(ctx context.Context, deck *model.Deck) error
	DeleteDeck(ctx context.Context, id model.DeckID) error

	// Close releases backend resources
	Close() error
}
