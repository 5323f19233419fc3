package deck

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/tcgarena/internal/dependencies/clock"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Service manages user decks. It is also the deck lookup the room
// controller validates attachments against.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new deck Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "deck")),
	}
}

// Create builds a deck of exactly DeckSize catalog cards for the user
func (s *Service) Create(ctx context.Context, userID model.UserID, name string, cardIDs []model.CardID) (*model.Deck, error) {
	cards, err := s.resolveCards(ctx, cardIDs)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrInvalidDeckName
	}

	now := s.clock.Now()
	deck := &model.Deck{
		UserID:    userID,
		Name:      name,
		Cards:     cards,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateDeck(ctx, deck); err != nil {
		return nil, err
	}

	s.logger.Info("deck created",
		slog.Int64("deck_id", int64(deck.ID)),
		slog.Int64("user_id", int64(userID)))
	return deck, nil
}

// ListForUser returns every deck the user owns
func (s *Service) ListForUser(ctx context.Context, userID model.UserID) ([]model.Deck, error) {
	return s.storage.ListDecksByUser(ctx, userID)
}

// FindDeckByID returns a deck regardless of owner
func (s *Service) FindDeckByID(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	return s.storage.GetDeck(ctx, id)
}

// GetOwned returns a deck only if the user owns it
func (s *Service) GetOwned(ctx context.Context, userID model.UserID, id model.DeckID) (*model.Deck, error) {
	deck, err := s.storage.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, model.ErrDeckNotOwned
	}
	return deck, nil
}

// Update changes the name and/or cards of an owned deck. A nil name or nil
// cards leaves that part unchanged; a blank name is ignored.
func (s *Service) Update(ctx context.Context, userID model.UserID, id model.DeckID, name *string, cardIDs []model.CardID) (*model.Deck, error) {
	deck, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if cardIDs != nil {
		cards, err := s.resolveCards(ctx, cardIDs)
		if err != nil {
			return nil, err
		}
		deck.Cards = cards
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		deck.Name = strings.TrimSpace(*name)
	}
	deck.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdateDeck(ctx, deck); err != nil {
		return nil, err
	}
	return s.storage.GetDeck(ctx, id)
}

// Delete removes an owned deck
func (s *Service) Delete(ctx context.Context, userID model.UserID, id model.DeckID) error {
	if _, err := s.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.storage.DeleteDeck(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deck deleted", slog.Int64("deck_id", int64(id)))
	return nil
}

// resolveCards checks the size and that every id is in the catalog, and
// returns the cards in the requested order
func (s *Service) resolveCards(ctx context.Context, cardIDs []model.CardID) ([]model.Card, error) {
	if len(cardIDs) != model.DeckSize {
		return nil, model.ErrInvalidDeckSize
	}

	found, err := s.storage.GetCardsByIDs(ctx, cardIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.CardID]model.Card, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	cards := make([]model.Card, len(cardIDs))
	for i, id := range cardIDs {
		c, ok := byID[id]
		if !ok {
			return nil, model.ErrInvalidCards
		}
		cards[i] = c
	}
	return cards, nil
}
