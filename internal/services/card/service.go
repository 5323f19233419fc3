package card

import (
	"context"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Service provides read access to the card catalog
type Service struct {
	storage storage.Storage
}

// New creates a new card Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// List returns the whole catalog ordered by pokedex number
func (s *Service) List(ctx context.Context) ([]model.Card, error) {
	return s.storage.ListCards(ctx)
}

// Get returns one card
func (s *Service) Get(ctx context.Context, id model.CardID) (*model.Card, error) {
	return s.storage.GetCard(ctx, id)
}
