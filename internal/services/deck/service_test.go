package deck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/dependencies/mocks"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage/memory"
	"github.com/mcoot/tcgarena/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	cards   []model.CardID
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	catalog := make([]model.Card, 12)
	for i := range catalog {
		catalog[i] = model.Card{Name: "card", HP: 50, Attack: 20, Type: "WATER", PokedexNumber: i + 1}
	}
	s.Require().NoError(s.storage.SaveCards(s.ctx, catalog))
	s.cards = nil
	for _, c := range catalog {
		s.cards = append(s.cards, c.ID)
	}
}

func (s *ServiceSuite) create(userID model.UserID) *model.Deck {
	deck, err := s.service.Create(s.ctx, userID, "Starter", s.cards[:model.DeckSize])
	s.Require().NoError(err)
	return deck
}

// Create tests

func (s *ServiceSuite) TestCreateSucceeds() {
	deck := s.create(1)

	s.Positive(int64(deck.ID))
	s.Equal(model.UserID(1), deck.UserID)
	s.Equal("Starter", deck.Name)
	s.Equal(s.cards[:model.DeckSize], deck.CardIDs())
	s.Equal(s.clock.Now(), deck.CreatedAt)
}

func (s *ServiceSuite) TestCreateAllowsRepeatedCards() {
	ids := make([]model.CardID, model.DeckSize)
	for i := range ids {
		ids[i] = s.cards[0]
	}

	deck, err := s.service.Create(s.ctx, 1, "Mono", ids)
	s.Require().NoError(err)
	s.Len(deck.Cards, model.DeckSize)
}

func (s *ServiceSuite) TestCreateValidation() {
	_, err := s.service.Create(s.ctx, 1, "Short", s.cards[:model.DeckSize-1])
	s.ErrorIs(err, model.ErrInvalidDeckSize)

	_, err = s.service.Create(s.ctx, 1, "Long", s.cards[:model.DeckSize+1])
	s.ErrorIs(err, model.ErrInvalidDeckSize)

	unknown := append([]model.CardID{9999}, s.cards[:model.DeckSize-1]...)
	_, err = s.service.Create(s.ctx, 1, "Unknown", unknown)
	s.ErrorIs(err, model.ErrInvalidCards)

	_, err = s.service.Create(s.ctx, 1, "   ", s.cards[:model.DeckSize])
	s.ErrorIs(err, model.ErrInvalidDeckName)
}

// Read tests

func (s *ServiceSuite) TestListForUser() {
	first := s.create(1)
	s.create(2)
	second := s.create(1)

	decks, err := s.service.ListForUser(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Equal(first.ID, decks[0].ID)
	s.Equal(second.ID, decks[1].ID)
}

func (s *ServiceSuite) TestGetOwned() {
	deck := s.create(1)

	got, err := s.service.GetOwned(s.ctx, 1, deck.ID)
	s.Require().NoError(err)
	s.Equal(deck.ID, got.ID)

	_, err = s.service.GetOwned(s.ctx, 2, deck.ID)
	s.ErrorIs(err, model.ErrDeckNotOwned)

	_, err = s.service.GetOwned(s.ctx, 1, 999)
	s.ErrorIs(err, model.ErrDeckNotFound)
}

func (s *ServiceSuite) TestFindDeckByIDIgnoresOwner() {
	deck := s.create(1)

	got, err := s.service.FindDeckByID(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Equal(model.UserID(1), got.UserID)
}

// Update tests

func (s *ServiceSuite) TestUpdateName() {
	deck := s.create(1)
	s.clock.Advance(time.Minute)
	name := " Renamed "

	updated, err := s.service.Update(s.ctx, 1, deck.ID, &name, nil)
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)
	s.Equal(deck.CardIDs(), updated.CardIDs())
	s.Equal(s.clock.Now(), updated.UpdatedAt)
}

func (s *ServiceSuite) TestUpdateCards() {
	deck := s.create(1)
	replacement := s.cards[2:]

	updated, err := s.service.Update(s.ctx, 1, deck.ID, nil, replacement)
	s.Require().NoError(err)
	s.Equal(replacement, updated.CardIDs())
	s.Equal("Starter", updated.Name)
}

func (s *ServiceSuite) TestUpdateBlankNameIsIgnored() {
	deck := s.create(1)
	blank := ""

	updated, err := s.service.Update(s.ctx, 1, deck.ID, &blank, nil)
	s.Require().NoError(err)
	s.Equal("Starter", updated.Name)
}

func (s *ServiceSuite) TestUpdateValidation() {
	deck := s.create(1)

	_, err := s.service.Update(s.ctx, 1, deck.ID, nil, s.cards[:3])
	s.ErrorIs(err, model.ErrInvalidDeckSize)

	_, err = s.service.Update(s.ctx, 2, deck.ID, nil, nil)
	s.ErrorIs(err, model.ErrDeckNotOwned)

	stored, _ := s.service.FindDeckByID(s.ctx, deck.ID)
	s.Equal(deck.CardIDs(), stored.CardIDs())
}

// Delete tests

func (s *ServiceSuite) TestDelete() {
	deck := s.create(1)

	s.ErrorIs(s.service.Delete(s.ctx, 2, deck.ID), model.ErrDeckNotOwned)
	s.Require().NoError(s.service.Delete(s.ctx, 1, deck.ID))
	s.ErrorIs(s.service.Delete(s.ctx, 1, deck.ID), model.ErrDeckNotFound)
}
