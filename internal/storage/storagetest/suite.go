// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Suite runs the storage contract. Backends embed it and set NewStorage.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

var createdAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) createUser(name string) *model.User {
	user := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    createdAt,
	}
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, user))
	return user
}

func (s *Suite) saveCatalog(n int) []model.Card {
	cards := make([]model.Card, n)
	for i := range cards {
		cards[i] = model.Card{
			Name:          fmt.Sprintf("Card %d", i),
			HP:            40 + i,
			Attack:        30 + i,
			Type:          "FIRE",
			PokedexNumber: n - i,
		}
	}
	s.Require().NoError(s.Storage.SaveCards(s.Ctx, cards))
	return cards
}

func (s *Suite) createDeck(userID model.UserID, cards []model.Card) *model.Deck {
	deck := &model.Deck{
		UserID:    userID,
		Name:      "Deck",
		Cards:     cards,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, deck))
	return deck
}

// User tests

func (s *Suite) TestCreateUserAssignsIDs() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	s.Positive(int64(alice.ID))
	s.NotEqual(alice.ID, bob.ID)

	retrieved, err := s.Storage.GetUser(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("hash", retrieved.PasswordHash)
	s.True(createdAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestCreateUserDuplicateEmail() {
	s.createUser("alice")

	dup := &model.User{Username: "other", Email: "ALICE@example.com", PasswordHash: "x", CreatedAt: createdAt}
	err := s.Storage.CreateUser(s.Ctx, dup)
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *Suite) TestGetUserByEmailIgnoresCase() {
	alice := s.createUser("alice")

	retrieved, err := s.Storage.GetUserByEmail(s.Ctx, "  Alice@Example.com ")
	s.Require().NoError(err)
	s.Equal(alice.ID, retrieved.ID)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, 999)
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Storage.GetUserByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Card tests

func (s *Suite) TestSaveCardsAssignsIDsAndListsByPokedex() {
	cards := s.saveCatalog(5)
	for _, c := range cards {
		s.Positive(int64(c.ID))
	}

	listed, err := s.Storage.ListCards(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(listed, 5)
	for i := 1; i < len(listed); i++ {
		s.LessOrEqual(listed[i-1].PokedexNumber, listed[i].PokedexNumber)
	}
	s.Equal("Card 4", listed[0].Name)
}

func (s *Suite) TestSaveCardsUpserts() {
	cards := s.saveCatalog(2)

	updated := cards[0]
	updated.HP = 999
	s.Require().NoError(s.Storage.SaveCards(s.Ctx, []model.Card{updated}))

	got, err := s.Storage.GetCard(s.Ctx, updated.ID)
	s.Require().NoError(err)
	s.Equal(999, got.HP)

	listed, err := s.Storage.ListCards(s.Ctx)
	s.Require().NoError(err)
	s.Len(listed, 2)
}

func (s *Suite) TestGetCardNotFound() {
	_, err := s.Storage.GetCard(s.Ctx, 12345)
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *Suite) TestGetCardsByIDsReturnsDistinctExisting() {
	cards := s.saveCatalog(3)

	found, err := s.Storage.GetCardsByIDs(s.Ctx, []model.CardID{cards[2].ID, cards[0].ID, cards[2].ID, 9999})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal(cards[0].ID, found[0].ID)
	s.Equal(cards[2].ID, found[1].ID)
}

// Deck tests

func (s *Suite) TestCreateAndGetDeckKeepsOrderAndRepeats() {
	user := s.createUser("alice")
	cards := s.saveCatalog(3)
	deckCards := []model.Card{cards[2], cards[0], cards[2]}

	deck := s.createDeck(user.ID, deckCards)
	s.Positive(int64(deck.ID))

	got, err := s.Storage.GetDeck(s.Ctx, deck.ID)
	s.Require().NoError(err)
	s.Equal(user.ID, got.UserID)
	s.Equal("Deck", got.Name)
	s.Equal([]model.CardID{cards[2].ID, cards[0].ID, cards[2].ID}, got.CardIDs())
	s.Equal(cards[2].Name, got.Cards[0].Name)
	s.True(createdAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetDeckNotFound() {
	_, err := s.Storage.GetDeck(s.Ctx, 404)
	s.ErrorIs(err, model.ErrDeckNotFound)
}

func (s *Suite) TestListDecksByUser() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	cards := s.saveCatalog(2)

	first := s.createDeck(alice.ID, cards)
	s.createDeck(bob.ID, cards)
	second := s.createDeck(alice.ID, cards[:1])

	decks, err := s.Storage.ListDecksByUser(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Equal(first.ID, decks[0].ID)
	s.Equal(second.ID, decks[1].ID)
	s.Len(decks[1].Cards, 1)

	none, err := s.Storage.ListDecksByUser(s.Ctx, 999)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestUpdateDeckReplacesCards() {
	user := s.createUser("alice")
	cards := s.saveCatalog(3)
	deck := s.createDeck(user.ID, cards[:2])

	deck.Name = "Renamed"
	deck.Cards = []model.Card{cards[1], cards[1], cards[1]}
	deck.UpdatedAt = createdAt.Add(time.Hour)
	s.Require().NoError(s.Storage.UpdateDeck(s.Ctx, deck))

	got, err := s.Storage.GetDeck(s.Ctx, deck.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.Equal([]model.CardID{cards[1].ID, cards[1].ID, cards[1].ID}, got.CardIDs())
	s.True(createdAt.Add(time.Hour).Equal(got.UpdatedAt))
}

func (s *Suite) TestUpdateDeckNotFound() {
	err := s.Storage.UpdateDeck(s.Ctx, &model.Deck{ID: 404, UserID: 1, Name: "x"})
	s.ErrorIs(err, model.ErrDeckNotFound)
}

func (s *Suite) TestDeleteDeck() {
	user := s.createUser("alice")
	cards := s.saveCatalog(1)
	deck := s.createDeck(user.ID, cards)

	s.Require().NoError(s.Storage.DeleteDeck(s.Ctx, deck.ID))

	_, err := s.Storage.GetDeck(s.Ctx, deck.ID)
	s.ErrorIs(err, model.ErrDeckNotFound)

	err = s.Storage.DeleteDeck(s.Ctx, deck.ID)
	s.ErrorIs(err, model.ErrDeckNotFound)

	decks, err := s.Storage.ListDecksByUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(decks)
}
