package response

import (
	"time"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/auth"
)

// User represents an account in API responses
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User, leaving the password hash behind
func UserFromModel(u *model.User) User {
	return User{
		ID:        int64(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// SignUpResponse is the response for account creation
type SignUpResponse struct {
	User User `json:"user"`
}

// SignInResponse is the response for sign-in
type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// SignInResponseFromSession creates a SignInResponse from a session
func SignInResponseFromSession(s *auth.Session) SignInResponse {
	return SignInResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      UserFromModel(&s.User),
	}
}

// Card represents a catalog card
type Card struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	HP            int    `json:"hp"`
	Attack        int    `json:"attack"`
	Type          string `json:"type"`
	PokedexNumber int    `json:"pokedexNumber"`
	ImageURL      string `json:"imgUrl,omitempty"`
}

// CardFromModel converts model.Card
func CardFromModel(c model.Card) Card {
	return Card{
		ID:            int64(c.ID),
		Name:          c.Name,
		HP:            c.HP,
		Attack:        c.Attack,
		Type:          string(c.Type),
		PokedexNumber: c.PokedexNumber,
		ImageURL:      c.ImageURL,
	}
}

// CardsFromModel converts a card list, never returning nil
func CardsFromModel(cards []model.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = CardFromModel(c)
	}
	return out
}

// Deck represents a deck with its resolved cards
type Deck struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeckFromModel converts model.Deck
func DeckFromModel(d *model.Deck) Deck {
	return Deck{
		ID:        int64(d.ID),
		UserID:    int64(d.UserID),
		Name:      d.Name,
		Cards:     CardsFromModel(d.Cards),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DecksFromModel converts a deck list, never returning nil
func DecksFromModel(decks []model.Deck) []Deck {
	out := make([]Deck, len(decks))
	for i := range decks {
		out[i] = DeckFromModel(&decks[i])
	}
	return out
}

// Health is the response of the health endpoint
type Health struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}
