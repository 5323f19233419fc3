package model

import "time"

// DeckSize is the exact number of cards a playable deck holds
const DeckSize = 10

// CardID identifies a card in the catalog
type CardID int64

// CardType is the elemental type of a card
type CardType string

// Card is a catalog entry
type Card struct {
	ID            CardID
	Name          string
	HP            int
	Attack        int
	Type          CardType
	PokedexNumber int
	ImageURL      string
}

// DeckID identifies a deck
type DeckID int64

// Deck is a named list of cards owned by a user. The same card may appear
// more than once.
type Deck struct {
	ID        DeckID
	UserID    UserID
	Name      string
	Cards     []Card
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CardIDs returns the ids of the deck's cards in order
func (d *Deck) CardIDs() []CardID {
	ids := make([]CardID, len(d.Cards))
	for i, c := range d.Cards {
		ids[i] = c.ID
	}
	return ids
}
