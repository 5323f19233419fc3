package redis

import (
	"fmt"

	"github.com/mcoot/tcgarena/internal/model"
)

// Key prefix for all tcgarena data
const keyPrefix = "tcgarena"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%d", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// cardKey returns the Redis key for a Card
func cardKey(id model.CardID) string {
	return fmt.Sprintf("%s:card:%d", keyPrefix, id)
}

// cardsIndexKey returns the Redis key for the SET of all card keys
func cardsIndexKey() string {
	return fmt.Sprintf("%s:idx:cards", keyPrefix)
}

// deckKey returns the Redis key for a Deck
func deckKey(id model.DeckID) string {
	return fmt.Sprintf("%s:deck:%d", keyPrefix, id)
}

// decksForUserIndexKey returns the Redis key for the SET of deck keys owned by a user
func decksForUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:decks_for_user:%d", keyPrefix, userID)
}

// sequenceKey returns the Redis key of the INCR counter for an entity kind
func sequenceKey(kind string) string {
	return fmt.Sprintf("%s:seq:%s", keyPrefix, kind)
}
