package model

import "time"

// UserID identifies a registered account
type UserID int64

// User is a registered account. Stored with its bcrypt password hash;
// the hash never leaves the storage and auth layers.
type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Player is a user seated in a room with the deck they brought
type Player struct {
	UserID      UserID
	DisplayName string
	DeckID      DeckID
}
