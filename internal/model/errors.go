package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// Card errors
	ErrCardNotFound = errors.New("card not found")

	// Deck errors
	ErrDeckNotFound    = errors.New("deck not found")
	ErrDeckNotOwned    = errors.New("deck belongs to another user")
	ErrInvalidDeckSize = errors.New("deck must contain exactly 10 cards")
	ErrInvalidCards    = errors.New("deck references unknown cards")
	ErrInvalidDeckName = errors.New("deck name is required")

	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotJoinable = errors.New("room is not waiting for a guest")
	ErrNotRoomMember   = errors.New("user is not seated in this room")
	ErrDuplicateRoomID = errors.New("duplicate room id")

	// Channel errors
	ErrInvalidPayload = errors.New("invalid payload")
)
