package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/tcgarena/internal/model"
)

// Inbound event names
const (
	EventCreateRoom = "createRoom"
	EventGetRooms   = "getRooms"
	EventJoinRoom   = "joinRoom"
)

// Outbound event names
const (
	EventRoomCreated      = "roomCreated"
	EventRoomsListUpdated = "roomsListUpdated"
	EventRoomsList        = "roomsList"
	EventGameStarted      = "gameStarted"
	EventErrorMessage     = "errorMessage"
)

// Envelope is the frame exchanged in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEvent builds an outbound frame
func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// CreateRoomPayload is the data of a createRoom event. Ids arrive as
// strings or numbers and are coerced.
type CreateRoomPayload struct {
	DeckID json.RawMessage `json:"deckId"`
}

// JoinRoomPayload is the data of a joinRoom event
type JoinRoomPayload struct {
	RoomID json.RawMessage `json:"roomId"`
	DeckID json.RawMessage `json:"deckId"`
}

// Player is a seated player on the wire
type Player struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	DeckID      int64  `json:"deckId"`
}

// Room is a room on the wire
type Room struct {
	ID     int64   `json:"id"`
	Host   Player  `json:"host"`
	Guest  *Player `json:"guest,omitempty"`
	Status string  `json:"status"`
}

// SideState is one player's view of a started game
type SideState struct {
	YourDeckID     int64 `json:"yourDeckId"`
	OpponentDeckID int64 `json:"opponentDeckId"`
}

// GameStarted is the payload of a gameStarted event
type GameStarted struct {
	RoomID int64     `json:"roomId"`
	Host   SideState `json:"host"`
	Guest  SideState `json:"guest"`
}

// PlayerFromModel converts a model.Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		UserID:      int64(p.UserID),
		DisplayName: p.DisplayName,
		DeckID:      int64(p.DeckID),
	}
}

// RoomFromModel converts a model.Room
func RoomFromModel(r model.Room) Room {
	out := Room{
		ID:     int64(r.ID),
		Host:   PlayerFromModel(r.Host),
		Status: string(r.Status),
	}
	if r.Guest != nil {
		g := PlayerFromModel(*r.Guest)
		out.Guest = &g
	}
	return out
}

// RoomsFromModel converts a room list, never returning nil
func RoomsFromModel(rooms []model.Room) []Room {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = RoomFromModel(r)
	}
	return out
}

// GameStartedFromModel computes the mirrored per-side payload of a started room
func GameStartedFromModel(r model.Room) GameStarted {
	var guestDeck int64
	if r.Guest != nil {
		guestDeck = int64(r.Guest.DeckID)
	}
	hostDeck := int64(r.Host.DeckID)
	return GameStarted{
		RoomID: int64(r.ID),
		Host:   SideState{YourDeckID: hostDeck, OpponentDeckID: guestDeck},
		Guest:  SideState{YourDeckID: guestDeck, OpponentDeckID: hostDeck},
	}
}

// coerceID turns a JSON string or number into an integer id. Missing,
// null, blank, fractional and non-numeric values are rejected.
func coerceID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, model.ErrInvalidPayload
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, model.ErrInvalidPayload
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return 0, model.ErrInvalidPayload
		}
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, model.ErrInvalidPayload
	}
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f >= 1<<63 || f < -(1<<63) {
		return 0, model.ErrInvalidPayload
	}
	return int64(f), nil
}
