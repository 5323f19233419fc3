package gateway

import (
	"log/slog"
	"sync"

	"github.com/mcoot/tcgarena/internal/model"
)

// RoomLister provides the snapshot of joinable rooms
type RoomLister interface {
	GetAvailableRooms() []model.Room
}

// Broadcaster encodes room events and hands them to the hub
type Broadcaster struct {
	hub    *Hub
	rooms  RoomLister
	logger *slog.Logger

	// listMu spans snapshot and enqueue so list updates reach the hub in
	// snapshot order
	listMu sync.Mutex
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, rooms RoomLister, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		rooms:  rooms,
		logger: logger.With(slog.String("component", "gateway-broadcaster")),
	}
}

// SendEvent sends one event to a single client
func (b *Broadcaster) SendEvent(client *Client, event string, payload any) {
	msg, err := encodeEvent(event, payload)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	b.hub.SendTo(client, msg)
}

// SendError sends an errorMessage to a single client
func (b *Broadcaster) SendError(client *Client, message string) {
	b.SendEvent(client, EventErrorMessage, message)
}

// SendRoomsList answers a getRooms request
func (b *Broadcaster) SendRoomsList(client *Client) {
	b.SendEvent(client, EventRoomsList, RoomsFromModel(b.rooms.GetAvailableRooms()))
}

// BroadcastRoomsList pushes the current joinable rooms to every client
func (b *Broadcaster) BroadcastRoomsList() {
	b.listMu.Lock()
	defer b.listMu.Unlock()

	msg, err := encodeEvent(EventRoomsListUpdated, RoomsFromModel(b.rooms.GetAvailableRooms()))
	if err != nil {
		b.logger.Error("failed to encode rooms list", slog.Any("error", err))
		return
	}
	b.hub.Broadcast(msg)
}

// RoomRemoved drops the room's group and pushes the new list. A client
// that sees the update is already out of the group.
func (b *Broadcaster) RoomRemoved(id model.RoomID) {
	b.hub.CloseGroup(RoomGroup(id))
	b.BroadcastRoomsList()
}

// BroadcastGameStarted tells both members of a room that the game began
func (b *Broadcaster) BroadcastGameStarted(room model.Room) {
	msg, err := encodeEvent(EventGameStarted, GameStartedFromModel(room))
	if err != nil {
		b.logger.Error("failed to encode game start",
			slog.Int64("room_id", int64(room.ID)),
			slog.Any("error", err))
		return
	}
	b.hub.SendToGroup(RoomGroup(room.ID), msg)
}
