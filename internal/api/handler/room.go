package handler

import (
	"net/http"

	"github.com/mcoot/tcgarena/internal/api/middleware"
	"github.com/mcoot/tcgarena/internal/api/response"
	"github.com/mcoot/tcgarena/internal/gateway"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/room"
)

// RoomHandler exposes the room registry over REST. Room creation and
// joining only happen on the realtime channel.
type RoomHandler struct {
	rooms       room.ControllerInterface
	broadcaster *gateway.Broadcaster
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface, broadcaster *gateway.Broadcaster) *RoomHandler {
	return &RoomHandler{
		rooms:       rooms,
		broadcaster: broadcaster,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, gateway.RoomsFromModel(h.rooms.GetAvailableRooms()))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.GetRoom(model.RoomID(id))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gateway.RoomFromModel(rm))
}

// Delete handles DELETE /api/v1/rooms/{id}. Only the host or guest may end a room.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.RemoveRoomAs(identity.UserID, model.RoomID(id)); err != nil {
		WriteError(w, err)
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.RoomRemoved(model.RoomID(id))
	}
	response.NoContent(w)
}
