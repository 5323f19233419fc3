package model

import "strconv"

// RoomID identifies a room for the lifetime of the process
type RoomID int64

func (id RoomID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// RoomStatus represents where a room is in matchmaking
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "WAITING" // Host seated, open to a guest
	RoomStatusPlaying RoomStatus = "PLAYING" // Both seats taken, terminal for matchmaking
)

// Room pairs a host with at most one guest.
//
// Rooms are values: a transition produces a new Room rather than mutating
// a shared one, so a copy handed to a reader never changes underneath it.
type Room struct {
	ID     RoomID
	Host   Player
	Guest  *Player // nil while Status is waiting
	Status RoomStatus
}

// IsJoinable reports whether a guest may still take the second seat
func (r Room) IsJoinable() bool {
	return r.Status == RoomStatusWaiting
}

// HasMember reports whether the user is seated in the room
func (r Room) HasMember(userID UserID) bool {
	if r.Host.UserID == userID {
		return true
	}
	return r.Guest != nil && r.Guest.UserID == userID
}

// WithGuest returns a copy of the room with the guest seated and the game started
func (r Room) WithGuest(guest Player) Room {
	g := guest
	r.Guest = &g
	r.Status = RoomStatusPlaying
	return r
}
