package room

import (
	"sync"

	"github.com/mcoot/tcgarena/internal/model"
)

// Registry is the authoritative in-memory set of rooms and the only
// mutator of room state. Rooms are stored as values; every change swaps in
// a new value under the lock, so callers only ever hold snapshots.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]model.Room
	order []model.RoomID // insertion order
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[model.RoomID]model.Room),
	}
}

// Add inserts a newly created room
func (r *Registry) Add(room model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return model.ErrDuplicateRoomID
	}
	r.rooms[room.ID] = room
	r.order = append(r.order, room.ID)
	return nil
}

// Find returns the room with the given id
func (r *Registry) Find(id model.RoomID) (model.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// ListAvailable returns the waiting rooms in insertion order
func (r *Registry) ListAvailable() []model.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	available := make([]model.Room, 0, len(r.order))
	for _, id := range r.order {
		if room := r.rooms[id]; room.IsJoinable() {
			available = append(available, room)
		}
	}
	return available
}

// Remove deletes the room. Removing an unknown id is a no-op.
func (r *Registry) Remove(id model.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return
	}
	delete(r.rooms, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// TransitionIfWaiting seats the guest and moves the room to playing, but
// only if it is still waiting. The check and the write happen under one
// lock, so of two racing joins exactly one sees true.
func (r *Registry) TransitionIfWaiting(id model.RoomID, guest model.Player) (model.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok || !room.IsJoinable() {
		return model.Room{}, false
	}
	next := room.WithGuest(guest)
	r.rooms[id] = next
	return next, true
}

// Len returns the number of rooms in any state
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
