package room

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/mcoot/tcgarena/internal/model"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry()
}

func waitingRoom(id model.RoomID, hostID model.UserID) model.Room {
	return model.Room{
		ID:     id,
		Host:   model.Player{UserID: hostID, DisplayName: "host", DeckID: 1},
		Status: model.RoomStatusWaiting,
	}
}

func (s *RegistrySuite) TestAddAndFind() {
	s.Require().NoError(s.registry.Add(waitingRoom(1, 10)))

	room, ok := s.registry.Find(1)
	s.True(ok)
	s.Equal(model.UserID(10), room.Host.UserID)

	_, ok = s.registry.Find(2)
	s.False(ok)
}

func (s *RegistrySuite) TestAddDuplicateID() {
	s.Require().NoError(s.registry.Add(waitingRoom(1, 10)))

	err := s.registry.Add(waitingRoom(1, 11))
	s.ErrorIs(err, model.ErrDuplicateRoomID)

	room, _ := s.registry.Find(1)
	s.Equal(model.UserID(10), room.Host.UserID)
}

func (s *RegistrySuite) TestListAvailableKeepsInsertionOrder() {
	for _, id := range []model.RoomID{3, 1, 2} {
		s.Require().NoError(s.registry.Add(waitingRoom(id, 10)))
	}

	var ids []model.RoomID
	for _, room := range s.registry.ListAvailable() {
		ids = append(ids, room.ID)
	}
	s.Equal([]model.RoomID{3, 1, 2}, ids)
}

func (s *RegistrySuite) TestListAvailableEmpty() {
	available := s.registry.ListAvailable()
	s.NotNil(available)
	s.Empty(available)
}

func (s *RegistrySuite) TestTransitionIfWaiting() {
	s.Require().NoError(s.registry.Add(waitingRoom(1, 10)))
	guest := model.Player{UserID: 20, DisplayName: "guest", DeckID: 2}

	joined, ok := s.registry.TransitionIfWaiting(1, guest)
	s.Require().True(ok)
	s.Equal(model.RoomStatusPlaying, joined.Status)
	s.Require().NotNil(joined.Guest)
	s.Equal(guest, *joined.Guest)
	s.Empty(s.registry.ListAvailable())

	_, ok = s.registry.TransitionIfWaiting(1, model.Player{UserID: 30})
	s.False(ok)

	stored, _ := s.registry.Find(1)
	s.Equal(model.UserID(20), stored.Guest.UserID)
}

func (s *RegistrySuite) TestTransitionUnknownRoom() {
	_, ok := s.registry.TransitionIfWaiting(42, model.Player{UserID: 20})
	s.False(ok)
}

func (s *RegistrySuite) TestSnapshotsDoNotChange() {
	s.Require().NoError(s.registry.Add(waitingRoom(1, 10)))
	before, _ := s.registry.Find(1)

	_, ok := s.registry.TransitionIfWaiting(1, model.Player{UserID: 20})
	s.Require().True(ok)

	s.Equal(model.RoomStatusWaiting, before.Status)
	s.Nil(before.Guest)
}

func (s *RegistrySuite) TestRemoveIsIdempotent() {
	s.Require().NoError(s.registry.Add(waitingRoom(1, 10)))
	s.Require().NoError(s.registry.Add(waitingRoom(2, 10)))

	s.registry.Remove(1)
	s.registry.Remove(1)
	s.registry.Remove(99)

	_, ok := s.registry.Find(1)
	s.False(ok)
	s.Equal(1, s.registry.Len())
	s.Len(s.registry.ListAvailable(), 1)
}

// TestRegistryStateMachine drives random add/join/remove sequences and
// checks the registry against a simple model after every step.
func TestRegistryStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		registry := NewRegistry()
		statuses := map[model.RoomID]model.RoomStatus{}
		var order []model.RoomID
		var nextID model.RoomID

		pick := func(t *rapid.T) model.RoomID {
			// ids past the end exercise unknown rooms
			return model.RoomID(rapid.Int64Range(1, int64(nextID)+2).Draw(t, "room"))
		}

		t.Repeat(map[string]func(*rapid.T){
			"add": func(t *rapid.T) {
				nextID++
				host := model.UserID(rapid.Int64Range(1, 5).Draw(t, "host"))
				if err := registry.Add(waitingRoom(nextID, host)); err != nil {
					t.Fatalf("add %d: %v", nextID, err)
				}
				statuses[nextID] = model.RoomStatusWaiting
				order = append(order, nextID)
			},
			"join": func(t *rapid.T) {
				id := pick(t)
				guest := model.Player{UserID: model.UserID(rapid.Int64Range(1, 5).Draw(t, "guest"))}
				joined, ok := registry.TransitionIfWaiting(id, guest)

				want := statuses[id] == model.RoomStatusWaiting
				if ok != want {
					t.Fatalf("join %d: got %v, want %v", id, ok, want)
				}
				if ok {
					if joined.Guest == nil || joined.Guest.UserID != guest.UserID {
						t.Fatalf("join %d: guest not seated", id)
					}
					statuses[id] = model.RoomStatusPlaying
				}
			},
			"remove": func(t *rapid.T) {
				id := pick(t)
				registry.Remove(id)
				delete(statuses, id)
			},
			"": func(t *rapid.T) {
				if registry.Len() != len(statuses) {
					t.Fatalf("len %d, want %d", registry.Len(), len(statuses))
				}
				var want []model.RoomID
				for _, id := range order {
					if statuses[id] == model.RoomStatusWaiting {
						want = append(want, id)
					}
				}
				available := registry.ListAvailable()
				if len(available) != len(want) {
					t.Fatalf("available %d rooms, want %d", len(available), len(want))
				}
				for i, room := range available {
					if room.Status != model.RoomStatusWaiting {
						t.Fatalf("room %d listed while %s", room.ID, room.Status)
					}
					if room.ID != want[i] {
						t.Fatalf("available[%d] = %d, want %d", i, room.ID, want[i])
					}
				}
				for id, status := range statuses {
					room, ok := registry.Find(id)
					if !ok || room.Status != status {
						t.Fatalf("room %d: found %v status %s, want %s", id, ok, room.Status, status)
					}
					if (room.Guest != nil) != (status == model.RoomStatusPlaying) {
						t.Fatalf("room %d: guest presence does not match %s", id, status)
					}
				}
			},
		})
	})
}
