package room

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/testutil"
)

// fakeDecks is an in-memory DeckFinder
type fakeDecks struct {
	mu    sync.Mutex
	decks map[model.DeckID]*model.Deck
	err   error
}

func newFakeDecks() *fakeDecks {
	return &fakeDecks{decks: make(map[model.DeckID]*model.Deck)}
}

func (f *fakeDecks) FindDeckByID(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	deck, ok := f.decks[id]
	if !ok {
		return nil, model.ErrDeckNotFound
	}
	d := *deck
	return &d, nil
}

func (f *fakeDecks) put(id model.DeckID, owner model.UserID, size int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cards := make([]model.Card, size)
	for i := range cards {
		cards[i] = model.Card{ID: model.CardID(i + 1)}
	}
	f.decks[id] = &model.Deck{ID: id, UserID: owner, Name: "deck", Cards: cards}
}

const (
	hostID  model.UserID = 1
	guestID model.UserID = 2
	thirdID model.UserID = 3

	hostDeck  model.DeckID = 100
	guestDeck model.DeckID = 200
	thirdDeck model.DeckID = 300
	shortDeck model.DeckID = 201
)

type ControllerSuite struct {
	suite.Suite
	registry   *Registry
	decks      *fakeDecks
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.registry = NewRegistry()
	s.decks = newFakeDecks()
	s.decks.put(hostDeck, hostID, model.DeckSize)
	s.decks.put(guestDeck, guestID, model.DeckSize)
	s.decks.put(thirdDeck, thirdID, model.DeckSize)
	s.decks.put(shortDeck, guestID, model.DeckSize-1)
	s.controller = NewController(s.registry, s.decks, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createRoom() model.Room {
	room, err := s.controller.CreateRoom(s.ctx, hostID, "host@example.com", hostDeck)
	s.Require().NoError(err)
	return room
}

// ValidateDeck tests

func (s *ControllerSuite) TestValidateDeck() {
	deck, err := s.controller.ValidateDeck(s.ctx, hostID, hostDeck)
	s.Require().NoError(err)
	s.Equal(hostDeck, deck.ID)
}

func (s *ControllerSuite) TestValidateDeckErrors() {
	_, err := s.controller.ValidateDeck(s.ctx, hostID, 999)
	s.ErrorIs(err, model.ErrDeckNotFound)

	_, err = s.controller.ValidateDeck(s.ctx, hostID, guestDeck)
	s.ErrorIs(err, model.ErrDeckNotOwned)

	_, err = s.controller.ValidateDeck(s.ctx, guestID, shortDeck)
	s.ErrorIs(err, model.ErrInvalidDeckSize)
}

func (s *ControllerSuite) TestValidateDeckPassesLookupFailures() {
	boom := errors.New("storage down")
	s.decks.err = boom

	_, err := s.controller.ValidateDeck(s.ctx, hostID, hostDeck)
	s.ErrorIs(err, boom)
	s.False(IsDomainError(err))
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoom() {
	room := s.createRoom()

	s.Equal(model.RoomID(1), room.ID)
	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Nil(room.Guest)
	s.Equal(model.Player{UserID: hostID, DisplayName: "host@example.com", DeckID: hostDeck}, room.Host)

	s.Equal([]model.Room{room}, s.controller.GetAvailableRooms())
}

func (s *ControllerSuite) TestCreateRoomIDsIncrease() {
	first := s.createRoom()
	second := s.createRoom()
	s.Less(first.ID, second.ID)

	s.controller.RemoveRoom(second.ID)
	third := s.createRoom()
	s.Less(second.ID, third.ID)
}

func (s *ControllerSuite) TestCreateRoomRejectsForeignDeck() {
	_, err := s.controller.CreateRoom(s.ctx, hostID, "host", guestDeck)
	s.ErrorIs(err, model.ErrDeckNotOwned)
	s.Empty(s.controller.GetAvailableRooms())
}

func (s *ControllerSuite) TestCreateRoomDuplicateID() {
	logger, logs := testutil.CaptureLogger()
	controller := NewController(s.registry, s.decks, logger)
	s.Require().NoError(s.registry.Add(waitingRoom(1, thirdID)))

	_, err := controller.CreateRoom(s.ctx, hostID, "host", hostDeck)
	s.ErrorIs(err, model.ErrDuplicateRoomID)
	s.False(IsDomainError(err))

	entry, ok := logs.Find("room id collision")
	s.Require().True(ok, logs.String())
	s.Equal("ERROR", entry["level"])
	s.EqualValues(1, entry["room_id"])
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoom() {
	room := s.createRoom()

	joined, err := s.controller.JoinRoom(s.ctx, guestID, "guest@example.com", room.ID, guestDeck)
	s.Require().NoError(err)

	s.Equal(model.RoomStatusPlaying, joined.Status)
	s.Require().NotNil(joined.Guest)
	s.Equal(guestDeck, joined.Guest.DeckID)
	s.Equal(hostDeck, joined.Host.DeckID)
	s.Empty(s.controller.GetAvailableRooms())

	stored, err := s.controller.GetRoom(room.ID)
	s.Require().NoError(err)
	s.Equal(joined, stored)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	_, err := s.controller.JoinRoom(s.ctx, guestID, "guest", 999, guestDeck)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinRoomAlreadyPlaying() {
	room := s.createRoom()
	_, err := s.controller.JoinRoom(s.ctx, guestID, "guest", room.ID, guestDeck)
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, thirdID, "third", room.ID, thirdDeck)
	s.ErrorIs(err, model.ErrRoomNotJoinable)

	stored, _ := s.controller.GetRoom(room.ID)
	s.Equal(guestID, stored.Guest.UserID)
}

func (s *ControllerSuite) TestJoinRoomInvalidDeckLeavesRoomWaiting() {
	room := s.createRoom()

	_, err := s.controller.JoinRoom(s.ctx, guestID, "guest", room.ID, shortDeck)
	s.ErrorIs(err, model.ErrInvalidDeckSize)

	_, err = s.controller.JoinRoom(s.ctx, guestID, "guest", room.ID, hostDeck)
	s.ErrorIs(err, model.ErrDeckNotOwned)

	stored, _ := s.controller.GetRoom(room.ID)
	s.Equal(model.RoomStatusWaiting, stored.Status)
	s.Len(s.controller.GetAvailableRooms(), 1)
}

func (s *ControllerSuite) TestHostMayJoinOwnRoom() {
	room := s.createRoom()

	joined, err := s.controller.JoinRoom(s.ctx, hostID, "host", room.ID, hostDeck)
	s.Require().NoError(err)
	s.Equal(hostID, joined.Guest.UserID)
}

func (s *ControllerSuite) TestDeckEditedAfterCreateIsRevalidatedOnJoin() {
	room := s.createRoom()
	s.decks.put(guestDeck, guestID, model.DeckSize+1)

	_, err := s.controller.JoinRoom(s.ctx, guestID, "guest", room.ID, guestDeck)
	s.ErrorIs(err, model.ErrInvalidDeckSize)
}

func (s *ControllerSuite) TestConcurrentJoinsOneWins() {
	for i := 0; i < 50; i++ {
		room := s.createRoom()

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, 2)
		players := []struct {
			user model.UserID
			deck model.DeckID
		}{{guestID, guestDeck}, {thirdID, thirdDeck}}

		for j, p := range players {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, errs[j] = s.controller.JoinRoom(s.ctx, p.user, "p", room.ID, p.deck)
			}()
		}
		close(start)
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			s.ErrorIs(err, model.ErrRoomNotJoinable)
		}
		s.Equal(1, wins, "round %d", i)
	}
}

// JoinRoom after the room was removed during deck validation
type removingDecks struct {
	*fakeDecks
	onFind func()
}

func (r *removingDecks) FindDeckByID(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	if r.onFind != nil {
		r.onFind()
	}
	return r.fakeDecks.FindDeckByID(ctx, id)
}

func (s *ControllerSuite) TestJoinRoomRemovedDuringValidation() {
	decks := &removingDecks{fakeDecks: s.decks}
	controller := NewController(s.registry, decks, testutil.NopLogger())
	room, err := controller.CreateRoom(s.ctx, hostID, "host", hostDeck)
	s.Require().NoError(err)

	decks.onFind = func() { s.registry.Remove(room.ID) }
	_, err = controller.JoinRoom(s.ctx, guestID, "guest", room.ID, guestDeck)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinRoomLostRaceDuringValidation() {
	decks := &removingDecks{fakeDecks: s.decks}
	controller := NewController(s.registry, decks, testutil.NopLogger())
	room, err := controller.CreateRoom(s.ctx, hostID, "host", hostDeck)
	s.Require().NoError(err)

	decks.onFind = func() {
		s.registry.TransitionIfWaiting(room.ID, model.Player{UserID: thirdID, DeckID: thirdDeck})
	}
	_, err = controller.JoinRoom(s.ctx, guestID, "guest", room.ID, guestDeck)
	s.ErrorIs(err, model.ErrRoomNotJoinable)
}

// Remove tests

func (s *ControllerSuite) TestRemoveRoom() {
	room := s.createRoom()

	s.controller.RemoveRoom(room.ID)
	s.controller.RemoveRoom(room.ID)

	_, err := s.controller.GetRoom(room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Empty(s.controller.GetAvailableRooms())
}

func (s *ControllerSuite) TestRemoveRoomAs() {
	room := s.createRoom()
	_, err := s.controller.JoinRoom(s.ctx, guestID, "guest", room.ID, guestDeck)
	s.Require().NoError(err)

	s.ErrorIs(s.controller.RemoveRoomAs(thirdID, room.ID), model.ErrNotRoomMember)
	s.Require().NoError(s.controller.RemoveRoomAs(guestID, room.ID))
	s.ErrorIs(s.controller.RemoveRoomAs(guestID, room.ID), model.ErrRoomNotFound)
}

func TestIsDomainError(t *testing.T) {
	suite.Run(t, new(domainErrorSuite))
}

type domainErrorSuite struct{ suite.Suite }

func (s *domainErrorSuite) TestClassification() {
	s.True(IsDomainError(model.ErrRoomNotFound))
	s.True(IsDomainError(errors.Join(errors.New("ctx"), model.ErrInvalidDeckSize)))
	s.False(IsDomainError(model.ErrDuplicateRoomID))
	s.False(IsDomainError(context.DeadlineExceeded))
}

// Any deck whose size is not exactly DeckSize is refused on create and on join.
func TestDeckSizeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(0, 3*model.DeckSize).Draw(t, "size")

		decks := newFakeDecks()
		decks.put(hostDeck, hostID, size)
		decks.put(guestDeck, guestID, size)
		decks.put(thirdDeck, hostID, model.DeckSize)
		controller := NewController(NewRegistry(), decks, testutil.NopLogger())
		ctx := context.Background()

		_, createErr := controller.CreateRoom(ctx, hostID, "host", hostDeck)

		room, err := controller.CreateRoom(ctx, hostID, "host", thirdDeck)
		if err != nil {
			t.Fatalf("create with valid deck: %v", err)
		}
		_, joinErr := controller.JoinRoom(ctx, guestID, "guest", room.ID, guestDeck)

		if size == model.DeckSize {
			if createErr != nil || joinErr != nil {
				t.Fatalf("size %d: create %v, join %v", size, createErr, joinErr)
			}
			return
		}
		if !errors.Is(createErr, model.ErrInvalidDeckSize) {
			t.Fatalf("size %d: create error %v", size, createErr)
		}
		if !errors.Is(joinErr, model.ErrInvalidDeckSize) {
			t.Fatalf("size %d: join error %v", size, joinErr)
		}
		if got, _ := controller.GetRoom(room.ID); got.Status != model.RoomStatusWaiting {
			t.Fatalf("size %d: room left %s", size, got.Status)
		}
	})
}
