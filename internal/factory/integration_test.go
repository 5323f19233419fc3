package factory

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/seed"
	"github.com/mcoot/tcgarena/internal/services/auth"
	redisstorage "github.com/mcoot/tcgarena/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	_, err := s.app.LoadCatalog(s.ctx)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) player(name string) (*TestUser, *model.Deck) {
	user, err := s.app.CreateUser(s.ctx, name)
	s.Require().NoError(err)
	deck, err := s.app.CreateDeck(s.ctx, user.User.ID, model.DeckSize)
	s.Require().NoError(err)
	return user, deck
}

// Test: sign up, build decks, create a room, join it, clean up
func (s *IntegrationSuite) TestCompleteMatchmakingFlow() {
	red, redDeck := s.player("red")
	blue, blueDeck := s.player("blue")

	// Step 1: tokens identify their users
	identity, err := s.app.AuthService.VerifyToken(red.Token)
	s.Require().NoError(err)
	s.Equal(red.User.ID, identity.UserID)

	// Step 2: red hosts
	room, err := s.app.RoomController.CreateRoom(s.ctx, red.User.ID, red.User.Email, redDeck.ID)
	s.Require().NoError(err)
	s.Len(s.app.RoomController.GetAvailableRooms(), 1)

	// Step 3: blue joins
	joined, err := s.app.RoomController.JoinRoom(s.ctx, blue.User.ID, blue.User.Email, room.ID, blueDeck.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, joined.Status)
	s.Empty(s.app.RoomController.GetAvailableRooms())
	s.Equal(1, s.app.RoomRegistry.Len())

	// Step 4: the guest ends the room
	s.Require().NoError(s.app.RoomController.RemoveRoomAs(blue.User.ID, room.ID))
	s.Equal(0, s.app.RoomRegistry.Len())
}

// Test: a deck edited down after creation can no longer be attached
func (s *IntegrationSuite) TestDeckRevalidatedOnEveryAttachment() {
	red, redDeck := s.player("red")
	blue, blueDeck := s.player("blue")

	room, err := s.app.RoomController.CreateRoom(s.ctx, red.User.ID, red.User.Email, redDeck.ID)
	s.Require().NoError(err)

	broken := *blueDeck
	broken.Cards = broken.Cards[:model.DeckSize-2]
	s.Require().NoError(s.app.Storage.UpdateDeck(s.ctx, &broken))

	_, err = s.app.RoomController.JoinRoom(s.ctx, blue.User.ID, blue.User.Email, room.ID, blueDeck.ID)
	s.ErrorIs(err, model.ErrInvalidDeckSize)

	s.Require().NoError(s.app.DeckService.Delete(s.ctx, blue.User.ID, blueDeck.ID))
	_, err = s.app.RoomController.JoinRoom(s.ctx, blue.User.ID, blue.User.Email, room.ID, blueDeck.ID)
	s.ErrorIs(err, model.ErrDeckNotFound)
}

// Test: many guests race for one seat
func (s *IntegrationSuite) TestManyConcurrentJoins() {
	red, redDeck := s.player("red")
	room, err := s.app.RoomController.CreateRoom(s.ctx, red.User.ID, red.User.Email, redDeck.ID)
	s.Require().NoError(err)

	const guests = 8
	type guest struct {
		user *TestUser
		deck *model.Deck
	}
	players := make([]guest, guests)
	for i := range players {
		u, d := s.player("guest" + string(rune('a'+i)))
		players[i] = guest{u, d}
	}

	var wg sync.WaitGroup
	errs := make([]error, guests)
	start := make(chan struct{})
	for i, p := range players {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = s.app.RoomController.JoinRoom(s.ctx, p.user.User.ID, p.user.User.Email, room.ID, p.deck.ID)
		}()
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, model.ErrRoomNotJoinable):
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, wins)
}

// Test: the factory wires every storage backend

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected an error without a secret")
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{AuthConfig: auth.Config{Secret: []byte("x")}, StorageType: "cassandra"})
	if err == nil {
		t.Fatal("expected an error for an unknown storage type")
	}
}

type BackendSuite struct {
	suite.Suite
}

func TestBackendSuite(t *testing.T) {
	suite.Run(t, new(BackendSuite))
}

func (s *BackendSuite) exercise(cfg Config) {
	cfg.AuthConfig = auth.Config{Secret: []byte("backend-secret")}
	app, err := New(cfg)
	s.Require().NoError(err)
	app.Start()
	defer func() { s.NoError(app.Close()) }()

	ctx := context.Background()
	s.Require().NoError(app.Seeder.Run(ctx, seed.Options{Catalog: true, DemoUsers: true}))

	var hosts []model.Room
	for _, demo := range seed.DemoUsers {
		session, err := app.AuthService.SignIn(ctx, demo.Email, seed.DemoPassword)
		s.Require().NoError(err)
		decks, err := app.DeckService.ListForUser(ctx, session.User.ID)
		s.Require().NoError(err)
		s.Require().Len(decks, 1)

		if len(hosts) == 0 {
			room, err := app.RoomController.CreateRoom(ctx, session.User.ID, session.User.Email, decks[0].ID)
			s.Require().NoError(err)
			hosts = append(hosts, room)
			continue
		}
		joined, err := app.RoomController.JoinRoom(ctx, session.User.ID, session.User.Email, hosts[0].ID, decks[0].ID)
		s.Require().NoError(err)
		s.Equal(model.RoomStatusPlaying, joined.Status)
	}
}

func (s *BackendSuite) TestMemory() {
	s.exercise(Config{StorageType: StorageTypeMemory})
}

func (s *BackendSuite) TestSQLite() {
	s.exercise(Config{
		StorageType: StorageTypeSQLite,
		SQLitePath:  filepath.Join(s.T().TempDir(), "arena.db"),
	})
}

func (s *BackendSuite) TestRedis() {
	mini := miniredis.RunT(s.T())
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()
	s.exercise(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
}

func (s *BackendSuite) TestBackendsNeedTheirSettings() {
	secret := auth.Config{Secret: []byte("x")}

	_, err := New(Config{AuthConfig: secret, StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(Config{AuthConfig: secret, StorageType: StorageTypeSQLite})
	s.Error(err)
}
