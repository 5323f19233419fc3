package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tcgarena/internal/dependencies/mocks"
	"github.com/mcoot/tcgarena/internal/gateway"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/seed"
	"github.com/mcoot/tcgarena/internal/services/auth"
	"github.com/mcoot/tcgarena/internal/storage/memory"
	"github.com/mcoot/tcgarena/internal/testutil"
)

// TestSecret signs tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The hub is running; call Close when done.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)
	authCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, gateway.Config{EventTimeout: 5 * time.Second}, testutil.NopLogger())
	app.Start()

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadCatalog seeds the starter card catalog
func (t *TestApp) LoadCatalog(ctx context.Context) ([]model.Card, error) {
	if err := t.Seeder.Run(ctx, seed.Options{Catalog: true}); err != nil {
		return nil, err
	}
	return t.Storage.ListCards(ctx)
}

// TestUser is an account with a signed token
type TestUser struct {
	User  *model.User
	Token string
}

// CreateUser signs up and signs in an account
func (t *TestApp) CreateUser(ctx context.Context, username string) (*TestUser, error) {
	email := username + "@example.com"
	user, err := t.AuthService.SignUp(ctx, email, username, "password123")
	if err != nil {
		return nil, err
	}
	session, err := t.AuthService.SignIn(ctx, email, "password123")
	if err != nil {
		return nil, err
	}
	return &TestUser{User: user, Token: session.Token}, nil
}

// CreateDeck builds a deck for the user from the first cards of the catalog
func (t *TestApp) CreateDeck(ctx context.Context, userID model.UserID, size int) (*model.Deck, error) {
	cards, err := t.Storage.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]model.CardID, size)
	for i := range ids {
		ids[i] = cards[i%len(cards)].ID
	}
	if size == model.DeckSize {
		return t.DeckService.Create(ctx, userID, "Test Deck", ids)
	}

	// Decks of the wrong size can only exist by editing storage directly
	deck := &model.Deck{
		UserID:    userID,
		Name:      "Broken Deck",
		Cards:     make([]model.Card, size),
		CreatedAt: t.MockClock.Now(),
		UpdatedAt: t.MockClock.Now(),
	}
	for i := range deck.Cards {
		deck.Cards[i] = cards[i%len(cards)]
	}
	if err := t.Storage.CreateDeck(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}
