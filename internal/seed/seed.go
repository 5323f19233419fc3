package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/tcgarena/internal/dependencies/random"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/auth"
	"github.com/mcoot/tcgarena/internal/services/deck"
	"github.com/mcoot/tcgarena/internal/storage"
)

//go:embed catalog.json
var catalogJSON []byte

const artworkURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png"

// DemoPassword is the password of every demo account
const DemoPassword = "password123"

// DemoUser is an account created by the demo seed
type DemoUser struct {
	Username string
	Email    string
}

// DemoUsers are the two accounts seeded for local play
var DemoUsers = []DemoUser{
	{Username: "red", Email: "red@example.com"},
	{Username: "blue", Email: "blue@example.com"},
}

type catalogEntry struct {
	Name          string `json:"name"`
	PokedexNumber int    `json:"pokedexNumber"`
	HP            int    `json:"hp"`
	Attack        int    `json:"attack"`
	Type          string `json:"type"`
}

// Catalog returns the starter card catalog, without ids
func Catalog() ([]model.Card, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	cards := make([]model.Card, len(entries))
	for i, e := range entries {
		cards[i] = model.Card{
			Name:          e.Name,
			HP:            e.HP,
			Attack:        e.Attack,
			Type:          model.CardType(e.Type),
			PokedexNumber: e.PokedexNumber,
			ImageURL:      fmt.Sprintf(artworkURL, e.PokedexNumber),
		}
	}
	return cards, nil
}

// Options selects what Run seeds
type Options struct {
	Catalog   bool
	DemoUsers bool
}

// Seeder loads reference data into a store. Running it twice is harmless.
type Seeder struct {
	storage storage.Storage
	auth    *auth.Service
	decks   *deck.Service
	random  random.Random
	logger  *slog.Logger
}

// New creates a new Seeder
func New(storage storage.Storage, authService *auth.Service, deckService *deck.Service, random random.Random, logger *slog.Logger) *Seeder {
	return &Seeder{
		storage: storage,
		auth:    authService,
		decks:   deckService,
		random:  random,
		logger:  logger.With(slog.String("component", "seed")),
	}
}

// Run seeds according to opts
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.Catalog {
		if err := s.seedCatalog(ctx); err != nil {
			return err
		}
	}
	if opts.DemoUsers {
		if err := s.seedDemoUsers(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	existing, err := s.storage.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("catalog already seeded", slog.Int("cards", len(existing)))
		return nil
	}

	cards, err := Catalog()
	if err != nil {
		return err
	}
	if err := s.storage.SaveCards(ctx, cards); err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	s.logger.Info("catalog seeded", slog.Int("cards", len(cards)))
	return nil
}

func (s *Seeder) seedDemoUsers(ctx context.Context) error {
	cards, err := s.storage.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	if len(cards) == 0 {
		return errors.New("demo users need a card catalog")
	}

	for _, demo := range DemoUsers {
		user, err := s.auth.SignUp(ctx, demo.Email, demo.Username, DemoPassword)
		if errors.Is(err, model.ErrEmailTaken) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create demo user %s: %w", demo.Email, err)
		}

		picks := random.Sample(s.random, len(cards), model.DeckSize)
		cardIDs := make([]model.CardID, len(picks))
		for i, p := range picks {
			cardIDs[i] = cards[p].ID
		}
		if _, err := s.decks.Create(ctx, user.ID, "Starter Deck "+demo.Username, cardIDs); err != nil {
			return fmt.Errorf("create starter deck for %s: %w", demo.Email, err)
		}
		s.logger.Info("demo user seeded", slog.String("email", demo.Email))
	}
	return nil
}
