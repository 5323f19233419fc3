package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
}

// deckRecord is the stored form of a deck; cards are resolved on read
type deckRecord struct {
	ID        model.DeckID   `json:"id"`
	UserID    model.UserID   `json:"user_id"`
	Name      string         `json:"name"`
	CardIDs   []model.CardID `json:"card_ids"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New connects to Redis and checks the server answers
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = DefaultConfig().PingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{client: client}, nil
}

// NewWithClient wraps an existing client, e.g. one pointed at miniredis
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	email := storage.NormalizeEmail(user.Email)

	id, err := s.client.Incr(ctx, sequenceKey("user")).Result()
	if err != nil {
		return err
	}

	// Claim the email first so two sign-ups cannot share it
	claimed, err := s.client.SetNX(ctx, emailIndexKey(email), id, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	user.ID = model.UserID(id)
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailIndexKey(storage.NormalizeEmail(email))).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

// Card operations

func (s *Storage) SaveCards(ctx context.Context, cards []model.Card) error {
	for i := range cards {
		if cards[i].ID != 0 {
			continue
		}
		id, err := s.client.Incr(ctx, sequenceKey("card")).Result()
		if err != nil {
			return err
		}
		cards[i].ID = model.CardID(id)
	}

	pipe := s.client.Pipeline()
	for _, c := range cards {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		pipe.Set(ctx, cardKey(c.ID), data, 0)
		pipe.SAdd(ctx, cardsIndexKey(), cardKey(c.ID))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListCards(ctx context.Context) ([]model.Card, error) {
	keys, err := s.client.SMembers(ctx, cardsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	cards, err := s.loadCards(ctx, keys)
	if err != nil {
		return nil, err
	}
	storage.SortCards(cards)
	return cards, nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	data, err := s.client.Get(ctx, cardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCardNotFound
		}
		return nil, err
	}
	var card model.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Storage) GetCardsByIDs(ctx context.Context, ids []model.CardID) ([]model.Card, error) {
	distinct := storage.DistinctCardIDs(ids)
	keys := make([]string, len(distinct))
	for i, id := range distinct {
		keys[i] = cardKey(id)
	}
	cards, err := s.loadCards(ctx, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

// loadCards fetches cards by key with MGET, skipping missing entries
func (s *Storage) loadCards(ctx context.Context, keys []string) ([]model.Card, error) {
	if len(keys) == 0 {
		return []model.Card{}, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	cards := make([]model.Card, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var card model.Card
		if err := json.Unmarshal([]byte(str), &card); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Deck operations

func (s *Storage) CreateDeck(ctx context.Context, deck *model.Deck) error {
	id, err := s.client.Incr(ctx, sequenceKey("deck")).Result()
	if err != nil {
		return err
	}
	deck.ID = model.DeckID(id)
	return s.writeDeck(ctx, deck)
}

func (s *Storage) GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	rec, err := s.readDeck(ctx, deckKey(id))
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, rec)
}

func (s *Storage) ListDecksByUser(ctx context.Context, userID model.UserID) ([]model.Deck, error) {
	keys, err := s.client.SMembers(ctx, decksForUserIndexKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	decks := make([]model.Deck, 0, len(keys))
	for _, key := range keys {
		rec, err := s.readDeck(ctx, key)
		if errors.Is(err, model.ErrDeckNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		deck, err := s.resolve(ctx, rec)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].ID < decks[j].ID })
	return decks, nil
}

func (s *Storage) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	exists, err := s.client.Exists(ctx, deckKey(deck.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrDeckNotFound
	}
	return s.writeDeck(ctx, deck)
}

func (s *Storage) DeleteDeck(ctx context.Context, id model.DeckID) error {
	rec, err := s.readDeck(ctx, deckKey(id))
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, deckKey(id))
	pipe.SRem(ctx, decksForUserIndexKey(rec.UserID), deckKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

// writeDeck saves the deck and its owner index in one pipeline
func (s *Storage) writeDeck(ctx context.Context, deck *model.Deck) error {
	data, err := json.Marshal(deckRecord{
		ID:        deck.ID,
		UserID:    deck.UserID,
		Name:      deck.Name,
		CardIDs:   deck.CardIDs(),
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	})
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, deckKey(deck.ID), data, 0)
	pipe.SAdd(ctx, decksForUserIndexKey(deck.UserID), deckKey(deck.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) readDeck(ctx context.Context, key string) (*deckRecord, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDeckNotFound
		}
		return nil, err
	}
	var rec deckRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// resolve expands a deck record's card ids into catalog cards, keeping order
// and repetitions
func (s *Storage) resolve(ctx context.Context, rec *deckRecord) (*model.Deck, error) {
	found, err := s.GetCardsByIDs(ctx, rec.CardIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.CardID]model.Card, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	deck := &model.Deck{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Name:      rec.Name,
		Cards:     make([]model.Card, 0, len(rec.CardIDs)),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for _, id := range rec.CardIDs {
		if c, ok := byID[id]; ok {
			deck.Cards = append(deck.Cards, c)
		}
	}
	return deck, nil
}
