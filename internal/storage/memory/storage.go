package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users      map[model.UserID]*model.User
	emailIndex map[string]model.UserID
	cards      map[model.CardID]model.Card
	decks      map[model.DeckID]*deckRecord

	nextUserID model.UserID
	nextCardID model.CardID
	nextDeckID model.DeckID
}

// deckRecord keeps card references only; cards are resolved on read so a
// catalog update is visible through every deck.
type deckRecord struct {
	deck    model.Deck
	cardIDs []model.CardID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:      make(map[model.UserID]*model.User),
		emailIndex: make(map[string]model.UserID),
		cards:      make(map[model.CardID]model.Card),
		decks:      make(map[model.DeckID]*deckRecord),
	}
}

var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := storage.NormalizeEmail(user.Email)
	if _, ok := s.emailIndex[email]; ok {
		return model.ErrEmailTaken
	}

	s.nextUserID++
	user.ID = s.nextUserID
	stored := *user
	s.users[user.ID] = &stored
	s.emailIndex[email] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[storage.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// Card operations

func (s *Storage) SaveCards(ctx context.Context, cards []model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range cards {
		if cards[i].ID == 0 {
			s.nextCardID++
			cards[i].ID = s.nextCardID
		} else if cards[i].ID > s.nextCardID {
			s.nextCardID = cards[i].ID
		}
		s.cards[cards[i].ID] = cards[i]
	}
	return nil
}

func (s *Storage) ListCards(ctx context.Context) ([]model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.Card, 0, len(s.cards))
	for _, c := range s.cards {
		result = append(result, c)
	}
	storage.SortCards(result)
	return result, nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	return &c, nil
}

func (s *Storage) GetCardsByIDs(ctx context.Context, ids []model.CardID) ([]model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Card
	for _, id := range storage.DistinctCardIDs(ids) {
		if c, ok := s.cards[id]; ok {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Deck operations

func (s *Storage) CreateDeck(ctx context.Context, deck *model.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDeckID++
	deck.ID = s.nextDeckID
	s.decks[deck.ID] = newRecord(deck)
	return nil
}

func (s *Storage) GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.decks[id]
	if !ok {
		return nil, model.ErrDeckNotFound
	}
	return s.resolve(rec), nil
}

func (s *Storage) ListDecksByUser(ctx context.Context, userID model.UserID) ([]model.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Deck
	for _, rec := range s.decks {
		if rec.deck.UserID == userID {
			result = append(result, *s.resolve(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[deck.ID]; !ok {
		return model.ErrDeckNotFound
	}
	s.decks[deck.ID] = newRecord(deck)
	return nil
}

func (s *Storage) DeleteDeck(ctx context.Context, id model.DeckID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[id]; !ok {
		return model.ErrDeckNotFound
	}
	delete(s.decks, id)
	return nil
}

func newRecord(deck *model.Deck) *deckRecord {
	d := *deck
	d.Cards = nil
	return &deckRecord{deck: d, cardIDs: deck.CardIDs()}
}

// resolve must be called with the lock held
func (s *Storage) resolve(rec *deckRecord) *model.Deck {
	d := rec.deck
	d.Cards = make([]model.Card, 0, len(rec.cardIDs))
	for _, id := range rec.cardIDs {
		if c, ok := s.cards[id]; ok {
			d.Cards = append(d.Cards, c)
		}
	}
	return &d
}
