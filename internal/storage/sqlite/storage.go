// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
	"github.com/mcoot/tcgarena/internal/storage/sqlite/migrations"
)

// Storage persists accounts, the card catalog and decks in SQLite
type Storage struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.Username, storage.NormalizeEmail(user.Email), user.PasswordHash, toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = model.UserID(id)
	user.CreatedAt = createdAt
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`,
		storage.NormalizeEmail(email))
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user      model.User
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

// Card operations

func (s *Storage) SaveCards(ctx context.Context, cards []model.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range cards {
		c := &cards[i]
		if c.ID == 0 {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO cards (name, hp, attack, type, pokedex_number, img_url) VALUES (?, ?, ?, ?, ?, ?)`,
				c.Name, c.HP, c.Attack, string(c.Type), c.PokedexNumber, c.ImageURL)
			if err != nil {
				return fmt.Errorf("insert card %q: %w", c.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("insert card %q: %w", c.Name, err)
			}
			c.ID = model.CardID(id)
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, hp, attack, type, pokedex_number, img_url) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   hp = excluded.hp,
			   attack = excluded.attack,
			   type = excluded.type,
			   pokedex_number = excluded.pokedex_number,
			   img_url = excluded.img_url`,
			c.ID, c.Name, c.HP, c.Attack, string(c.Type), c.PokedexNumber, c.ImageURL); err != nil {
			return fmt.Errorf("upsert card %d: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

const cardColumns = `id, name, hp, attack, type, pokedex_number, img_url`

func (s *Storage) ListCards(ctx context.Context) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY pokedex_number ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	cards, err := scanCards(rows)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, model.ErrCardNotFound
	}
	return &cards[0], nil
}

func (s *Storage) GetCardsByIDs(ctx context.Context, ids []model.CardID) ([]model.Card, error) {
	distinct := storage.DistinctCardIDs(ids)
	if len(distinct) == 0 {
		return []model.Card{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(distinct)), ",")
	args := make([]any, len(distinct))
	for i, id := range distinct {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id IN (`+placeholders+`) ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("get cards: %w", err)
	}
	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]model.Card, error) {
	defer rows.Close()
	cards := []model.Card{}
	for rows.Next() {
		var (
			c        model.Card
			cardType string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.HP, &c.Attack, &cardType, &c.PokedexNumber, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Type = model.CardType(cardType)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}
	return cards, nil
}

// Deck operations

func (s *Storage) CreateDeck(ctx context.Context, deck *model.Deck) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO decks (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		deck.UserID, deck.Name, toMillis(deck.CreatedAt), toMillis(deck.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	if err := insertDeckCards(ctx, tx, model.DeckID(id), deck.CardIDs()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	deck.ID = model.DeckID(id)
	return nil
}

func (s *Storage) GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	var (
		deck                 model.Deck
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM decks WHERE id = ?`, id,
	).Scan(&deck.ID, &deck.UserID, &deck.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDeckNotFound
		}
		return nil, fmt.Errorf("get deck: %w", err)
	}
	deck.CreatedAt = fromMillis(createdAt)
	deck.UpdatedAt = fromMillis(updatedAt)

	deck.Cards, err = s.deckCards(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (s *Storage) ListDecksByUser(ctx context.Context, userID model.UserID) ([]model.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM decks WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	var ids []model.DeckID
	for rows.Next() {
		var id model.DeckID
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("list decks: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	decks := make([]model.Deck, 0, len(ids))
	for _, id := range ids {
		deck, err := s.GetDeck(ctx, id)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, nil
}

func (s *Storage) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE decks SET name = ?, updated_at = ? WHERE id = ?`,
		deck.Name, toMillis(deck.UpdatedAt), deck.ID)
	if err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrDeckNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deck.ID); err != nil {
		return fmt.Errorf("update deck cards: %w", err)
	}
	if err := insertDeckCards(ctx, tx, deck.ID, deck.CardIDs()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) DeleteDeck(ctx context.Context, id model.DeckID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, id); err != nil {
		return fmt.Errorf("delete deck cards: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrDeckNotFound
	}
	return tx.Commit()
}

func insertDeckCards(ctx context.Context, tx *sql.Tx, deckID model.DeckID, cardIDs []model.CardID) error {
	for pos, cardID := range cardIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deck_cards (deck_id, position, card_id) VALUES (?, ?, ?)`,
			deckID, pos, cardID); err != nil {
			return fmt.Errorf("insert deck card: %w", err)
		}
	}
	return nil
}

func (s *Storage) deckCards(ctx context.Context, deckID model.DeckID) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.hp, c.attack, c.type, c.pokedex_number, c.img_url
		   FROM deck_cards dc
		   JOIN cards c ON c.id = dc.card_id
		  WHERE dc.deck_id = ?
		  ORDER BY dc.position ASC`, deckID)
	if err != nil {
		return nil, fmt.Errorf("get deck cards: %w", err)
	}
	return scanCards(rows)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
