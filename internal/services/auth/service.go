package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tcgarena/internal/dependencies/clock"
	"github.com/mcoot/tcgarena/internal/dependencies/random"
	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("missing token")
	ErrMissingFields      = errors.New("email, username and password are required")
)

const (
	tokenIDLength   = 16
	tokenIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Identity is what a verified token proves about its bearer
type Identity struct {
	UserID model.UserID
	Email  string
}

// Session is the result of a successful sign-in
type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	// Secret is the HMAC key tokens are signed with
	Secret []byte
	// TokenTTL is how long an issued token stays valid
	TokenTTL time.Duration
	// Issuer is written to and required on every token
	Issuer string
	// BcryptCost is the password hashing cost
	BcryptCost int
}

// DefaultConfig returns default auth configuration. Secret is left empty
// and must be supplied.
func DefaultConfig() Config {
	return Config{
		TokenTTL:   7 * 24 * time.Hour,
		Issuer:     "tcgarena",
		BcryptCost: bcrypt.DefaultCost,
	}
}

// claims is the JWT payload
type claims struct {
	jwt.RegisteredClaims
	UserID model.UserID `json:"userId"`
	Email  string       `json:"email"`
}

// Service handles account creation, sign-in and token verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// SignUp registers a new account
func (s *Service) SignUp(ctx context.Context, email, username, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.Int64("user_id", int64(user.ID)))
	return user, nil
}

// SignIn checks credentials and issues a token
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: *user, ExpiresAt: expiresAt}, nil
}

// IssueToken signs a token for the user
func (s *Service) IssueToken(user *model.User) (string, time.Time, error) {
	if len(s.cfg.Secret) == 0 {
		return "", time.Time{}, errors.New("auth secret is not configured")
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        s.random.String(tokenIDLength, tokenIDAlphabet),
		},
		UserID: user.ID,
		Email:  user.Email,
	})

	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken checks a bearer token and returns the identity it carries
func (s *Service) VerifyToken(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if len(s.cfg.Secret) == 0 {
		return nil, ErrInvalidToken
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("error", err.Error()))
		return nil, ErrInvalidToken
	}
	if parsed.UserID <= 0 {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: parsed.UserID, Email: parsed.Email}, nil
}

// GetUser returns the account behind an identity
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}
