// Package auth issues and verifies the bearer tokens that identify a user and
// manages account registration and login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
)

const (
	DefaultTokenTTL   = 7 * 24 * time.Hour
	MinPasswordLength = 6
)

// UserStore persists accounts. CreateUser must return an apperr Conflict
// for a taken e-mail and lookups an apperr NotFound for unknown users.
type UserStore interface {
	CreateUser(ctx context.Context, u internal.User) error
	UserByEmail(ctx context.Context, email string) (*internal.User, error)
}

type Service struct {
	secret []byte
	ttl    time.Duration
	users  UserStore
	now    func() time.Time
}

// NewService returns a Service signing with secret. users may be nil when
// only token issue and verification are needed.
func NewService(secret string, ttl time.Duration, users UserStore) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// IssueToken returns an HS256 token whose subject is userID.
func (s *Service) IssueToken(userID string) (string, error) {
	if userID == "" {
		return "", apperr.Validation("user id is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return token, nil
}

// VerifyToken checks the signature and expiry of token and returns its
// subject.
func (s *Service) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", apperr.Authorization("missing token", nil)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperr.Authorization("invalid token", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", apperr.Authorization("invalid token", errors.New("missing subject"))
	}
	return sub, nil
}

// Register creates an account and returns it together with a fresh token.
// An empty username falls back to the local part of the e-mail address.
func (s *Service) Register(ctx context.Context, username, email, password string) (*internal.User, string, error) {
	if s.users == nil {
		return nil, "", apperr.Internal("registration is not available", nil)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperr.Validation("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("failed to hash password", err)
	}

	u := internal.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, "", err
		}
		return nil, "", apperr.Internal("failed to create user", err)
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

// Login checks credentials. Unknown e-mail and wrong password produce the
// same Authorization error.
func (s *Service) Login(ctx context.Context, email, password string) (*internal.User, string, error) {
	if s.users == nil {
		return nil, "", apperr.Internal("login is not available", nil)
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	u, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.Authorization("invalid credentials", nil)
		}
		return nil, "", apperr.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Authorization("invalid credentials", nil)
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperr.Authorization("missing token", fmt.Errorf("malformed authorization header"))
	}
	return strings.TrimSpace(token), nil
}
