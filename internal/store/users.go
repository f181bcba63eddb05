package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
)

// CreateUser inserts u. A taken e-mail address yields an apperr Conflict.
func (s *Store) CreateUser(ctx context.Context, u internal.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, normalizeText(u.Username), strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return apperr.Conflict("email %s is already registered", u.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return s.queryUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) UserByID(ctx context.Context, id string) (*internal.User, error) {
	return s.queryUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) queryUser(ctx context.Context, query string, arg string) (*internal.User, error) {
	var u internal.User
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}
