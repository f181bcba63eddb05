// Package history manages the translations users chose to keep. Every
// operation is scoped to the owning user.
package history

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
)

// Repository is the storage backing a Service. Both the SQLite and MongoDB
// stores implement it.
type Repository interface {
	InsertHistory(ctx context.Context, rec internal.HistoryRecord) error
	ListHistory(ctx context.Context, userID string) ([]internal.HistoryRecord, error)
	DeleteHistory(ctx context.Context, userID, id string) (bool, error)
	DeleteAllHistory(ctx context.Context, userID string) (int64, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]internal.HistoryRecord, error) {
	if userID == "" {
		return nil, apperr.Authorization("missing user", nil)
	}
	records, err := s.repo.ListHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load history", err)
	}
	return records, nil
}

// Create stores a new record. original, translated and lang are required.
func (s *Service) Create(ctx context.Context, userID, original, translated, lang string) (*internal.HistoryRecord, error) {
	if userID == "" {
		return nil, apperr.Authorization("missing user", nil)
	}
	if strings.TrimSpace(original) == "" || strings.TrimSpace(translated) == "" || strings.TrimSpace(lang) == "" {
		return nil, apperr.Validation("missing fields")
	}

	rec := internal.HistoryRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Original:   original,
		Translated: translated,
		Lang:       strings.TrimSpace(lang),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.InsertHistory(ctx, rec); err != nil {
		return nil, apperr.Internal("failed to save history", err)
	}
	return &rec, nil
}

// DeleteOne removes a record owned by userID. A record that does not exist
// and one owned by someone else are indistinguishable: both are NotFound.
func (s *Service) DeleteOne(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperr.Authorization("missing user", nil)
	}
	deleted, err := s.repo.DeleteHistory(ctx, userID, id)
	if err != nil {
		return apperr.Internal("failed to delete history item", err)
	}
	if !deleted {
		return apperr.NotFound("history item not found")
	}
	return nil
}

// DeleteAll permanently removes every record owned by userID.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperr.Authorization("missing user", nil)
	}
	n, err := s.repo.DeleteAllHistory(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to clear history", err)
	}
	return n, nil
}
