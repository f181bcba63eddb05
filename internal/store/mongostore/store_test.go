package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
)

// newTestStore connects to SMARTTRANSLATE_TEST_MONGO_URI and skips the test
// when it is unset. Each test gets its own database, dropped on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("SMARTTRANSLATE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SMARTTRANSLATE_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	dbName := "smarttranslate_test_" + uuid.NewString()[:8]
	s, err := New(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		s.client.Database(dbName).Drop(context.Background())
		s.Close()
	})
	return s
}

func TestStore_HistoryLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, text := range []string{"one", "two", "three"} {
		err := s.InsertHistory(ctx, internal.HistoryRecord{
			ID:         uuid.NewString(),
			UserID:     "u1",
			Original:   text,
			Translated: "[hi] " + text,
			Lang:       "hi",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	items, err := s.ListHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(items) != 3 || items[0].Original != "three" {
		t.Fatalf("unexpected items %+v", items)
	}

	deleted, err := s.DeleteHistory(ctx, "u2", items[0].ID)
	if err != nil || deleted {
		t.Errorf("foreign delete must not succeed: %v, %v", deleted, err)
	}

	n, err := s.DeleteAllHistory(ctx, "u1")
	if err != nil || n != 3 {
		t.Errorf("expected 3 deleted, got %d, %v", n, err)
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := internal.User{ID: uuid.NewString(), Username: "a", Email: "a@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	u.ID = uuid.NewString()
	if err := s.CreateUser(ctx, u); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	if _, err := s.UserByEmail(ctx, "missing@example.com"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
