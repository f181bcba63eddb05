// Package mongostore keeps history and user accounts in MongoDB, using the
// collection layout of earlier deployments ("histories", "users").
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/apperr"
)

const (
	historyCollection = "histories"
	usersCollection   = "users"
)

type historyDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user"`
	Original   string    `bson:"original"`
	Translated string    `bson:"translated"`
	Lang       string    `bson:"lang"`
	CreatedAt  time.Time `bson:"createdAt"`
	Seq        int64     `bson:"seq"`
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type Store struct {
	client  *mongo.Client
	history *mongo.Collection
	users   *mongo.Collection
}

// New connects to uri, pings the server and ensures the indexes exist.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:  client,
		history: db.Collection(historyCollection),
		users:   db.Collection(usersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) InsertHistory(ctx context.Context, rec internal.HistoryRecord) error {
	_, err := s.history.InsertOne(ctx, historyDoc{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Original:   rec.Original,
		Translated: rec.Translated,
		Lang:       rec.Lang,
		CreatedAt:  rec.CreatedAt.UTC(),
		Seq:        time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

// ListHistory returns the user's records newest first; seq breaks ties in
// reverse insertion order.
func (s *Store) ListHistory(ctx context.Context, userID string) ([]internal.HistoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}})
	cur, err := s.history.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer cur.Close(ctx)

	records := []internal.HistoryRecord{}
	for cur.Next(ctx) {
		var d historyDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		records = append(records, internal.HistoryRecord{
			ID:         d.ID,
			UserID:     d.UserID,
			Original:   d.Original,
			Translated: d.Translated,
			Lang:       d.Lang,
			CreatedAt:  d.CreatedAt.UTC(),
		})
	}
	return records, cur.Err()
}

func (s *Store) DeleteHistory(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.history.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete history: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) DeleteAllHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.history.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *Store) CreateUser(ctx context.Context, u internal.User) error {
	_, err := s.users.InsertOne(ctx, userDoc{
		ID:           u.ID,
		Username:     strings.TrimSpace(u.Username),
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("email %s is already registered", u.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) UserByID(ctx context.Context, id string) (*internal.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*internal.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &internal.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}
