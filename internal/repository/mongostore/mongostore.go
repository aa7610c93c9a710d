// Package mongostore implements the Store contracts on MongoDB. Each event is
// one document and every event mutation is one FindOneAndUpdate, so the
// server's single-document atomicity resolves concurrent RSVPs.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

const (
	eventsCollection   = "events"
	usersCollection    = "users"
	commentsCollection = "comments"
)

// Store is the MongoDB-backed Store.
type Store struct {
	client   *mongo.Client
	events   *mongo.Collection
	users    *mongo.Collection
	comments *mongo.Collection
	now      func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New wraps a connected database. Call EnsureIndexes once at start-up.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:   client,
		events:   db.Collection(eventsCollection),
		users:    db.Collection(usersCollection),
		comments: db.Collection(commentsCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the unique email index and the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	}); err != nil {
		return translate(err, "user", "create users index")
	}
	if _, err := s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
	}); err != nil {
		return translate(err, "event", "create events indexes")
	}
	if _, err := s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return translate(err, "comment", "create comments index")
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return translate(s.client.Ping(ctx, readpref.Primary()), "database", "ping")
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(resource)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return apperr.Unavailable(fmt.Errorf("%s: %w", op, err))
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Wrap(apperr.CodeConflict, resource+" already exists", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
