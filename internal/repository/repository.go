// Package repository defines the Durable Store contracts the services depend
// on and implements them on PostgreSQL through database/sql and pgx.
//
// Every mutation of an event is a single statement against a single row, so
// concurrency is resolved by the database's row-level atomicity rather than
// by locks held in the application.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// ErrConditionFailed is returned by conditional updates when no document
// matched the predicate. It says nothing about why; callers re-read the
// document to classify the failure.
var ErrConditionFailed = errors.New("conditional update matched no document")

// EventStore persists events.
type EventStore interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error)
	ListEventsByCreator(ctx context.Context, userID string) ([]model.Event, error)

	// UpdateEvent applies a patch in one statement. When the patch changes
	// capacity the update only applies if the current attendee count fits
	// within the new capacity; otherwise ErrConditionFailed is returned.
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// JoinIfRoom adds userID to attendees of the event whose attendee count is
	// below capacity and which does not already contain userID, as one atomic
	// conditional update. It returns ErrConditionFailed when nothing matched.
	JoinIfRoom(ctx context.Context, eventID, userID string) (*model.Event, error)

	// RemoveAttendee unconditionally removes userID from attendees.
	RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, error)

	// AddCollaborator adds userID to collaborators unless already present, in
	// which case ErrConditionFailed is returned.
	AddCollaborator(ctx context.Context, eventID, userID string) (*model.Event, error)

	// ToggleLike flips membership of userID in likes atomically.
	ToggleLike(ctx context.Context, eventID, userID string) (*model.Event, error)
}

// UserStore persists accounts and backs the identity provider.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUsers returns the users that exist among ids, in no particular order.
	GetUsers(ctx context.Context, ids []string) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.ProfilePatch) (*model.User, error)
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns an event's comments newest first with the author
	// summary populated.
	ListComments(ctx context.Context, eventID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByEvent(ctx context.Context, eventID string) (int64, error)
}

// Store bundles the contracts a single backend provides.
type Store interface {
	EventStore
	UserStore
	CommentStore
	Ping(ctx context.Context) error
	Close() error
}
