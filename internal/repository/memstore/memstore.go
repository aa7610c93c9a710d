// Package memstore is an in-process Store used for local development and
// tests. It stands in for the external Durable Store: its mutex plays the
// role of the database's per-document atomicity, and every mutation stores a
// fresh copy of the document so callers never share mutable state with it.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

// Store keeps documents in maps keyed by id.
type Store struct {
	mu       sync.RWMutex
	events   map[string]model.Event
	users    map[string]model.User
	comments map[string]model.Comment
	now      func() time.Time
	latency  time.Duration
}

// New returns an empty store.
func New() *Store {
	return &Store{
		events:   make(map[string]model.Event),
		users:    make(map[string]model.User),
		comments: make(map[string]model.Comment),
		now:      time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

// WithLatency makes every call wait d before touching data, or fail with
// StoreUnavailable if ctx ends first. Used to exercise store deadlines.
func (s *Store) WithLatency(d time.Duration) *Store {
	s.latency = d
	return s
}

func copyEvent(e model.Event) *model.Event {
	e.Attendees = append(model.UserSet{}, e.Attendees...)
	e.Collaborators = append(model.UserSet{}, e.Collaborators...)
	e.Likes = append(model.UserSet{}, e.Likes...)
	return &e
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error { return s.wait(ctx) }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// update applies fn to a copy of the event under the write lock and stores
// the result as the new version. fn returning repository.ErrConditionFailed
// leaves the stored document untouched.
func (s *Store) update(ctx context.Context, id string, fn func(e *model.Event) error) (*model.Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("event")
	}
	next := copyEvent(cur)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()
	s.events[id] = *copyEvent(*next)
	return next, nil
}

// CreateEvent stores a new event.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[e.ID]; ok {
		return apperr.New(apperr.CodeConflict, "event already exists")
	}
	s.events[e.ID] = *copyEvent(*e)
	return nil
}

// GetEvent returns a copy of an event.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("event")
	}
	return copyEvent(e), nil
}

func matches(e model.Event, f model.EventFilter, now time.Time) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Exclude != "" && e.ID == f.Exclude {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	switch f.When {
	case "upcoming":
		return !e.Date.Before(now)
	case "past":
		return e.Date.Before(now)
	}
	return true
}

func (s *Store) list(keep func(model.Event) bool) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, *copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// ListEvents returns events matching f ordered by date.
func (s *Store) ListEvents(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.list(func(e model.Event) bool { return matches(e, f, now) }), nil
}

// ListEventsByCreator returns a user's events ordered by date.
func (s *Store) ListEventsByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.list(func(e model.Event) bool { return e.CreatorID == userID }), nil
}

// UpdateEvent applies a patch; a capacity change below the attendee count
// fails with repository.ErrConditionFailed.
func (s *Store) UpdateEvent(ctx context.Context, id string, p model.EventPatch) (*model.Event, error) {
	return s.update(ctx, id, func(e *model.Event) error {
		if p.Capacity != nil && len(e.Attendees) > *p.Capacity {
			return repository.ErrConditionFailed
		}
		*e = p.Apply(*e)
		return nil
	})
}

// DeleteEvent removes an event. Comments are left to the caller.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return apperr.NotFound("event")
	}
	delete(s.events, id)
	return nil
}

// JoinIfRoom checks room and membership and adds the attendee in one
// critical section, mirroring a single conditional document update.
func (s *Store) JoinIfRoom(ctx context.Context, eventID, userID string) (*model.Event, error) {
	e, err := s.update(ctx, eventID, func(e *model.Event) error {
		if len(e.Attendees) >= e.Capacity || e.Attendees.Contains(userID) {
			return repository.ErrConditionFailed
		}
		e.Attendees = e.Attendees.Add(userID)
		return nil
	})
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		// A conditional update cannot tell a missing document from a failed
		// predicate.
		return nil, repository.ErrConditionFailed
	}
	return e, err
}

// RemoveAttendee removes userID from attendees.
func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, error) {
	return s.update(ctx, eventID, func(e *model.Event) error {
		e.Attendees = e.Attendees.Remove(userID)
		return nil
	})
}

// AddCollaborator adds userID to collaborators when absent.
func (s *Store) AddCollaborator(ctx context.Context, eventID, userID string) (*model.Event, error) {
	e, err := s.update(ctx, eventID, func(e *model.Event) error {
		if e.Collaborators.Contains(userID) {
			return repository.ErrConditionFailed
		}
		e.Collaborators = e.Collaborators.Add(userID)
		return nil
	})
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return nil, repository.ErrConditionFailed
	}
	return e, err
}

// ToggleLike flips userID's membership in likes.
func (s *Store) ToggleLike(ctx context.Context, eventID, userID string) (*model.Event, error) {
	return s.update(ctx, eventID, func(e *model.Event) error {
		e.Likes = e.Likes.Toggle(userID)
		return nil
	})
}
