package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository/memstore"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	store    *memstore.Store
	events   *EventService
	users    *UserService
	comments *CommentService
}

func testOptions() Options {
	return Options{
		StoreTimeout: time.Second,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:          func() time.Time { return fixedNow },
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithStore(t, memstore.New())
}

func newEnvWithStore(t *testing.T, store *memstore.Store) *env {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", "event-rsvp", time.Hour)
	require.NoError(t, err)
	opts := testOptions()
	users := NewUserService(store, tokens, opts)
	return &env{
		store:    store,
		events:   NewEventService(store, store, store, users, opts),
		users:    users,
		comments: NewCommentService(store, store, store, opts),
	}
}

// addUser stores a user directly, skipping bcrypt.
func (e *env) addUser(t *testing.T, name string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, e.store.CreateUser(context.Background(), &model.User{
		ID:    id,
		Name:  name,
		Email: model.NormalizeEmail(name + "@example.com"),
	}))
	return id
}

func (e *env) addEvent(t *testing.T, creatorID string, capacity int) *model.Event {
	t.Helper()
	ev, err := e.events.Create(context.Background(), creatorID, model.CreateEventRequest{
		Title:       "Community cleanup",
		Description: "Bring gloves",
		Date:        fixedNow.Add(72 * time.Hour),
		Location:    "Riverside park",
		Capacity:    capacity,
		Image:       "/uploads/cleanup.jpg",
	})
	require.NoError(t, err)
	return ev
}

func TestJoinConcurrentFillsExactlyCapacity(t *testing.T) {
	const capacity, joiners = 7, 40
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), capacity)

	ids := make([]string, joiners)
	for i := range ids {
		ids[i] = e.addUser(t, fmt.Sprintf("guest%d", i))
	}

	var joined, full atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := e.events.Join(context.Background(), ev.ID, id)
			switch {
			case err == nil:
				joined.Add(1)
			case errors.Is(err, apperr.ErrFull):
				full.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, capacity, joined.Load())
	assert.EqualValues(t, joiners-capacity, full.Load())

	got, err := e.store.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, capacity)
	assert.Equal(t, got.Attendees.Normalize(), got.Attendees)
}

func TestJoinTwiceReportsAlreadyJoined(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 3)
	alice := e.addUser(t, "alice")

	_, err := e.events.Join(ctx, ev.ID, alice)
	require.NoError(t, err)

	_, err = e.events.Join(ctx, ev.ID, alice)
	assert.ErrorIs(t, err, apperr.ErrAlreadyJoined)

	got, err := e.store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserSet{alice}, got.Attendees)
}

func TestJoinMembershipBeatsFullness(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 2)
	alice, bob, carol := e.addUser(t, "alice"), e.addUser(t, "bob"), e.addUser(t, "carol")

	_, err := e.events.Join(ctx, ev.ID, alice)
	require.NoError(t, err)
	_, err = e.events.Join(ctx, ev.ID, bob)
	require.NoError(t, err)

	_, err = e.events.Join(ctx, ev.ID, alice)
	assert.ErrorIs(t, err, apperr.ErrAlreadyJoined)

	_, err = e.events.Join(ctx, ev.ID, carol)
	assert.ErrorIs(t, err, apperr.ErrFull)
}

func TestJoinMissingEvent(t *testing.T) {
	e := newEnv(t)
	alice := e.addUser(t, "alice")

	_, err := e.events.Join(context.Background(), uuid.NewString(), alice)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.events.Join(context.Background(), "not-a-uuid", alice)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestJoinRequiresUser(t *testing.T) {
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 1)
	_, err := e.events.Join(context.Background(), ev.ID, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSingleSeatScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 1)
	a, b := e.addUser(t, "a"), e.addUser(t, "b")

	got, err := e.events.Join(ctx, ev.ID, a)
	require.NoError(t, err)
	assert.Equal(t, model.UserSet{a}, got.Attendees)

	_, err = e.events.Join(ctx, ev.ID, b)
	assert.ErrorIs(t, err, apperr.ErrFull)

	got, err = e.events.Leave(ctx, ev.ID, a)
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)

	got, err = e.events.Join(ctx, ev.ID, b)
	require.NoError(t, err)
	assert.Equal(t, model.UserSet{b}, got.Attendees)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 3)
	a, b := e.addUser(t, "a"), e.addUser(t, "b")

	_, err := e.events.Join(ctx, ev.ID, a)
	require.NoError(t, err)
	_, err = e.events.Join(ctx, ev.ID, b)
	require.NoError(t, err)

	got, err := e.events.Leave(ctx, ev.ID, e.addUser(t, "stranger"))
	require.NoError(t, err)
	assert.Len(t, got.Attendees, 2)

	got, err = e.events.Leave(ctx, ev.ID, a)
	require.NoError(t, err)
	assert.Equal(t, model.UserSet{b}, got.Attendees)

	_, err = e.events.Leave(ctx, uuid.NewString(), a)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRSVPDispatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ev := e.addEvent(t, e.addUser(t, "host"), 3)
	a := e.addUser(t, "a")

	got, err := e.events.RSVP(ctx, ev.ID, a, ActionJoin)
	require.NoError(t, err)
	assert.True(t, got.Attendees.Contains(a))

	got, err = e.events.RSVP(ctx, ev.ID, a, ActionLeave)
	require.NoError(t, err)
	assert.False(t, got.Attendees.Contains(a))

	_, err = e.events.RSVP(ctx, ev.ID, a, "maybe")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// refusingStore reports every join as unmatched while reads show free seats.
type refusingStore struct {
	repository.EventStore
	event *model.Event
}

func (s refusingStore) JoinIfRoom(context.Context, string, string) (*model.Event, error) {
	return nil, repository.ErrConditionFailed
}

func (s refusingStore) GetEvent(context.Context, string) (*model.Event, error) {
	e := *s.event
	return &e, nil
}

func TestJoinDiagnosisNeverAdmits(t *testing.T) {
	ev := &model.Event{ID: uuid.NewString(), CreatorID: "host", Capacity: 10, Attendees: model.UserSet{}}
	svc := NewEventService(refusingStore{event: ev}, nil, nil, nil, testOptions())

	_, err := svc.Join(context.Background(), ev.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrFull)
}

// countingStore counts join attempts.
type countingStore struct {
	*memstore.Store
	joins atomic.Int32
}

func (s *countingStore) JoinIfRoom(ctx context.Context, eventID, userID string) (*model.Event, error) {
	s.joins.Add(1)
	return s.Store.JoinIfRoom(ctx, eventID, userID)
}

func TestJoinTimeoutIsNotRetried(t *testing.T) {
	store := &countingStore{Store: memstore.New()}
	ev := &model.Event{ID: uuid.NewString(), CreatorID: "host", Capacity: 5}
	require.NoError(t, store.CreateEvent(context.Background(), ev))
	store.WithLatency(200 * time.Millisecond)

	opts := testOptions()
	opts.StoreTimeout = 10 * time.Millisecond
	svc := NewEventService(store, store, store, nil, opts)

	_, err := svc.Join(context.Background(), ev.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.EqualValues(t, 1, store.joins.Load())
}

func TestCollaborate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host := e.addUser(t, "host")
	bob := e.addUser(t, "bob")
	ev := e.addEvent(t, host, 5)

	got, err := e.events.Collaborate(ctx, ev.ID, host, "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, model.UserSet{bob}, got.Collaborators)

	_, err = e.events.Collaborate(ctx, ev.ID, host, "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrAlreadyCollaborator)

	stored, err := e.store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Collaborators, 1)

	t.Run("collaborator cannot invite", func(t *testing.T) {
		e.addUser(t, "carol")
		_, err := e.events.Collaborate(ctx, ev.ID, bob, "carol@example.com")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.events.Collaborate(ctx, ev.ID, host, "nobody@example.com")
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})

	t.Run("creator", func(t *testing.T) {
		_, err := e.events.Collaborate(ctx, ev.ID, host, "host@example.com")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("bad email", func(t *testing.T) {
		_, err := e.events.Collaborate(ctx, ev.ID, host, "not-an-email")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host, other := e.addUser(t, "host"), e.addUser(t, "other")
	ev := e.addEvent(t, host, 2)

	_, err := e.comments.Create(ctx, ev.ID, other, model.CommentRequest{Text: "See you there"})
	require.NoError(t, err)

	err = e.events.Delete(ctx, ev.ID, other)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	stored, err := e.store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.Title, stored.Title)

	require.NoError(t, e.events.Delete(ctx, ev.ID, host))
	_, err = e.store.GetEvent(ctx, ev.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	left, err := e.store.ListComments(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host, bob, stranger := e.addUser(t, "host"), e.addUser(t, "bob"), e.addUser(t, "stranger")
	ev := e.addEvent(t, host, 3)
	_, err := e.events.Collaborate(ctx, ev.ID, host, "bob@example.com")
	require.NoError(t, err)

	title := "Spring cleanup"
	got, err := e.events.Update(ctx, ev.ID, bob, model.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Spring cleanup", got.Title)

	_, err = e.events.Update(ctx, ev.ID, stranger, model.EventPatch{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	set := model.UserSet{}
	_, err = e.events.Update(ctx, ev.ID, bob, model.EventPatch{Collaborators: &set})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = e.events.Update(ctx, ev.ID, host, model.EventPatch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cat := "food"
	got, err = e.events.Update(ctx, ev.ID, host, model.EventPatch{Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFood, got.Category)

	bad := "parties"
	_, err = e.events.Update(ctx, ev.ID, host, model.EventPatch{Category: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	t.Run("capacity below attendees", func(t *testing.T) {
		for _, id := range []string{bob, stranger} {
			_, err := e.events.Join(ctx, ev.ID, id)
			require.NoError(t, err)
		}
		one := 1
		_, err := e.events.Update(ctx, ev.ID, host, model.EventPatch{Capacity: &one})
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "(2)")

		zero := 0
		_, err = e.events.Update(ctx, ev.ID, host, model.EventPatch{Capacity: &zero})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host := e.addUser(t, "host")

	_, err := e.events.Create(ctx, host, model.CreateEventRequest{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req := model.CreateEventRequest{
		Title: "Gig", Description: "Loud", Date: fixedNow, Location: "Club", Capacity: 0, Image: "/i.png",
	}
	_, err = e.events.Create(ctx, host, req)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "capacity must be at least 1", err.Error())

	req.Capacity = 10
	req.Category = "Circus"
	_, err = e.events.Create(ctx, host, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req.Category = ""
	ev, err := e.events.Create(ctx, host, req)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, ev.Category)
	assert.Equal(t, host, ev.CreatorID)
	assert.NotNil(t, ev.Attendees)

	_, err = e.events.Create(ctx, "", req)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestGetPopulates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host, a := e.addUser(t, "host"), e.addUser(t, "a")
	ev := e.addEvent(t, host, 3)
	_, err := e.events.Join(ctx, ev.ID, a)
	require.NoError(t, err)

	d, err := e.events.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "host", d.Creator.Name)
	require.Len(t, d.Attendees, 1)
	assert.Equal(t, "a", d.Attendees[0].Name)
	assert.Empty(t, d.Collaborators)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	host := e.addUser(t, "host")
	ev := e.addEvent(t, host, 3)

	got, err := e.events.List(ctx, model.EventFilter{When: "upcoming"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = e.events.List(ctx, model.EventFilter{Exclude: ev.ID})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.events.List(ctx, model.EventFilter{When: "someday"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	mine, err := e.events.ListByCreator(ctx, host)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.addUser(t, "a")
	ev := e.addEvent(t, e.addUser(t, "host"), 3)

	got, err := e.events.ToggleLike(ctx, ev.ID, a)
	require.NoError(t, err)
	assert.True(t, got.Likes.Contains(a))

	got, err = e.events.ToggleLike(ctx, ev.ID, a)
	require.NoError(t, err)
	assert.False(t, got.Likes.Contains(a))
}
