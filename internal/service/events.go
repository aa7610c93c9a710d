package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

// IdentityResolver turns an email into a user id.
type IdentityResolver interface {
	ResolveUserByEmail(ctx context.Context, email string) (string, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events   repository.EventStore
	users    repository.UserStore
	comments repository.CommentStore
	identity IdentityResolver
	opts     Options
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events repository.EventStore,
	users repository.UserStore,
	comments repository.CommentStore,
	identity IdentityResolver,
	opts Options,
) *EventService {
	return &EventService{
		events:   events,
		users:    users,
		comments: comments,
		identity: identity,
		opts:     opts.withDefaults(),
	}
}

func invalidCategory(raw string) error {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return apperr.Newf(apperr.CodeValidation, "category %q is not one of: %s", raw, strings.Join(names, ", "))
}

// Create validates the request and stores a new event owned by userID.
func (s *EventService) Create(ctx context.Context, userID string, req model.CreateEventRequest) (*model.Event, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Image = strings.TrimSpace(req.Image)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return nil, invalidCategory(req.Category)
	}

	now := s.opts.Now().UTC()
	e := &model.Event{
		ID:            uuid.NewString(),
		CreatorID:     userID,
		Title:         req.Title,
		Description:   req.Description,
		Date:          req.Date.UTC(),
		Location:      req.Location,
		Category:      category,
		Capacity:      req.Capacity,
		Image:         req.Image,
		Attendees:     model.UserSet{},
		Collaborators: model.UserSet{},
		Likes:         model.UserSet{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := exec(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.events.CreateEvent(ctx, e)
	}); err != nil {
		return nil, err
	}
	s.opts.Logger.InfoContext(ctx, "event created", "event_id", e.ID, "creator_id", userID, "capacity", e.Capacity)
	return e, nil
}

// List returns events matching f, soonest first.
func (s *EventService) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	switch f.When {
	case "", "upcoming", "past":
	default:
		return nil, apperr.Validation("when must be one of: upcoming, past")
	}
	if f.Category != "" {
		c, err := model.ParseCategory(string(f.Category))
		if err != nil {
			return nil, invalidCategory(string(f.Category))
		}
		f.Category = c
	}
	now := s.opts.Now().UTC()
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]model.Event, error) {
		return s.events.ListEvents(ctx, f, now)
	})
}

// ListByCreator returns the events userID created.
func (s *EventService) ListByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	if !validID(userID) {
		return []model.Event{}, nil
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]model.Event, error) {
		return s.events.ListEventsByCreator(ctx, userID)
	})
}

func (s *EventService) get(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, apperr.NotFound("event")
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.GetEvent(ctx, id)
	})
}

// Get returns an event with creator, attendees and collaborators resolved.
func (s *EventService) Get(ctx context.Context, id string) (*model.EventDetail, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Populate(ctx, e)
}

// Populate resolves the user references of e in one batch lookup. References
// to users that no longer exist are dropped, except the creator, which keeps
// its id.
func (s *EventService) Populate(ctx context.Context, e *model.Event) (*model.EventDetail, error) {
	ids := model.UserSet{e.CreatorID}
	for _, id := range e.Attendees {
		ids = ids.Add(id)
	}
	for _, id := range e.Collaborators {
		ids = ids.Add(id)
	}
	users, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]model.User, error) {
		return s.users.GetUsers(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	resolve := func(set model.UserSet) []model.UserSummary {
		out := make([]model.UserSummary, 0, len(set))
		for _, id := range set {
			if u, ok := byID[id]; ok {
				out = append(out, u)
			}
		}
		return out
	}
	creator, ok := byID[e.CreatorID]
	if !ok {
		creator = model.UserSummary{ID: e.CreatorID}
	}
	return &model.EventDetail{
		Event:         *e,
		Creator:       creator,
		Attendees:     resolve(e.Attendees),
		Collaborators: resolve(e.Collaborators),
	}, nil
}

// Update applies a partial update. Creator and collaborators may edit;
// only the creator may replace the collaborator set.
func (s *EventService) Update(ctx context.Context, id, actorID string, p model.EventPatch) (*model.Event, error) {
	if err := requireUser(actorID); err != nil {
		return nil, err
	}
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, apperr.Validation("no fields to update")
	}
	if p.Category != nil {
		c, err := model.ParseCategory(*p.Category)
		if err != nil {
			return nil, invalidCategory(*p.Category)
		}
		name := string(c)
		p.Category = &name
	}
	if p.Date != nil {
		d := p.Date.UTC()
		p.Date = &d
	}

	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	role := e.RoleOf(actorID)
	if !role.CanEdit() {
		return nil, apperr.ErrUnauthorized
	}
	if p.Collaborators != nil {
		if !role.CanInvite() {
			return nil, apperr.New(apperr.CodeUnauthorized, "only the creator can change collaborators")
		}
		if p.Collaborators.Contains(e.CreatorID) {
			return nil, apperr.Validation("creator cannot be a collaborator")
		}
	}

	updated, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.UpdateEvent(ctx, id, p)
	})
	if errors.Is(err, repository.ErrConditionFailed) {
		// Only a capacity change carries a condition.
		cur, rerr := s.get(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, apperr.Newf(apperr.CodeValidation,
			"capacity cannot be less than the current number of attendees (%d)", len(cur.Attendees))
	}
	if err != nil {
		return nil, err
	}
	s.opts.Logger.InfoContext(ctx, "event updated", "event_id", id, "actor_id", actorID, "role", role.String())
	return updated, nil
}

// Delete removes an event. Only its creator may do so. Comments are removed
// afterwards on a best-effort basis; they are separate documents.
func (s *EventService) Delete(ctx context.Context, id, actorID string) error {
	if err := requireUser(actorID); err != nil {
		return err
	}
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !e.RoleOf(actorID).CanDelete() {
		return apperr.New(apperr.CodeUnauthorized, "only the creator can delete this event")
	}
	if err := exec(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.events.DeleteEvent(ctx, id)
	}); err != nil {
		return err
	}

	n, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (int64, error) {
		return s.comments.DeleteCommentsByEvent(ctx, id)
	})
	if err != nil {
		s.opts.Logger.WarnContext(ctx, "delete event comments", "event_id", id, "error", err)
	}
	s.opts.Logger.InfoContext(ctx, "event deleted", "event_id", id, "comments_removed", n)
	return nil
}

// ToggleLike flips the caller's like on an event.
func (s *EventService) ToggleLike(ctx context.Context, id, userID string) (*model.Event, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound("event")
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.ToggleLike(ctx, id, userID)
	})
}

