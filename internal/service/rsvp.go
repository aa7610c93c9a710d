package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

// RSVP actions accepted by PUT /events/{id}/rsvp.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

// RSVP dispatches a join or leave.
func (s *EventService) RSVP(ctx context.Context, eventID, userID, action string) (*model.Event, error) {
	switch action {
	case ActionJoin:
		return s.Join(ctx, eventID, userID)
	case ActionLeave:
		return s.Leave(ctx, eventID, userID)
	default:
		return nil, apperr.Validation("action must be one of: join, leave")
	}
}

// Join adds userID to the event's attendees.
//
// Admission is decided by the store's single conditional update alone. When
// that update matches nothing, a follow-up read only chooses the error to
// report, checking existence, then membership, then room; it never admits.
func (s *EventService) Join(ctx context.Context, eventID, userID string) (*model.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.Join", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("user.id", userID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, fail(span, err)
	}
	if !validID(eventID) {
		return nil, fail(span, apperr.NotFound("event"))
	}

	e, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.JoinIfRoom(ctx, eventID, userID)
	})
	if err == nil {
		span.SetAttributes(attribute.Int("event.attendees", len(e.Attendees)))
		s.opts.Logger.InfoContext(ctx, "rsvp joined",
			"event_id", eventID, "user_id", userID, "attendees", len(e.Attendees), "capacity", e.Capacity)
		return e, nil
	}
	if !errors.Is(err, repository.ErrConditionFailed) {
		s.opts.Logger.ErrorContext(ctx, "rsvp join", "event_id", eventID, "user_id", userID, "error", err)
		return nil, fail(span, err)
	}

	err = s.diagnoseJoin(ctx, eventID, userID)
	s.opts.Logger.InfoContext(ctx, "rsvp join refused", "event_id", eventID, "user_id", userID, "reason", apperr.CodeOf(err))
	return nil, fail(span, err)
}

// diagnoseJoin classifies a join whose conditional update did not apply.
// The read may be newer than the failed update; it only shapes the message.
func (s *EventService) diagnoseJoin(ctx context.Context, eventID, userID string) error {
	e, err := s.get(ctx, eventID)
	if err != nil {
		return err
	}
	if e.Attendees.Contains(userID) {
		return apperr.ErrAlreadyJoined
	}
	return apperr.ErrFull
}

// Leave removes userID from attendees. Leaving an event one does not attend
// succeeds and changes nothing.
func (s *EventService) Leave(ctx context.Context, eventID, userID string) (*model.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.Leave", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("user.id", userID),
	))
	defer span.End()

	if err := requireUser(userID); err != nil {
		return nil, fail(span, err)
	}
	if !validID(eventID) {
		return nil, fail(span, apperr.NotFound("event"))
	}
	e, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.RemoveAttendee(ctx, eventID, userID)
	})
	if err != nil {
		return nil, fail(span, err)
	}
	s.opts.Logger.InfoContext(ctx, "rsvp left", "event_id", eventID, "user_id", userID, "attendees", len(e.Attendees))
	return e, nil
}

// Collaborate grants the user registered under email edit rights on the
// event. Only the creator may invite.
func (s *EventService) Collaborate(ctx context.Context, eventID, requesterID, email string) (*model.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.Collaborate", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("user.id", requesterID),
	))
	defer span.End()

	if err := requireUser(requesterID); err != nil {
		return nil, fail(span, err)
	}
	if err := model.Validate(model.CollaborateRequest{Email: email}); err != nil {
		return nil, fail(span, err)
	}
	e, err := s.get(ctx, eventID)
	if err != nil {
		return nil, fail(span, err)
	}
	if !e.RoleOf(requesterID).CanInvite() {
		return nil, fail(span, apperr.New(apperr.CodeUnauthorized, "only the creator can add collaborators"))
	}

	targetID, err := s.identity.ResolveUserByEmail(ctx, email)
	if err != nil {
		return nil, fail(span, err)
	}
	if targetID == e.CreatorID {
		return nil, fail(span, apperr.Validation("creator cannot be a collaborator"))
	}
	if e.Collaborators.Contains(targetID) {
		return nil, fail(span, apperr.ErrAlreadyCollaborator)
	}

	updated, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.AddCollaborator(ctx, eventID, targetID)
	})
	if errors.Is(err, repository.ErrConditionFailed) {
		if _, rerr := s.get(ctx, eventID); rerr != nil {
			return nil, fail(span, rerr)
		}
		return nil, fail(span, apperr.ErrAlreadyCollaborator)
	}
	if err != nil {
		return nil, fail(span, err)
	}
	s.opts.Logger.InfoContext(ctx, "collaborator added", "event_id", eventID, "collaborator_id", targetID)
	return updated, nil
}
