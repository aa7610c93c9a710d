package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

// CommentService manages comments on events.
type CommentService struct {
	comments repository.CommentStore
	events   repository.EventStore
	users    repository.UserStore
	opts     Options
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments repository.CommentStore, events repository.EventStore, users repository.UserStore, opts Options) *CommentService {
	return &CommentService{comments: comments, events: events, users: users, opts: opts.withDefaults()}
}

func (s *CommentService) requireEvent(ctx context.Context, eventID string) error {
	if !validID(eventID) {
		return apperr.NotFound("event")
	}
	_, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Event, error) {
		return s.events.GetEvent(ctx, eventID)
	})
	return err
}

// List returns an event's comments newest first.
func (s *CommentService) List(ctx context.Context, eventID string) ([]model.Comment, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]model.Comment, error) {
		return s.comments.ListComments(ctx, eventID)
	})
}

// Create posts a comment by userID.
func (s *CommentService) Create(ctx context.Context, eventID, userID string, req model.CommentRequest) (*model.Comment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	author, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	c := &model.Comment{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Text:      req.Text,
		CreatedAt: s.opts.Now().UTC(),
	}
	if err := exec(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.comments.CreateComment(ctx, c)
	}); err != nil {
		return nil, err
	}
	c.User = author.Summary()
	return c, nil
}

// Delete removes a comment. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if !validID(commentID) {
		return apperr.NotFound("comment")
	}
	c, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.Comment, error) {
		return s.comments.GetComment(ctx, commentID)
	})
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return apperr.New(apperr.CodeUnauthorized, "only the author can delete this comment")
	}
	return exec(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.comments.DeleteComment(ctx, commentID)
	})
}
