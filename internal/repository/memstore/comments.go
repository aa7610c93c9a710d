package memstore

import (
	"context"
	"sort"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// CreateComment stores a comment.
func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[c.EventID]; !ok {
		return apperr.NotFound("event")
	}
	stored := *c
	stored.User = model.UserSummary{}
	s.comments[c.ID] = stored
	return nil
}

// GetComment returns a comment without its author populated.
func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment")
	}
	return &c, nil
}

// ListComments returns an event's comments newest first with authors filled in.
func (s *Store) ListComments(ctx context.Context, eventID string) ([]model.Comment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Comment{}
	for _, c := range s.comments {
		if c.EventID != eventID {
			continue
		}
		if u, ok := s.users[c.UserID]; ok {
			c.User = u.Summary()
		} else {
			c.User = model.UserSummary{ID: c.UserID}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return apperr.NotFound("comment")
	}
	delete(s.comments, id)
	return nil
}

// DeleteCommentsByEvent removes every comment on an event.
func (s *Store) DeleteCommentsByEvent(ctx context.Context, eventID string) (int64, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.comments {
		if c.EventID == eventID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}
