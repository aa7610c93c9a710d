package memstore

import (
	"context"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// CreateUser stores a user. Emails are unique.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.CodeConflict, "user already exists")
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return apperr.New(apperr.CodeConflict, "user already exists")
	}
	s.users[u.ID] = *u
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}

// GetUserByEmail returns a user by normalised email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

// GetUsers returns the users that exist among ids. Unknown ids are skipped.
func (s *Store) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(ctx context.Context, id string, p model.ProfilePatch) (*model.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	s.users[id] = u
	return &u, nil
}
