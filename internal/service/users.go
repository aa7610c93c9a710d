package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

var errBadCredentials = apperr.New(apperr.CodeUnauthenticated, "invalid credentials")

// UserService is the identity provider: accounts, credentials and tokens.
type UserService struct {
	users  repository.UserStore
	tokens *auth.Tokens
	opts   Options
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserStore, tokens *auth.Tokens, opts Options) *UserService {
	return &UserService{users: users, tokens: tokens, opts: opts.withDefaults()}
}

var _ IdentityResolver = (*UserService)(nil)

// Register creates an account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = model.NormalizeEmail(req.Email)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.opts.Now().UTC(),
	}
	if err := exec(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.users.CreateUser(ctx, u)
	}); err != nil {
		return nil, err
	}
	s.opts.Logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.respond(u)
}

// Login exchanges credentials for a token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// Authenticate checks credentials and returns the user id.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.authenticate(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *UserService) authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	u, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetUserByEmail(ctx, req.Email)
	})
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := auth.CheckPassword(u.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errBadCredentials
	}
	return u, nil
}

func (s *UserService) respond(u *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: *u}, nil
}

// VerifyToken returns the user id a bearer token was issued to.
func (s *UserService) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

// ResolveUserByEmail returns the id of the account registered under email.
func (s *UserService) ResolveUserByEmail(ctx context.Context, email string) (string, error) {
	u, err := call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetUserByEmail(ctx, model.NormalizeEmail(email))
	})
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return "", apperr.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// Profile returns a user by id.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if !validID(userID) {
		return nil, apperr.NotFound("user")
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.GetUser(ctx, userID)
	})
}

// UpdateProfile applies a partial profile update to the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, p model.ProfilePatch) (*model.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	return call(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*model.User, error) {
		return s.users.UpdateUser(ctx, userID, p)
	})
}
