// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
)

// Tokens signs HS256 tokens whose subject is the user id.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a signer. An empty secret is rejected.
func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Issue signs a token for userID.
func (t *Tokens) Issue(userID, email string) (string, error) {
	now := t.now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and lifetime and returns the user id.
func (t *Tokens) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.New(apperr.CodeUnauthenticated, "no token, authorization denied")
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}
	if c.Subject == "" {
		return "", apperr.New(apperr.CodeUnauthenticated, "token is not valid")
	}
	return c.Subject, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperr.Wrap(apperr.CodeUnauthenticated, "token has expired", err)
	}
	return apperr.Wrap(apperr.CodeUnauthenticated, "token is not valid", err)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
