package model

import (
	"strings"
	"time"
)

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Bio          string    `json:"bio" bson:"bio"`
	ProfileImage string    `json:"profile_image" bson:"profile_image"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Summary returns the public subset used when populating references.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage}
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch is a partial profile update.
type ProfilePatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
