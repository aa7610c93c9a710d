// Package model defines the core domain types for the event RSVP service.
package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one of a fixed set of event labels.
type Category string

const (
	CategoryMusic      Category = "Music"
	CategoryTechnology Category = "Technology"
	CategorySports     Category = "Sports"
	CategoryArt        Category = "Art"
	CategoryFood       Category = "Food"
	CategoryBusiness   Category = "Business"
	CategoryOther      Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryMusic,
	CategoryTechnology,
	CategorySports,
	CategoryArt,
	CategoryFood,
	CategoryBusiness,
	CategoryOther,
}

var titleCaser = cases.Title(language.English)

// ParseCategory normalises user input ("music", "FOOD") to a Category. An
// empty string yields CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	c := Category(titleCaser.String(s))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Event is a capacity-limited event document.
type Event struct {
	ID            string    `json:"id" bson:"_id"`
	CreatorID     string    `json:"creator" bson:"creator"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	Date          time.Time `json:"date" bson:"date"`
	Location      string    `json:"location" bson:"location"`
	Category      Category  `json:"category" bson:"category"`
	Capacity      int       `json:"capacity" bson:"capacity"`
	Image         string    `json:"image" bson:"image"`
	Attendees     UserSet   `json:"attendees" bson:"attendees"`
	Collaborators UserSet   `json:"collaborators" bson:"collaborators"`
	Likes         UserSet   `json:"likes" bson:"likes"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.Capacity - len(e.Attendees)
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return len(e.Attendees) >= e.Capacity
}

// RoleOf resolves the role userID holds on this event.
func (e *Event) RoleOf(userID string) Role {
	switch {
	case userID == "":
		return RoleOther
	case userID == e.CreatorID:
		return RoleCreator
	case e.Collaborators.Contains(userID):
		return RoleCollaborator
	default:
		return RoleOther
	}
}

// Role is the closed set of relationships a user can have to an event.
type Role int

const (
	RoleOther Role = iota
	RoleCollaborator
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleCollaborator:
		return "collaborator"
	default:
		return "other"
	}
}

// CanEdit reports whether the role may change event fields.
func (r Role) CanEdit() bool { return r == RoleCreator || r == RoleCollaborator }

// CanDelete reports whether the role may delete the event.
func (r Role) CanDelete() bool { return r == RoleCreator }

// CanInvite reports whether the role may add or replace collaborators.
func (r Role) CanInvite() bool { return r == RoleCreator }

// EventDetail is an event with its user references resolved.
type EventDetail struct {
	Event
	Creator       UserSummary   `json:"creator"`
	Attendees     []UserSummary `json:"attendees"`
	Collaborators []UserSummary `json:"collaborators"`
}

// EventFilter narrows an event listing. Zero values disable a filter.
type EventFilter struct {
	Category Category
	Exclude  string
	Query    string
	When     string // "upcoming", "past" or ""
}

// EventPatch is a partial update; nil fields are left unchanged.
type EventPatch struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Date          *time.Time `json:"date,omitempty"`
	Location      *string    `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Category      *string    `json:"category,omitempty"`
	Capacity      *int       `json:"capacity,omitempty" validate:"omitempty,gte=1"`
	Image         *string    `json:"image,omitempty" validate:"omitempty,min=1"`
	Collaborators *UserSet   `json:"collaborators,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil &&
		p.Location == nil && p.Category == nil && p.Capacity == nil &&
		p.Image == nil && p.Collaborators == nil
}

// Apply returns a copy of e with the patch applied. Category must already be
// normalised by the caller.
func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = Category(*p.Category)
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Collaborators != nil {
		e.Collaborators = p.Collaborators.Normalize()
	}
	return e
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,max=5000"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,max=200"`
	Capacity    int       `json:"capacity" validate:"gte=1"`
	Image       string    `json:"image" validate:"required"`
	Category    string    `json:"category"`
}

// RSVPRequest is the payload of PUT /events/{id}/rsvp.
type RSVPRequest struct {
	Action string `json:"action" validate:"required,oneof=join leave"`
}

// CollaborateRequest is the payload of PUT /events/{id}/collaborate.
type CollaborateRequest struct {
	Email string `json:"email" validate:"required,email"`
}
