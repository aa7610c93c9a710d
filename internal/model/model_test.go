package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "", want: CategoryOther},
		{in: "music", want: CategoryMusic},
		{in: "  TECHNOLOGY ", want: CategoryTechnology},
		{in: "Food", want: CategoryFood},
		{in: "karaoke", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleOf(t *testing.T) {
	e := Event{CreatorID: "owner", Collaborators: UserSet{"helper"}}

	assert.Equal(t, RoleCreator, e.RoleOf("owner"))
	assert.Equal(t, RoleCollaborator, e.RoleOf("helper"))
	assert.Equal(t, RoleOther, e.RoleOf("stranger"))
	assert.Equal(t, RoleOther, e.RoleOf(""))

	assert.True(t, RoleCreator.CanEdit())
	assert.True(t, RoleCreator.CanDelete())
	assert.True(t, RoleCreator.CanInvite())
	assert.True(t, RoleCollaborator.CanEdit())
	assert.False(t, RoleCollaborator.CanDelete())
	assert.False(t, RoleCollaborator.CanInvite())
	assert.False(t, RoleOther.CanEdit())
	assert.Equal(t, "collaborator", RoleCollaborator.String())
}

func TestCapacityHelpers(t *testing.T) {
	e := Event{Capacity: 2, Attendees: UserSet{"a"}}
	assert.Equal(t, 1, e.Remaining())
	assert.False(t, e.IsFull())

	e.Attendees = e.Attendees.Add("b")
	assert.True(t, e.IsFull())
	assert.Equal(t, 0, e.Remaining())
}

func TestUserSetIsImmutable(t *testing.T) {
	base := UserSet{"a", "b"}

	added := base.Add("c")
	assert.Equal(t, UserSet{"a", "b"}, base)
	assert.Equal(t, UserSet{"a", "b", "c"}, added)

	same := base.Add("a")
	assert.Equal(t, UserSet{"a", "b"}, same)

	removed := base.Remove("a")
	assert.Equal(t, UserSet{"a", "b"}, base)
	assert.Equal(t, UserSet{"b"}, removed)
	assert.Equal(t, UserSet{"a", "b"}, base.Remove("zzz"))

	assert.Equal(t, UserSet{"b"}, base.Toggle("a"))
	assert.Equal(t, UserSet{"a", "b", "x"}, base.Toggle("x"))

	assert.Equal(t, UserSet{"a", "b"}, UserSet{"a", "", "b", "a"}.Normalize())
}

func TestUserSetSQL(t *testing.T) {
	var s UserSet
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Scan([]byte(`["u1","u2"]`)))
	assert.Equal(t, UserSet{"u1", "u2"}, s)

	require.NoError(t, s.Scan(`[]`))
	assert.Equal(t, UserSet{}, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, UserSet{}, s)

	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan("{not json"))
}

func TestEventDetailJSONShadowsReferences(t *testing.T) {
	d := EventDetail{
		Event:     Event{ID: "e1", CreatorID: "u1", Attendees: UserSet{"u2"}},
		Creator:   UserSummary{ID: "u1", Name: "Ada"},
		Attendees: []UserSummary{{ID: "u2", Name: "Grace"}},
	}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "e1", out["id"])
	creator, ok := out["creator"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", creator["name"])
	attendees, ok := out["attendees"].([]any)
	require.True(t, ok)
	assert.Len(t, attendees, 1)
	assert.Equal(t, []any{}, out["likes"])
}

func TestEventPatchApply(t *testing.T) {
	title := "New title"
	capacity := 9
	collabs := UserSet{"x", "x", "y"}
	p := EventPatch{Title: &title, Capacity: &capacity, Collaborators: &collabs}
	assert.False(t, p.Empty())
	assert.True(t, EventPatch{}.Empty())

	e := p.Apply(Event{Title: "Old", Capacity: 3, Location: "Here"})
	assert.Equal(t, "New title", e.Title)
	assert.Equal(t, 9, e.Capacity)
	assert.Equal(t, "Here", e.Location)
	assert.Equal(t, UserSet{"x", "y"}, e.Collaborators)
}

func TestValidate(t *testing.T) {
	valid := CreateEventRequest{
		Title:       "Gopher meetup",
		Description: "Talks and pizza",
		Date:        time.Now().Add(24 * time.Hour),
		Location:    "Berlin",
		Capacity:    10,
		Image:       "/uploads/gopher.png",
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name    string
		mutate  func(r *CreateEventRequest)
		wantMsg string
	}{
		{"missing title", func(r *CreateEventRequest) { r.Title = "" }, "title is required"},
		{"zero capacity", func(r *CreateEventRequest) { r.Capacity = 0 }, "capacity must be at least 1"},
		{"negative capacity", func(r *CreateEventRequest) { r.Capacity = -4 }, "capacity must be at least 1"},
		{"missing date", func(r *CreateEventRequest) { r.Date = time.Time{} }, "date is required"},
		{"missing image", func(r *CreateEventRequest) { r.Image = "" }, "image is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := Validate(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.EqualError(t, err, tt.wantMsg)
		})
	}

	err := Validate(RSVPRequest{Action: "maybe"})
	assert.EqualError(t, err, "action must be one of: join, leave")

	err = Validate(CollaborateRequest{Email: "nobody@nowhere"})
	assert.EqualError(t, err, "email must be a valid email address")
}
