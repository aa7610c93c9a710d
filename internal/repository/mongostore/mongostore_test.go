package mongostore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

func TestEventFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, eventFilter(model.EventFilter{}, now))
	})

	t.Run("all fields", func(t *testing.T) {
		q := eventFilter(model.EventFilter{
			Category: model.CategoryArt,
			Exclude:  "e1",
			Query:    " a.b ",
			When:     "past",
		}, now)

		assert.Equal(t, "Art", q["category"])
		assert.Equal(t, bson.M{"$ne": "e1"}, q["_id"])
		assert.Equal(t, bson.M{"$lt": now}, q["date"])

		re := primitive.Regex{Pattern: `a\.b`, Options: "i"}
		assert.Equal(t, bson.A{bson.M{"title": re}, bson.M{"location": re}}, q["$or"])
	})

	t.Run("upcoming", func(t *testing.T) {
		q := eventFilter(model.EventFilter{When: "upcoming"}, now)
		assert.Equal(t, bson.M{"$gte": now}, q["date"])
	})
}

func TestJoinFilter(t *testing.T) {
	f := joinFilter("e1", "u1")
	assert.Equal(t, "e1", f["_id"])
	assert.Equal(t, bson.M{"$ne": "u1"}, f["attendees"])
	assert.Equal(t, bson.M{"$lt": bson.A{bson.M{"$size": "$attendees"}, "$capacity"}}, f["$expr"])
}

func TestPatchSet(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	title := "New title"
	capacity := 4
	set := patchSet(model.EventPatch{
		Title:         &title,
		Capacity:      &capacity,
		Collaborators: &model.UserSet{"a", "a", ""},
	}, now)

	assert.Equal(t, bson.M{
		"title":         "New title",
		"capacity":      4,
		"collaborators": model.UserSet{"a"},
		"updated_at":    now,
	}, set)
}

func TestToggleLikePipeline(t *testing.T) {
	p := toggleLikePipeline("u1", time.Unix(0, 0))
	require.Len(t, p, 1)
	require.Equal(t, "$set", p[0][0].Key)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "event", "get"))
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(translate(mongo.ErrNoDocuments, "event", "get")))
	assert.Equal(t, apperr.CodeStoreUnavailable,
		apperr.CodeOf(translate(fmt.Errorf("find: %w", context.DeadlineExceeded), "event", "get")))

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := translate(dup, "user", "insert user")
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	assert.Equal(t, "user already exists", err.Error())

	other := errors.New("boom")
	err = translate(other, "event", "get event")
	assert.ErrorIs(t, err, other)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}
