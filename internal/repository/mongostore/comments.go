package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// CreateComment inserts a comment.
func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := s.comments.InsertOne(ctx, c)
	return translate(err, "comment", "insert comment")
}

// GetComment returns a comment without its author populated.
func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "comment", "get comment")
	}
	return &c, nil
}

// ListComments returns an event's comments newest first. Authors are
// resolved with a second query since comments only carry the user id.
func (s *Store) ListComments(ctx context.Context, eventID string) ([]model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.comments.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, translate(err, "comment", "list comments")
	}
	comments := []model.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, translate(err, "comment", "list comments")
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.GetUsers(ctx, model.UserSet(ids).Normalize())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range comments {
		if u, ok := byID[comments[i].UserID]; ok {
			comments[i].User = u.Summary()
		} else {
			comments[i].User = model.UserSummary{ID: comments[i].UserID}
		}
	}
	return comments, nil
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "comment", "delete comment")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// DeleteCommentsByEvent removes every comment on an event.
func (s *Store) DeleteCommentsByEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := s.comments.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, translate(err, "comment", "delete comments by event")
	}
	return res.DeletedCount, nil
}
