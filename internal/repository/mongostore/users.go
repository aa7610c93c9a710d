package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// CreateUser inserts a user. The unique email index turns a duplicate into a
// Conflict error.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.users.InsertOne(ctx, u)
	return translate(err, "user", "insert user")
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id}, "get user")
}

// GetUserByEmail returns a user by normalised email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email}, "get user by email")
}

func (s *Store) findUser(ctx context.Context, filter bson.M, op string) (*model.User, error) {
	var u model.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err, "user", op)
	}
	return &u, nil
}

// GetUsers resolves a batch of ids with one $in query.
func (s *Store) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "user", "get users")
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate(err, "user", "get users")
	}
	return users, nil
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(ctx context.Context, id string, p model.ProfilePatch) (*model.User, error) {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	if p.ProfileImage != nil {
		set["profile_image"] = *p.ProfileImage
	}
	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}

	var u model.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, translate(err, "user", "update user")
	}
	return &u, nil
}
