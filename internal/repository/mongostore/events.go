package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/repository"
)

var (
	returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)
	byDate      = options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
)

// CreateEvent inserts an event. Sets are stored as empty arrays, never null,
// so the $size expressions below always have an array to measure.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	doc := *e
	doc.Attendees = doc.Attendees.Normalize()
	doc.Collaborators = doc.Collaborators.Normalize()
	doc.Likes = doc.Likes.Normalize()
	_, err := s.events.InsertOne(ctx, doc)
	return translate(err, "event", "insert event")
}

// GetEvent returns a single event or a NotFound error.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err, "event", "get event")
	}
	return &e, nil
}

// eventFilter turns a filter into a query document.
func eventFilter(f model.EventFilter, now time.Time) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = string(f.Category)
	}
	if f.Exclude != "" {
		q["_id"] = bson.M{"$ne": f.Exclude}
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": re}, bson.M{"location": re}}
	}
	switch f.When {
	case "upcoming":
		q["date"] = bson.M{"$gte": now}
	case "past":
		q["date"] = bson.M{"$lt": now}
	}
	return q
}

func (s *Store) find(ctx context.Context, filter bson.M, op string) ([]model.Event, error) {
	cur, err := s.events.Find(ctx, filter, byDate)
	if err != nil {
		return nil, translate(err, "event", op)
	}
	events := []model.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, translate(err, "event", op)
	}
	return events, nil
}

// ListEvents returns events matching f ordered by date ascending.
func (s *Store) ListEvents(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error) {
	return s.find(ctx, eventFilter(f, now), "list events")
}

// ListEventsByCreator returns the events a user created, soonest first.
func (s *Store) ListEventsByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	return s.find(ctx, bson.M{"creator": userID}, "list events by creator")
}

// patchSet builds the $set document for a patch.
func patchSet(p model.EventPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Collaborators != nil {
		set["collaborators"] = p.Collaborators.Normalize()
	}
	return set
}

// UpdateEvent applies a patch in one FindOneAndUpdate. A capacity change only
// matches while the attendee count fits the new capacity.
func (s *Store) UpdateEvent(ctx context.Context, id string, p model.EventPatch) (*model.Event, error) {
	filter := bson.M{"_id": id}
	if p.Capacity != nil {
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$attendees"}, *p.Capacity}}
	}
	e, err := s.findOneAndUpdate(ctx, filter, bson.M{"$set": patchSet(p, s.now().UTC())})
	if p.Capacity != nil && errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrConditionFailed
	}
	return e, translate(err, "event", "update event")
}

// DeleteEvent removes an event. Comments are left to the caller.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "event", "delete event")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("event")
	}
	return nil
}

// joinFilter matches the event only while it has room and userID is not yet
// an attendee.
func joinFilter(eventID, userID string) bson.M {
	return bson.M{
		"_id":       eventID,
		"attendees": bson.M{"$ne": userID},
		"$expr":     bson.M{"$lt": bson.A{bson.M{"$size": "$attendees"}, "$capacity"}},
	}
}

// JoinIfRoom is the capacity-safe RSVP primitive. The predicate is evaluated
// by the server against the document it writes, so concurrent joins can
// never push attendees past capacity.
func (s *Store) JoinIfRoom(ctx context.Context, eventID, userID string) (*model.Event, error) {
	update := bson.M{
		"$addToSet": bson.M{"attendees": userID},
		"$set":      bson.M{"updated_at": s.now().UTC()},
	}
	e, err := s.findOneAndUpdate(ctx, joinFilter(eventID, userID), update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrConditionFailed
	}
	return e, translate(err, "event", "join event")
}

// RemoveAttendee pulls userID from attendees.
func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, error) {
	update := bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": s.now().UTC()},
	}
	e, err := s.findOneAndUpdate(ctx, bson.M{"_id": eventID}, update)
	return e, translate(err, "event", "leave event")
}

// AddCollaborator adds userID to collaborators when absent.
func (s *Store) AddCollaborator(ctx context.Context, eventID, userID string) (*model.Event, error) {
	filter := bson.M{"_id": eventID, "collaborators": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"collaborators": userID},
		"$set":      bson.M{"updated_at": s.now().UTC()},
	}
	e, err := s.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrConditionFailed
	}
	return e, translate(err, "event", "add collaborator")
}

// toggleLikePipeline flips userID's membership in likes within one update.
func toggleLikePipeline(userID string, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, "$likes"}},
				bson.M{"$setDifference": bson.A{"$likes", bson.A{userID}}},
				bson.M{"$concatArrays": bson.A{"$likes", bson.A{userID}}},
			}}},
			{Key: "updated_at", Value: now},
		}}},
	}
}

// ToggleLike adds or removes userID from likes atomically.
func (s *Store) ToggleLike(ctx context.Context, eventID, userID string) (*model.Event, error) {
	e, err := s.findOneAndUpdate(ctx, bson.M{"_id": eventID}, toggleLikePipeline(userID, s.now().UTC()))
	return e, translate(err, "event", "toggle like")
}

// findOneAndUpdate returns the updated document. Raw driver errors are
// returned so callers can tell ErrNoDocuments apart.
func (s *Store) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*model.Event, error) {
	var e model.Event
	if err := s.events.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
