package model

import "time"

// Comment is a note left by a user on an event. Comments are independent
// documents; nothing updates an event and a comment atomically.
type Comment struct {
	ID        string      `json:"id" bson:"_id"`
	EventID   string      `json:"event_id" bson:"event_id"`
	UserID    string      `json:"-" bson:"user_id"`
	Text      string      `json:"text" bson:"text"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	User      UserSummary `json:"user" bson:"-"`
}

// CommentRequest is the payload for posting a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}
