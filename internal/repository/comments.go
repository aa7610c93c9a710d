package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts a comment.
func (r *CommentRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, event_id, user_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.EventID, c.UserID, c.Text, c.CreatedAt,
	)
	return translate(err, "comment", "insert comment")
}

// GetComment returns a comment without its author populated.
func (r *CommentRepository) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, user_id, text, created_at FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.EventID, &c.UserID, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, translate(err, "comment", "get comment")
	}
	return &c, nil
}

// ListComments returns an event's comments newest first.
func (r *CommentRepository) ListComments(ctx context.Context, eventID string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.event_id, c.user_id, c.text, c.created_at, u.name, u.email, u.profile_image
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.event_id = $1
		 ORDER BY c.created_at DESC, c.id DESC`,
		eventID,
	)
	if err != nil {
		return nil, translate(err, "comment", "list comments")
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.Text, &c.CreatedAt,
			&c.User.Name, &c.User.Email, &c.User.ProfileImage); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.User.ID = c.UserID
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "comment", "list comments")
	}
	return comments, nil
}

// DeleteComment removes a comment by id.
func (r *CommentRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "comment", "delete comment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err, "comment", "delete comment")
	}
	if n == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// DeleteCommentsByEvent removes every comment on an event and reports how
// many went.
func (r *CommentRepository) DeleteCommentsByEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, translate(err, "comment", "delete comments by event")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translate(err, "comment", "delete comments by event")
	}
	return n, nil
}
