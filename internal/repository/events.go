package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

const eventColumns = `id, creator_id, title, description, date, location, category, capacity, image,
	attendees, collaborators, likes, created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.CreatorID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Category,
		&e.Capacity, &e.Image, &e.Attendees, &e.Collaborators, &e.Likes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// CreateEvent inserts a new event. ID and timestamps must already be set.
func (r *EventRepository) CreateEvent(ctx context.Context, e *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.CreatorID, e.Title, e.Description, e.Date, e.Location, string(e.Category),
		e.Capacity, e.Image, e.Attendees, e.Collaborators, e.Likes, e.CreatedAt, e.UpdatedAt,
	)
	return translate(err, "event", "insert event")
}

// GetEvent returns a single event or a NotFound error.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, translate(err, "event", "get event")
	}
	return e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildEventFilter turns a filter into a WHERE clause and its arguments.
func buildEventFilter(f model.EventFilter, now time.Time) (string, []any) {
	var parts []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		parts = append(parts, "category = "+next(string(f.Category)))
	}
	if f.Exclude != "" {
		parts = append(parts, "id::text <> "+next(f.Exclude))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		ph := next("%" + likeEscaper.Replace(q) + "%")
		parts = append(parts, fmt.Sprintf("(title ILIKE %s OR location ILIKE %s)", ph, ph))
	}
	switch f.When {
	case "upcoming":
		parts = append(parts, "date >= "+next(now))
	case "past":
		parts = append(parts, "date < "+next(now))
	}

	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// ListEvents returns events matching f ordered by date ascending.
func (r *EventRepository) ListEvents(ctx context.Context, f model.EventFilter, now time.Time) ([]model.Event, error) {
	where, args := buildEventFilter(f, now)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events`+where+` ORDER BY date ASC, id ASC`, args...)
	if err != nil {
		return nil, translate(err, "event", "list events")
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, translate(err, "event", "list events")
	}
	return events, nil
}

// ListEventsByCreator returns the events a user created, soonest first.
func (r *EventRepository) ListEventsByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE creator_id = $1 ORDER BY date ASC, id ASC`, userID)
	if err != nil {
		return nil, translate(err, "event", "list events by creator")
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, translate(err, "event", "list events by creator")
	}
	return events, nil
}

// UpdateEvent applies a partial update in a single UPDATE. A capacity change
// carries its own guard so it can never drop below the attendee count.
func (r *EventRepository) UpdateEvent(ctx context.Context, id string, p model.EventPatch) (*model.Event, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Date != nil {
		set("date", *p.Date)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.Capacity != nil {
		set("capacity", *p.Capacity)
	}
	if p.Image != nil {
		set("image", *p.Image)
	}
	if p.Collaborators != nil {
		set("collaborators", p.Collaborators.Normalize())
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	if p.Capacity != nil {
		args = append(args, *p.Capacity)
		query += fmt.Sprintf(" AND jsonb_array_length(attendees) <= $%d", len(args))
	}
	query += ` RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) && p.Capacity != nil {
			return nil, ErrConditionFailed
		}
		return nil, translate(err, "event", "update event")
	}
	return e, nil
}

// DeleteEvent removes an event. Comments go with it through ON DELETE CASCADE.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return translate(err, "event", "delete event")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err, "event", "delete event")
	}
	if n == 0 {
		return apperr.NotFound("event")
	}
	return nil
}

// JoinIfRoom is the capacity-safe RSVP primitive.
//
// The predicate and the write are one statement. Under concurrent joins
// Postgres serialises updates on the row and re-evaluates the WHERE clause
// against the newest row version, so a join that loses the race sees the
// increased attendee count and matches nothing rather than overshooting.
func (r *EventRepository) JoinIfRoom(ctx context.Context, eventID, userID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET attendees = attendees || jsonb_build_array($2::text), updated_at = now()
		 WHERE id = $1
		   AND jsonb_array_length(attendees) < capacity
		   AND NOT (attendees ? $2::text)
		 RETURNING `+eventColumns,
		eventID, userID,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionFailed
		}
		return nil, translate(err, "event", "join event")
	}
	return e, nil
}

// RemoveAttendee pulls userID from attendees. Removing a non-member still
// returns the event.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET attendees = attendees - $2::text, updated_at = now()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		eventID, userID,
	)
	e, err := scanEvent(row)
	if err != nil {
		return nil, translate(err, "event", "leave event")
	}
	return e, nil
}

// AddCollaborator appends userID to collaborators when absent.
func (r *EventRepository) AddCollaborator(ctx context.Context, eventID, userID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET collaborators = collaborators || jsonb_build_array($2::text), updated_at = now()
		 WHERE id = $1 AND NOT (collaborators ? $2::text)
		 RETURNING `+eventColumns,
		eventID, userID,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionFailed
		}
		return nil, translate(err, "event", "add collaborator")
	}
	return e, nil
}

// ToggleLike adds or removes userID from likes in one statement.
func (r *EventRepository) ToggleLike(ctx context.Context, eventID, userID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE events
		 SET likes = CASE WHEN likes ? $2::text
		                  THEN likes - $2::text
		                  ELSE likes || jsonb_build_array($2::text) END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		eventID, userID,
	)
	e, err := scanEvent(row)
	if err != nil {
		return nil, translate(err, "event", "toggle like")
	}
	return e, nil
}
