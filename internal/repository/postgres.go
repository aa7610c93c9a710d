package repository

import (
	"context"
	"database/sql"
)

// Postgres is the PostgreSQL-backed Store.
type Postgres struct {
	*EventRepository
	*UserRepository
	*CommentRepository

	db *sql.DB
}

// NewPostgres wires the three repositories over one handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		EventRepository:   NewEventRepository(db),
		UserRepository:    NewUserRepository(db),
		CommentRepository: NewCommentRepository(db),
		db:                db,
	}
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return translate(p.db.PingContext(ctx), "database", "ping")
}

// Close releases the database/sql handle. The pgx pool is closed by its owner.
func (p *Postgres) Close() error {
	return p.db.Close()
}

var _ Store = (*Postgres)(nil)
