package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

const userColumns = `id, name, email, password_hash, bio, profile_image, created_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Bio, &u.ProfileImage, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. A duplicate email yields a Conflict error.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Bio, u.ProfileImage, u.CreatedAt,
	)
	return translate(err, "user", "insert user")
}

// GetUser returns a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "user", "get user")
	}
	return u, nil
}

// GetUserByEmail returns a user by normalised email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, translate(err, "user", "get user by email")
	}
	return u, nil
}

// GetUsers resolves a batch of ids in one round trip. The ids travel as a
// JSON array so no driver array support is needed.
func (r *UserRepository) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id::text IN (SELECT jsonb_array_elements_text($1::jsonb))`,
		model.UserSet(ids),
	)
	if err != nil {
		return nil, translate(err, "user", "get users")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "user", "get users")
	}
	return users, nil
}

// UpdateUser applies a partial profile update.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, p model.ProfilePatch) (*model.User, error) {
	var sets []string
	var args []any
	set := func(col, v string) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Bio != nil {
		set("bio", *p.Bio)
	}
	if p.ProfileImage != nil {
		set("profile_image", *p.ProfileImage)
	}
	if len(sets) == 0 {
		return r.GetUser(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "user", "update user")
	}
	return u, nil
}
