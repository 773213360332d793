package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE is_admin)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("admin exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id::text, username, password_hash, is_admin, created_at
  FROM users
 WHERE username = $1
`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user users.User) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (id, username, password_hash, is_admin)
VALUES ($1::text::uuid, $2, $3, $4)
RETURNING id::text, username, password_hash, is_admin, created_at
`, user.ID, user.Username, user.PasswordHash, user.IsAdmin)

	created, err := scanUser(row)
	if err != nil {
		switch uniqueConstraint(err) {
		case constraintSingleAdmin:
			return nil, users.ErrAdminExists
		case constraintUsername:
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		user      users.User
		createdAt time.Time
	)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &createdAt); err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt
	return &user, nil
}
