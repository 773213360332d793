package users

import (
	"context"
	"time"
)

// User is a stored account. Only administrators can register, so every
// persisted user has IsAdmin set.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserInfo is the public profile returned to clients.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username}
}

// Principal identifies the authenticated administrator making a request.
type Principal struct {
	UserID   string
	Username string
}

// Repository is the user store.
type Repository interface {
	AdminExists(ctx context.Context) (bool, error)
	// GetByUsername returns ErrUserNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Create returns ErrUsernameTaken or ErrAdminExists when a unique key is violated.
	Create(ctx context.Context, user User) (*User, error)
}
