package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	DateJoined   time.Time
	LastLogin    *time.Time
}

// UserStore persists accounts. Deleting a user removes the user's memos.
type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByName(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)
	SetPasswordHash(ctx context.Context, username, hash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, username string) error
}
