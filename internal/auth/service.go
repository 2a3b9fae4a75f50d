package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gmemo/internal/validation"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type Service struct {
	users UserStore
	now   func() time.Time
}

func NewService(users UserStore) *Service {
	return &Service{users: users, now: time.Now}
}

// Register validates in and creates the account. A taken username is
// reported as a field error on "username".
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	hash, err := HashPassword(in.Password1)
	if err != nil {
		return User{}, err
	}
	u, err := s.users.CreateUser(ctx, User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DateJoined:   s.now().UTC(),
	})
	if errors.Is(err, ErrUserExists) {
		verr := &validation.Errors{}
		verr.Add("username", "A user with that username already exists.")
		return User{}, verr
	}
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user", u.Username, "id", u.ID)
	return u, nil
}

// Authenticate checks username and password and records the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	u, err := s.users.UserByName(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		burnVerify(password)
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	at := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, at); err != nil {
		slog.Warn("record last login", "user", u.Username, "err", err)
	} else {
		u.LastLogin = &at
	}
	return u, nil
}

func (s *Service) UserByID(ctx context.Context, id int64) (User, error) {
	return s.users.UserByID(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, username, hash)
}

// SyncSeedFile makes every account in the seed file exist with the file's
// hash. Accounts missing from the file are left alone.
func (s *Service) SyncSeedFile(ctx context.Context, path string) (int, error) {
	seeds, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, seed := range seeds {
		existing, err := s.users.UserByName(ctx, seed.Username)
		switch {
		case errors.Is(err, ErrUserNotFound):
			if _, err := s.users.CreateUser(ctx, User{
				Username:     seed.Username,
				PasswordHash: seed.Hash,
				DateJoined:   s.now().UTC(),
			}); err != nil {
				return changed, fmt.Errorf("seed user %s: %w", seed.Username, err)
			}
			changed++
		case err != nil:
			return changed, err
		case existing.PasswordHash != seed.Hash:
			if err := s.users.SetPasswordHash(ctx, seed.Username, seed.Hash); err != nil {
				return changed, fmt.Errorf("seed user %s: %w", seed.Username, err)
			}
			changed++
		}
	}
	slog.Info("auth file synced", "path", path, "users", len(seeds), "changed", changed)
	return changed, nil
}
