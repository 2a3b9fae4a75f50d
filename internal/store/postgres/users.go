package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gmemo/internal/auth"
)

const userColumns = "id, username, email, password_hash, date_joined, last_login"

func scanUser(row pgx.Row) (auth.User, error) {
	var u auth.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DateJoined, &u.LastLogin); err != nil {
		return auth.User{}, err
	}
	u.DateJoined = u.DateJoined.UTC()
	if u.LastLogin != nil {
		t := u.LastLogin.UTC()
		u.LastLogin = &t
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (username, email, password_hash, date_joined) VALUES ($1, $2, $3, $4) RETURNING id",
		u.Username, u.Email, u.PasswordHash, u.DateJoined,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return auth.User{}, auth.ErrUserExists
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, username string) (auth.User, error) {
	return s.oneUser(ctx, "username = $1", username)
}

func (s *Store) UserByID(ctx context.Context, id int64) (auth.User, error) {
	return s.oneUser(ctx, "id = $1", id)
}

func (s *Store) oneUser(ctx context.Context, where string, arg any) (auth.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if isNoRows(err) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) SetPasswordHash(ctx context.Context, username, hash string) error {
	return s.execUser(ctx, "UPDATE users SET password_hash = $1 WHERE username = $2", hash, username)
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.execUser(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", at, id)
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	return s.execUser(ctx, "DELETE FROM users WHERE username = $1", username)
}

func (s *Store) execUser(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
