package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gmemo/internal/auth"
)

const userColumns = "id, username, email, password_hash, date_joined, last_login"

func scanUser(row rowScanner) (auth.User, error) {
	var (
		u         auth.User
		joined    int64
		lastLogin sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &joined, &lastLogin); err != nil {
		return auth.User{}, err
	}
	u.DateJoined = fromMillis(joined)
	if lastLogin.Valid {
		t := fromMillis(lastLogin.Int64)
		u.LastLogin = &t
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	res, err := s.execContext(ctx,
		"INSERT INTO users(username, email, password_hash, date_joined) VALUES(?, ?, ?, ?)",
		u.Username, u.Email, u.PasswordHash, u.DateJoined.UnixMilli(),
	)
	if isUniqueViolation(err) {
		return auth.User{}, auth.ErrUserExists
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	u.DateJoined = fromMillis(u.DateJoined.UnixMilli())
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, username string) (auth.User, error) {
	return s.oneUser(ctx, "username = ?", username)
}

func (s *Store) UserByID(ctx context.Context, id int64) (auth.User, error) {
	return s.oneUser(ctx, "id = ?", id)
}

func (s *Store) oneUser(ctx context.Context, where string, arg any) (auth.User, error) {
	u, err := scanUser(s.queryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) SetPasswordHash(ctx context.Context, username, hash string) error {
	res, err := s.execContext(ctx, "UPDATE users SET password_hash = ? WHERE username = ?", hash, username)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return expectUser(res)
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := s.execContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return expectUser(res)
}

func (s *Store) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := s.queryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
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

// DeleteUser removes the account; its memos go with it through the
// foreign key cascade.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res, err := s.execContext(ctx, "DELETE FROM users WHERE username = ?", username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectUser(res)
}

func expectUser(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
