// Package sqlite keeps users and memos in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"gmemo/internal/memo"
)

// driverName is go-sqlite3 with the casefold() function every connection
// needs for search.
const driverName = "sqlite3_gmemo"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", memo.Fold, true)
		},
	})
}

type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

type Options struct {
	// BusyTimeout is handed to SQLite itself.
	BusyTimeout time.Duration
	// LockTimeout bounds the retry loop around a busy statement.
	LockTimeout time.Duration
}

func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}
	db, err := sql.Open(driverName, dsn(path, opts.BusyTimeout))
	if err != nil {
		return nil, err
	}
	return &Store{db: db, lockTimeout: opts.LockTimeout}, nil
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	if busy > 0 {
		q.Set("_busy_timeout", strconv.FormatInt(busy.Milliseconds(), 10))
	}
	return "file:" + path + "?" + q.Encode()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Init creates the schema and records its version.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.execContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	version, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}
	if version != schemaVersion {
		return s.setSchemaVersion(ctx, schemaVersion)
	}
	return nil
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.queryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, v int) error {
	tx, start, err := s.beginTx(ctx, "schema-version")
	if err != nil {
		return err
	}
	defer s.rollbackTx(tx, "schema-version", start)
	if _, err := s.execContextTx(ctx, tx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := s.execContextTx(ctx, tx, "INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
		return err
	}
	return s.commitTx(tx, "schema-version", start)
}

func isSQLiteBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
