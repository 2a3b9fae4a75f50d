// Package store picks the database backend that holds users and memos.
package store

import (
	"context"
	"fmt"
	"time"

	"gmemo/internal/auth"
	"gmemo/internal/memo"
	"gmemo/internal/store/postgres"
	"gmemo/internal/store/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Backend is everything the server and the CLI need from storage.
type Backend interface {
	memo.Store
	auth.UserStore
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	BusyTimeout time.Duration
	LockTimeout time.Duration
}

// Open connects to the configured backend and makes sure its schema exists.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, sqlite.Options{
			BusyTimeout: cfg.BusyTimeout,
			LockTimeout: cfg.LockTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Init(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := s.Init(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
