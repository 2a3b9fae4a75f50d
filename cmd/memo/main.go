package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gmemo/internal/auth"
	"gmemo/internal/config"
	"gmemo/internal/memo"
	"gmemo/internal/metrics"
	"gmemo/internal/render"
	"gmemo/internal/store"
	"gmemo/internal/web"
)

func main() {
	closeLog := setupLogging()
	defer closeLog()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	backend, err := store.Open(openCtx, store.Config{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath(),
		PostgresDSN: cfg.DatabaseDSN,
		BusyTimeout: cfg.BusyTimeout,
		LockTimeout: cfg.LockTimeout,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()

	accounts := auth.NewService(backend)
	if cfg.AuthFile != "" {
		if _, err := accounts.SyncSeedFile(ctx, cfg.AuthFile); err != nil {
			return fmt.Errorf("sync auth file: %w", err)
		}
		go func() {
			err := auth.WatchFile(ctx, cfg.AuthFile, func() {
				if _, err := accounts.SyncSeedFile(ctx, cfg.AuthFile); err != nil {
					slog.Error("reload auth file", "path", cfg.AuthFile, "err", err)
				}
			})
			if err != nil {
				slog.Error("watch auth file", "path", cfg.AuthFile, "err", err)
			}
		}()
	}

	collector := metrics.NewCollector()
	memos := memo.NewService(backend,
		memo.WithLocation(cfg.Location()),
		memo.WithPageSize(cfg.PageSize),
		memo.WithObserver(collector),
	)
	sessions, err := auth.NewSessions(cfg.AuthSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(cfg, web.Deps{
		Memos:    memos,
		Auth:     accounts,
		Sessions: sessions,
		Store:    backend,
		Markdown: render.NewMarkdown(),
		Metrics:  collector,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "driver", cfg.DBDriver, "timezone", cfg.Location().String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func envFlag(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
