package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"gmemo/internal/auth"
	"gmemo/internal/config"
	"gmemo/internal/memo"
	"gmemo/internal/metrics"
	"gmemo/internal/store"
)

const testPassword = "correct-horse-battery"

type testEnv struct {
	t        *testing.T
	srv      *Server
	backend  store.Backend
	auth     *auth.Service
	memos    *memo.Service
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	backend, err := store.Open(ctx, store.Config{
		Driver:     store.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "memo.sqlite"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	cfg := config.Config{
		ListenAddr:        "127.0.0.1:0",
		PageSize:          memo.DefaultPageSize,
		MetricsEnabled:    true,
		AllowRegistration: true,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	sessions, err := auth.NewSessions("test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	env := &testEnv{
		t:        t,
		backend:  backend,
		auth:     auth.NewService(backend),
		memos:    memo.NewService(backend, memo.WithLocation(time.UTC), memo.WithPageSize(cfg.PageSize)),
		sessions: sessions,
	}
	env.srv, err = NewServer(cfg, Deps{
		Memos:    env.memos,
		Auth:     env.auth,
		Sessions: sessions,
		Store:    backend,
		Metrics:  metrics.NewCollector(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return env
}

func (e *testEnv) register(name string) auth.User {
	e.t.Helper()
	u, err := e.auth.Register(context.Background(), auth.RegisterInput{
		Username:  name,
		Password1: testPassword,
		Password2: testPassword,
	})
	if err != nil {
		e.t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func (e *testEnv) cookie(u auth.User) *http.Cookie {
	e.t.Helper()
	token, _, err := e.sessions.Issue(u)
	if err != nil {
		e.t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func (e *testEnv) createMemo(u auth.User, title, content string) memo.Memo {
	e.t.Helper()
	m, err := e.memos.Create(context.Background(), identity(u), memo.Input{Title: title, Content: content})
	if err != nil {
		e.t.Fatalf("create memo: %v", err)
	}
	return m
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func identity(u auth.User) memo.Identity {
	return memo.Identity{UserID: u.ID, Username: u.Username}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func idFromLocation(t *testing.T, location string) int64 {
	t.Helper()
	raw := strings.Trim(strings.TrimPrefix(location, "/memos/"), "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		t.Fatalf("location %q is not a memo url", location)
	}
	return id
}
