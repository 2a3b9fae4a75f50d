package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gmemo/internal/auth"
	"gmemo/internal/config"
	"gmemo/internal/memo"
	"gmemo/internal/metrics"
	"gmemo/internal/render"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server is built from. Metrics is optional.
type Deps struct {
	Memos    *memo.Service
	Auth     *auth.Service
	Sessions *auth.Sessions
	Store    Pinger
	Markdown *render.Markdown
	Metrics  *metrics.Collector
}

type Server struct {
	cfg      config.Config
	memos    *memo.Service
	auth     *auth.Service
	sessions *auth.Sessions
	store    Pinger
	markdown *render.Markdown
	metrics  *metrics.Collector
	views    *Templates
	router   chi.Router
}

func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Memos == nil || deps.Auth == nil || deps.Sessions == nil || deps.Store == nil {
		return nil, errors.New("web: memos, auth, sessions and store are required")
	}
	if deps.Markdown == nil {
		deps.Markdown = render.NewMarkdown()
	}
	s := &Server{
		cfg:      cfg,
		memos:    deps.Memos,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		store:    deps.Store,
		markdown: deps.Markdown,
		metrics:  deps.Metrics,
		views:    MustParseTemplates(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.NotFound(s.handleNotFound)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.identify)
		r.Get("/", s.handleLanding)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/login", s.handleLoginForm)
			r.Post("/login", s.handleLogin)
			r.Get("/logout", s.handleLogoutConfirm)
			r.Post("/logout", s.handleLogout)
			r.Get("/logout/quick", s.handleLogout)
			if s.cfg.AllowRegistration {
				r.Get("/register", s.handleRegisterForm)
				r.Post("/register", s.handleRegister)
			}
			r.With(s.requireLogin).Get("/profile", s.handleProfile)
		})

		r.Route("/memos", func(r chi.Router) {
			r.Use(s.requireLogin)
			if s.cfg.BreakerEnabled {
				r.Use(circuitBreaker(defaultBreakerSettings("memos")))
			}
			r.Get("/", s.handleMemoList)
			r.Get("/create", s.handleMemoCreateForm)
			r.Post("/create", s.handleMemoCreate)
			r.Get("/stats", s.handleStatsPage)

			r.Group(func(r chi.Router) {
				if len(s.cfg.CORSOrigins) > 0 {
					r.Use(cors.Handler(cors.Options{
						AllowedOrigins:   s.cfg.CORSOrigins,
						AllowedMethods:   []string{http.MethodGet},
						AllowedHeaders:   []string{"Accept", "Authorization"},
						AllowCredentials: true,
						MaxAge:           300,
					}))
				}
				r.Get("/search", s.handleQuickSearch)
				r.Get("/stats/data", s.handleStatsData)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleMemoDetail)
				r.Get("/edit", s.handleMemoEditForm)
				r.Post("/edit", s.handleMemoEdit)
				r.Get("/delete", s.handleMemoDeleteConfirm)
				r.Post("/delete", s.handleMemoDelete)
				r.Post("/pin", s.handleMemoPin)
			})
		})
	})
	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
