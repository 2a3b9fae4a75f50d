package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gmemo/internal/memo"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json", "err", err)
	}
}

// writeError maps an error from the memo pipeline onto a JSON response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := memo.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
		return
	}
	switch {
	case errors.Is(err, memo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, memo.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// renderError is writeError for HTML pages. Validation errors never reach
// it; forms re-render themselves.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, memo.ErrNotFound):
		s.handleNotFound(w, r)
	case errors.Is(err, memo.ErrUnauthenticated):
		http.Redirect(w, r, "/accounts/login", http.StatusFound)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.render(w, r, http.StatusInternalServerError, ViewData{
			Title:           "Server error",
			ContentTemplate: "error",
			FormError:       "Something went wrong. Please try again later.",
		})
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, ViewData{
		Title:           "Not found",
		ContentTemplate: "error",
		FormError:       "The page you were looking for does not exist.",
	})
}

// render fills the per-request parts of data and writes the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data ViewData) {
	if user, ok := CurrentUser(r.Context()); ok {
		data.User = user
	}
	data.Registration = s.cfg.AllowRegistration
	data.Flashes = s.takeFlashes(w, r)
	s.views.RenderPage(w, status, data)
}
