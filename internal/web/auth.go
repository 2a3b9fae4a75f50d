package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gmemo/internal/auth"
)

const sessionCookie = "gmemo_session"

// identify attaches the requester from HTTP Basic credentials or the session
// cookie. Wrong Basic credentials are refused; a bad cookie is dropped and
// the request continues anonymously.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, pass, ok := r.BasicAuth(); ok {
			u, err := s.auth.Authenticate(r.Context(), name, pass)
			s.loginAttempt(err == nil)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidCredentials) {
					slog.Error("basic auth", "user", name, "err", err)
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="gmemo"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := WithUser(r.Context(), User{ID: u.ID, Name: u.Username, ViaBasic: true})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.sessions.Parse(cookie.Value)
		if err != nil {
			slog.Debug("session rejected", "err", err)
			s.clearSession(w)
			next.ServeHTTP(w, r)
			return
		}
		u, err := s.auth.UserByID(r.Context(), claims.UserID())
		if err != nil {
			if !errors.Is(err, auth.ErrUserNotFound) {
				slog.Error("session user lookup", "id", claims.UserID(), "err", err)
			}
			s.clearSession(w)
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithUser(r.Context(), User{ID: u.ID, Name: u.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLogin sends anonymous requests to the login page, remembering
// where they were going.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			target := "/accounts/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) startSession(w http.ResponseWriter, u auth.User) error {
	token, expires, err := s.sessions.Issue(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext accepts only same-site absolute paths.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/memos/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/memos/"
	}
	return next
}

func (s *Server) loginAttempt(ok bool) {
	if s.metrics != nil {
		s.metrics.LoginAttempt(ok)
	}
}
