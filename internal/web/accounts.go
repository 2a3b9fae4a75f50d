package web

import (
	"errors"
	"fmt"
	"net/http"

	"gmemo/internal/auth"
	"gmemo/internal/validation"
)

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/memos/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{Title: "Welcome", ContentTemplate: "landing"})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, ok := CurrentUser(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Log in",
		ContentTemplate: "login",
		Next:            next,
		Form:            map[string]string{},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	next := safeNext(r.PostForm.Get("next"))

	u, err := s.auth.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	s.loginAttempt(err == nil)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.render(w, r, http.StatusOK, ViewData{
			Title:           "Log in",
			ContentTemplate: "login",
			Next:            next,
			Form:            map[string]string{"username": username},
			FormError:       "Please enter a correct username and password. Note that both fields may be case-sensitive.",
		})
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.startSession(w, u); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) handleLogoutConfirm(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r.Context()); !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{Title: "Log out", ContentTemplate: "logout"})
}

// handleLogout serves both the confirmed POST and the quick GET link.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	if _, ok := CurrentUser(r.Context()); ok {
		s.addFlash(w, r, flashInfo, "You have been logged out.")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/memos/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Sign up",
		ContentTemplate: "register",
		Form:            map[string]string{},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := auth.RegisterInput{
		Username:  r.PostForm.Get("username"),
		Email:     r.PostForm.Get("email"),
		Password1: r.PostForm.Get("password1"),
		Password2: r.PostForm.Get("password2"),
	}
	u, err := s.auth.Register(r.Context(), in)
	var verr *validation.Errors
	if errors.As(err, &verr) {
		s.render(w, r, http.StatusOK, ViewData{
			Title:           "Sign up",
			ContentTemplate: "register",
			Form:            map[string]string{"username": in.Username, "email": in.Email},
			Errors:          verr.Fields,
		})
		return
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.startSession(w, u); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.addFlash(w, r, flashSuccess, fmt.Sprintf("Welcome, %s! Your account has been created.", u.Username))
	http.Redirect(w, r, "/memos/", http.StatusFound)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	profile, err := s.auth.UserByID(r.Context(), user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	stats, err := s.memos.Stats(r.Context(), user.Identity())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Profile",
		ContentTemplate: "profile",
		Profile:         profile,
		MemoCount:       stats.TotalCount,
		Stats:           stats,
	})
}
