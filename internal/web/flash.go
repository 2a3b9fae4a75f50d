package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

const flashCookie = "gmemo_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	flashSuccess = "success"
	flashInfo    = "info"
)

// addFlash queues a message for the next page. Messages ride in a cookie so
// they survive the redirect that usually follows a mutation.
func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := pendingFlashes(r)
	flashes = append(flashes, Flash{ID: uuid.NewString(), Kind: kind, Message: message})
	if len(flashes) > 5 {
		flashes = flashes[len(flashes)-5:]
	}
	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlashes returns pending messages and clears them.
func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := pendingFlashes(r)
	if len(flashes) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return flashes
}

func pendingFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
