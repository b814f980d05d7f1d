package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "taskmanage_session"

// Flash is a one-shot message rendered on the next page load.
type Flash struct {
	Type    string // success, danger
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Sessions wraps the cookie session store.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates a cookie-backed session store.
func NewSessions(secret string, maxAge int, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

func (s *Sessions) get(r *http.Request) *sessions.Session {
	// Get never fails fatally; a bad cookie yields a fresh session.
	session, _ := s.store.Get(r, sessionName)
	return session
}

// UserID returns the signed-in user's id, if any.
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	session := s.get(r)
	id, ok := session.Values["user_id"].(int64)
	return id, ok
}

// SignIn binds the session to a user.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	session := s.get(r)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

// SignOut drops the session.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session := s.get(r)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// AddFlash queues a message for the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, typ, message string) {
	session := s.get(r)
	session.AddFlash(Flash{Type: typ, Message: message})
	session.Save(r, w)
}

// Flashes pops all queued messages.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session := s.get(r)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
