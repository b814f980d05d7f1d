// Package web is the HTTP layer: routing, session auth, template rendering
// and the JSON task/tag endpoints used by the frontend.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zoja7431/task-manage/internal/config"
	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
)

// Server holds the handler dependencies.
type Server struct {
	db         *db.DB
	log        *zap.Logger
	sessions   *Sessions
	tmpl       *templates
	bcryptCost int

	// now is the clock used for status derivation and the weekly window;
	// swapped out in tests.
	now func() time.Time
}

// New wires a Server from its dependencies.
func New(database *db.DB, logger *zap.Logger, cfg *config.Config) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		db:         database,
		log:        logger,
		sessions:   NewSessions(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.Secure),
		tmpl:       tmpl,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        time.Now,
	}, nil
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", s.handleHome)
	r.Get("/welcome", s.handleWelcome)
	r.Get("/weekly", s.requireUser(s.handleWeekly))

	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.requireUser(s.handleLogout))
	r.Get("/profile", s.requireUser(s.handleProfileForm))
	r.Post("/profile", s.requireUser(s.handleProfileUpdate))
	r.Get("/api/check-username", s.handleCheckUsername)

	r.Post("/tasks", s.requireUser(s.handleTaskCreate))
	r.Post("/tasks/clear-completed", s.requireUser(s.handleClearCompleted))
	r.Post("/tasks/{id}/complete", s.requireUser(s.handleTaskComplete))
	r.Post("/tasks/{id}/delete", s.requireUser(s.handleTaskDelete))
	r.Get("/api/task/{id}", s.requireUser(s.handleTaskGet))
	r.Post("/api/task/{id}", s.requireUser(s.handleTaskUpdate))

	r.Post("/tags", s.requireUser(s.handleTagCreate))
	r.Put("/tags/{name}", s.requireUser(s.handleTagRename))
	r.Delete("/tags/{name}", s.requireUser(s.handleTagDelete))
	r.Get("/api/tags/{name}/tasks", s.requireUser(s.handleTagUsage))

	return r
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqID := uuid.NewString()

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("req_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// requireUser loads the session user and rejects unauthenticated requests:
// API paths get a 401, page paths redirect to the login form.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessions.UserID(r)
		if !ok {
			if isAPIPath(r.URL.Path) {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		user, err := s.db.GetUser(userID)
		if err != nil {
			// Stale session for a deleted account.
			s.sessions.SignOut(w, r)
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

func isAPIPath(path string) bool {
	return len(path) >= 5 && path[:5] == "/api/"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
