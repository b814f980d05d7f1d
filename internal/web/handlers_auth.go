package web

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type authFormData struct {
	page
	Errors   []string
	Username string
	Email    string
}

// validateCredentials checks the registration/profile field rules:
// username 4-20 characters, well-formed email, password at least 6
// characters when one is supplied.
func validateCredentials(username, email, password string, passwordRequired bool) []string {
	var errs []string
	if len(username) < 4 || len(username) > 20 {
		errs = append(errs, "Username must be 4 to 20 characters")
	}
	if !emailPattern.MatchString(email) {
		errs = append(errs, "Enter a valid email address")
	}
	if passwordRequired && len(password) < 6 {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if !passwordRequired && password != "" && len(strings.TrimSpace(password)) < 6 {
		errs = append(errs, "Password must be at least 6 characters")
	}
	return errs
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	if id, ok := s.sessions.UserID(r); ok {
		user, _ = s.db.GetUser(id)
	}
	s.render(w, "welcome.html", page{User: user, Flashes: s.sessions.Flashes(w, r)})
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", authFormData{page: page{Flashes: s.sessions.Flashes(w, r)}})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := authFormData{Username: username, Email: email}
	data.Errors = validateCredentials(username, email, password, true)
	if len(data.Errors) > 0 {
		s.render(w, "register.html", data)
		return
	}

	taken, err := s.db.UsernameOrEmailTaken(username, email, 0)
	if err != nil {
		s.serverError(w, r, "checking uniqueness", err)
		return
	}
	if taken {
		data.Errors = append(data.Errors, "Username or email already taken")
		s.render(w, "register.html", data)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.serverError(w, r, "hashing password", err)
		return
	}
	if _, err := s.db.CreateUser(username, email, string(hash)); err != nil {
		// A concurrent registration can still lose the race to the
		// unique constraint.
		if errors.Is(err, db.ErrUserExists) {
			data.Errors = append(data.Errors, "Username or email already taken")
			s.render(w, "register.html", data)
			return
		}
		s.serverError(w, r, "creating user", err)
		return
	}

	s.sessions.AddFlash(w, r, "success", "Registration successful! Please log in")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", authFormData{page: page{Flashes: s.sessions.Flashes(w, r)}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := authFormData{Username: login}
	if login == "" || password == "" {
		data.Errors = append(data.Errors, "Enter your username and password")
		s.render(w, "login.html", data)
		return
	}

	user, err := s.db.GetUserByLogin(login)
	if errors.Is(err, db.ErrNotFound) {
		data.Errors = append(data.Errors, "Account not found")
		s.render(w, "login.html", data)
		return
	}
	if err != nil {
		s.serverError(w, r, "loading user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		data.Errors = append(data.Errors, "Incorrect password")
		s.render(w, "login.html", data)
		return
	}

	if err := s.sessions.SignIn(w, r, user.ID); err != nil {
		s.serverError(w, r, "saving session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *models.User) {
	s.sessions.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type profileData struct {
	page
	Errors []string
}

func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request, user *models.User) {
	s.render(w, "profile.html", profileData{page: page{User: user, Flashes: s.sessions.Flashes(w, r)}})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request, user *models.User) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	avatar := strings.TrimSpace(r.FormValue("avatar"))

	data := profileData{page: page{User: user}}
	data.Errors = validateCredentials(username, email, password, false)
	if password != "" && password != confirm {
		data.Errors = append(data.Errors, "Passwords do not match")
	}
	if len(data.Errors) > 0 {
		s.render(w, "profile.html", data)
		return
	}

	taken, err := s.db.UsernameOrEmailTaken(username, email, user.ID)
	if err != nil {
		s.serverError(w, r, "checking uniqueness", err)
		return
	}
	if taken {
		data.Errors = append(data.Errors, "Username or email already taken")
		s.render(w, "profile.html", data)
		return
	}

	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			s.serverError(w, r, "hashing password", err)
			return
		}
		hash = string(h)
	}
	if avatar == "" {
		avatar = user.Avatar
	}

	if err := s.db.UpdateProfile(user.ID, username, email, avatar, hash); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			data.Errors = append(data.Errors, "Username or email already taken")
			s.render(w, "profile.html", data)
			return
		}
		s.serverError(w, r, "updating profile", err)
		return
	}

	s.sessions.AddFlash(w, r, "success", "Profile updated!")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// handleCheckUsername powers the live availability check on the
// registration form.
func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"available": true})
		return
	}

	var selfID int64
	if id, ok := s.sessions.UserID(r); ok {
		selfID = id
	}
	taken, err := s.db.UsernameOrEmailTaken(username, "", selfID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"available": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": !taken})
}
