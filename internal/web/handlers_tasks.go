package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
	"github.com/Zoja7431/task-manage/internal/schedule"
)

// page carries the data every template expects.
type page struct {
	User    *models.User
	Flashes []Flash
}

type homeData struct {
	page
	InProgress []models.Task
	Overdue    []models.Task
	Completed  []models.Task
	Tags       []models.Tag

	StatusFilter   string
	PriorityFilter string
	TagFilter      string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessions.UserID(r)
	if !ok {
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
		return
	}
	user, err := s.db.GetUser(userID)
	if err != nil {
		s.sessions.SignOut(w, r)
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
		return
	}

	statusFilter := r.URL.Query().Get("status")
	priorityFilter := r.URL.Query().Get("priority")
	tagFilter := r.URL.Query().Get("tags")

	filter := db.TaskFilter{}
	status := models.Status(statusFilter)
	if status.Valid() {
		if status == models.StatusCompleted {
			filter.Status = models.StatusCompleted
		} else {
			// Overdue is derived from in_progress rows; narrow after derivation.
			filter.Status = models.StatusInProgress
		}
	}
	if p := models.Priority(priorityFilter); p.Valid() {
		filter.Priority = p
	}

	tasks, err := s.db.ListTasks(user.ID, filter)
	if err != nil {
		s.serverError(w, r, "listing tasks", err)
		return
	}
	schedule.Annotate(tasks, s.now())

	if status.Valid() && status != models.StatusCompleted {
		tasks = filterByStatus(tasks, status)
	}
	if names := db.ParseTagList(tagFilter); len(names) > 0 {
		tasks = filterByTags(tasks, names)
	}

	tags, err := s.db.ListTags(user.ID)
	if err != nil {
		s.serverError(w, r, "listing tags", err)
		return
	}

	data := homeData{
		page:           page{User: user, Flashes: s.sessions.Flashes(w, r)},
		Tags:           tags,
		StatusFilter:   statusFilter,
		PriorityFilter: priorityFilter,
		TagFilter:      tagFilter,
	}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusOverdue:
			data.Overdue = append(data.Overdue, t)
		case models.StatusCompleted:
			data.Completed = append(data.Completed, t)
		default:
			data.InProgress = append(data.InProgress, t)
		}
	}

	s.render(w, "home.html", data)
}

func filterByStatus(tasks []models.Task, status models.Status) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// filterByTags keeps tasks carrying at least one of the given names.
func filterByTags(tasks []models.Task, names []string) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		for _, name := range names {
			if t.HasTag(name) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// parseDueDate combines the due_date and optional due_time form fields.
func parseDueDate(dateStr, timeStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}
	due, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", dateStr)
	}
	if timeStr = strings.TrimSpace(timeStr); timeStr != "" {
		t, err := time.Parse("15:04", timeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q", timeStr)
		}
		due = due.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return &due, nil
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request, user *models.User) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		s.sessions.AddFlash(w, r, "danger", "Task title is required")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	due, err := parseDueDate(r.FormValue("due_date"), r.FormValue("due_time"))
	if err != nil {
		s.sessions.AddFlash(w, r, "danger", "Invalid due date")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	task, err := s.db.CreateTask(user.ID,
		title,
		strings.TrimSpace(r.FormValue("description")),
		models.Status(r.FormValue("status")),
		models.ParsePriority(r.FormValue("priority")),
		due)
	if err != nil {
		s.serverError(w, r, "creating task", err)
		return
	}

	if names := db.ParseTagList(r.FormValue("tags")); len(names) > 0 {
		if err := s.db.SetTaskTags(user.ID, task.ID, names); err != nil {
			s.serverError(w, r, "assigning tags", err)
			return
		}
	}

	s.sessions.AddFlash(w, r, "success", "Task created!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// taskJSON is the shape the frontend modal consumes.
type taskJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time"`
	Tags        string `json:"tags"`
}

func (s *Server) taskToJSON(t *models.Task) taskJSON {
	out := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(schedule.EffectiveStatus(t.Status, t.DueDate, s.now())),
		Priority:    string(t.Priority),
		Tags:        strings.Join(t.TagNames(), ", "),
	}
	if t.DueDate != nil {
		out.DueDate = t.DueDate.Format("2006-01-02")
		if hhmm := t.DueDate.Format("15:04"); hhmm != "00:00" {
			out.DueTime = hhmm
		}
	}
	return out
}

func taskIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := taskIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := s.db.GetTask(user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.serverErrorJSON(w, "loading task", err)
		return
	}
	writeJSON(w, http.StatusOK, s.taskToJSON(task))
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := taskIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "Title is required")
		return
	}
	due, err := parseDueDate(r.FormValue("due_date"), r.FormValue("due_time"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid due date")
		return
	}

	err = s.db.UpdateTask(user.ID, id,
		title,
		strings.TrimSpace(r.FormValue("description")),
		models.Status(r.FormValue("status")),
		models.ParsePriority(r.FormValue("priority")),
		due)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.serverErrorJSON(w, "updating task", err)
		return
	}

	// The tag set is replaced wholesale on every update.
	if err := s.db.SetTaskTags(user.ID, id, db.ParseTagList(r.FormValue("tags"))); err != nil {
		s.serverErrorJSON(w, "assigning tags", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated"})
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := taskIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status, err := s.db.ToggleCompleted(user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		s.sessions.AddFlash(w, r, "danger", "Task not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, "toggling task", err)
		return
	}
	if status == models.StatusCompleted {
		s.sessions.AddFlash(w, r, "success", "Task marked as completed!")
	} else {
		s.sessions.AddFlash(w, r, "success", "Task reopened")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := taskIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = s.db.DeleteTask(user.ID, id)
	if errors.Is(err, db.ErrNotFound) {
		s.sessions.AddFlash(w, r, "danger", "Task not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, "deleting task", err)
		return
	}
	s.sessions.AddFlash(w, r, "success", "Task deleted!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request, user *models.User) {
	n, err := s.db.ClearCompleted(user.ID)
	if err != nil {
		s.serverError(w, r, "clearing completed tasks", err)
		return
	}
	s.sessions.AddFlash(w, r, "success", fmt.Sprintf("Removed %d completed task(s)", n))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// serverError logs the failure and renders the generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.log.Error(action, zap.Error(err))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	s.render(w, "error.html", page{})
}

func (s *Server) serverErrorJSON(w http.ResponseWriter, action string, err error) {
	s.log.Error(action, zap.Error(err))
	writeJSONError(w, http.StatusInternalServerError, "internal error")
}
