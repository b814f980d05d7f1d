package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
)

type tagJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleTagCreate(w http.ResponseWriter, r *http.Request, user *models.User) {
	name := r.FormValue("name")
	if db.NormalizeTagName(name) == "" {
		writeJSONError(w, http.StatusBadRequest, "Tag name is required")
		return
	}

	tag, err := s.db.CreateTag(user.ID, name)
	if errors.Is(err, db.ErrTagExists) {
		writeJSONError(w, http.StatusConflict, "Tag already exists")
		return
	}
	if err != nil {
		s.serverErrorJSON(w, "creating tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tagJSON{ID: tag.ID, Name: tag.Name})
}

func (s *Server) handleTagRename(w http.ResponseWriter, r *http.Request, user *models.User) {
	oldName := chi.URLParam(r, "name")
	newName := r.FormValue("name")
	if strings.TrimSpace(newName) == "" {
		writeJSONError(w, http.StatusBadRequest, "Tag name is required")
		return
	}

	err := s.db.RenameTag(user.ID, oldName, newName)
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Tag not found")
	case errors.Is(err, db.ErrTagExists):
		writeJSONError(w, http.StatusConflict, "Tag already exists")
	case err != nil:
		s.serverErrorJSON(w, "renaming tag", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Tag renamed"})
	}
}

func (s *Server) handleTagDelete(w http.ResponseWriter, r *http.Request, user *models.User) {
	err := s.db.DeleteTag(user.ID, chi.URLParam(r, "name"))
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		s.serverErrorJSON(w, "deleting tag", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted"})
}

// handleTagUsage returns how many tasks carry the tag, so the frontend can
// ask for confirmation before a delete.
func (s *Server) handleTagUsage(w http.ResponseWriter, r *http.Request, user *models.User) {
	name := chi.URLParam(r, "name")
	count, err := s.db.TagUsageCount(user.ID, name)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		s.serverErrorJSON(w, "counting tag usage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      db.NormalizeTagName(name),
		"taskCount": count,
	})
}
