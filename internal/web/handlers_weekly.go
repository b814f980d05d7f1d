package web

import (
	"net/http"
	"strconv"

	"github.com/Zoja7431/task-manage/internal/models"
	"github.com/Zoja7431/task-manage/internal/schedule"
)

type weeklyData struct {
	page
	Week       schedule.Week
	WeekOffset int
	PrevOffset int
	NextOffset int
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request, user *models.User) {
	offset := 0
	if raw := r.URL.Query().Get("weekOffset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}

	now := s.now()
	monday, sunday := schedule.WeekWindow(now, offset)
	// Fetch a day wider than the window: due dates stored in another zone
	// can sit just outside it as instants while BuildWeek still buckets
	// them by calendar day.
	tasks, err := s.db.ListTasksDueBetween(user.ID, monday.AddDate(0, 0, -1), sunday.AddDate(0, 0, 1))
	if err != nil {
		s.serverError(w, r, "loading weekly tasks", err)
		return
	}
	schedule.Annotate(tasks, now)

	s.render(w, "weekly.html", weeklyData{
		page:       page{User: user, Flashes: s.sessions.Flashes(w, r)},
		Week:       schedule.BuildWeek(tasks, now, offset),
		WeekOffset: offset,
		PrevOffset: offset - 1,
		NextOffset: offset + 1,
	})
}
