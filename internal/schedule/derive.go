// Package schedule holds the date-driven task logic: deriving the effective
// status of a task from its due date and grouping tasks into a weekly
// timeline. All functions take the reference date explicitly so they stay
// deterministic under test.
package schedule

import (
	"time"

	"github.com/Zoja7431/task-manage/internal/models"
)

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EffectiveStatus returns the status a task should present given "today".
//
// Completed is never overwritten. A due date on a calendar day strictly
// before today's makes a non-completed task overdue; a task with no due
// date, or one due today or later, presents as in_progress. Overdue
// therefore reverts automatically when the due date moves to
// today-or-future. Each value's calendar day is read in its own location,
// so a due date stored at UTC midnight compares correctly against a local
// clock.
func EffectiveStatus(status models.Status, dueDate *time.Time, today time.Time) models.Status {
	if status == models.StatusCompleted {
		return models.StatusCompleted
	}
	if dueDate != nil && DayKey(*dueDate) < DayKey(today) {
		return models.StatusOverdue
	}
	return models.StatusInProgress
}

// Annotate applies EffectiveStatus to every task in place.
func Annotate(tasks []models.Task, today time.Time) {
	for i := range tasks {
		tasks[i].Status = EffectiveStatus(tasks[i].Status, tasks[i].DueDate, today)
	}
}
