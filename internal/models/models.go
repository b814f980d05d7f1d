package models

import "time"

// Status is the lifecycle state of a task. Only StatusInProgress and
// StatusCompleted are ever persisted; StatusOverdue is derived at read time
// from the due date.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Storable maps a submitted status to the value that may be persisted.
// Overdue is a derived state and is stored as in_progress.
func (s Status) Storable() Status {
	if s == StatusCompleted {
		return StatusCompleted
	}
	return StatusInProgress
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority returns the priority for a form value, defaulting to medium.
func ParsePriority(s string) Priority {
	p := Priority(s)
	if !p.Valid() {
		return PriorityMedium
	}
	return p
}

// User represents a registered account. Deleting a user cascades to its
// tasks and tags at the store level.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Avatar       string // color hex or inline SVG
	CreatedAt    time.Time
}

// Task represents a single task owned by a user.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time // nil when unscheduled
	CreatedAt   time.Time
	Tags        []Tag // populated when loading tasks
}

// Tag represents a user-scoped label. Names are stored trimmed and
// lower-cased and are unique per user.
type Tag struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// HasTag reports whether the task carries a tag with the given
// (already normalized) name.
func (t *Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// TagNames returns the task's tag names in load order.
func (t *Task) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}
