package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Zoja7431/task-manage/internal/models"
)

// TaskFilter narrows ListTasks. Zero values mean "no filter". Status is
// matched against the stored status, so callers filtering for the derived
// overdue state should ask for in_progress and filter after derivation.
type TaskFilter struct {
	Status   models.Status
	Priority models.Priority
}

const taskColumns = "id, user_id, title, description, status, priority, due_date, created_at"

func scanTask(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := scanner.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

// CreateTask creates a new task for a user. Overdue is a derived state, so
// the stored status is always in_progress or completed.
func (db *DB) CreateTask(userID int64, title, description string, status models.Status, priority models.Priority, dueDate *time.Time) (*models.Task, error) {
	var due interface{}
	if dueDate != nil {
		due = *dueDate
	}
	id, err := db.insertID(`
		INSERT INTO tasks (user_id, title, description, status, priority, due_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, title, description, string(status.Storable()), string(priority), due)
	if err != nil {
		return nil, err
	}
	return db.GetTask(userID, id)
}

// GetTask retrieves one of the user's tasks by id, with its tags loaded.
// Tasks owned by other users are reported as ErrNotFound.
func (db *DB) GetTask(userID, id int64) (*models.Task, error) {
	row := db.queryRow(`
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?
	`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tags, err := db.GetTaskTags(t.ID)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return &t, nil
}

// ListTasks returns the user's tasks, newest first, with tags loaded.
func (db *DB) ListTasks(userID int64, filter TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, string(filter.Priority))
	}
	query += " ORDER BY created_at DESC, id DESC"

	return db.listTasks(query, args...)
}

// ListTasksDueBetween returns the user's non-completed tasks whose due date
// falls on any day from "from" through "to" (dates inclusive). Used by the
// weekly view.
func (db *DB) ListTasksDueBetween(userID int64, from, to time.Time) ([]models.Task, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	return db.listTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND status != 'completed'
		  AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?
		ORDER BY due_date ASC, id ASC
	`, userID, start, end)
}

func (db *DB) listTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tags, err := db.GetTaskTags(tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Tags = tags
	}
	return tasks, nil
}

// UpdateTask updates one of the user's tasks. The stored status is clamped
// to in_progress/completed.
func (db *DB) UpdateTask(userID, id int64, title, description string, status models.Status, priority models.Priority, dueDate *time.Time) error {
	var due interface{}
	if dueDate != nil {
		due = *dueDate
	}
	result, err := db.exec(`
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?
		WHERE id = ? AND user_id = ?
	`, title, description, string(status.Storable()), string(priority), due, id, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ToggleCompleted flips a task between completed and in_progress and returns
// the new stored status.
func (db *DB) ToggleCompleted(userID, id int64) (models.Status, error) {
	var status models.Status
	err := db.queryRow("SELECT status FROM tasks WHERE id = ? AND user_id = ?", id, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	next := models.StatusCompleted
	if status == models.StatusCompleted {
		next = models.StatusInProgress
	}
	_, err = db.exec("UPDATE tasks SET status = ? WHERE id = ? AND user_id = ?", string(next), id, userID)
	if err != nil {
		return "", err
	}
	return next, nil
}

// DeleteTask deletes one of the user's tasks.
func (db *DB) DeleteTask(userID, id int64) error {
	result, err := db.exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ClearCompleted deletes all of the user's completed tasks and returns how
// many were removed.
func (db *DB) ClearCompleted(userID int64) (int64, error) {
	result, err := db.exec("DELETE FROM tasks WHERE user_id = ? AND status = 'completed'", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetTaskTags returns all tags for a task, ordered by name.
func (db *DB) GetTaskTags(taskID int64) ([]models.Tag, error) {
	rows, err := db.query(`
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY t.name
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// requireRow converts a zero-row mutation into ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
