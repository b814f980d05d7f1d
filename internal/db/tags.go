package db

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/Zoja7431/task-manage/internal/models"
)

// NormalizeTagName trims and lower-cases a tag name. All lookups and writes
// go through this so uniqueness is case-insensitive.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseTagList splits a comma-separated tag string into normalized,
// de-duplicated names, dropping empties.
func ParseTagList(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := NormalizeTagName(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// GetTagByName retrieves one of the user's tags by name (case-insensitive).
func (db *DB) GetTagByName(userID int64, name string) (*models.Tag, error) {
	t := &models.Tag{}
	err := db.queryRow(`
		SELECT id, user_id, name, created_at FROM tags
		WHERE user_id = ? AND name = ?
	`, userID, NormalizeTagName(name)).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreateTag looks a tag up by normalized name, creating it if absent.
// A unique violation from a concurrent create is treated as "already exists"
// and resolved by re-reading.
func (db *DB) FindOrCreateTag(userID int64, name string) (*models.Tag, error) {
	name = NormalizeTagName(name)
	if name == "" {
		return nil, errors.New("empty tag name")
	}

	tag, err := db.GetTagByName(userID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err = db.insertID("INSERT INTO tags (user_id, name) VALUES (?, ?)", userID, name)
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}
	return db.GetTagByName(userID, name)
}

// CreateTag creates a tag, failing with ErrTagExists when the user already
// has one with the same name in any casing.
func (db *DB) CreateTag(userID int64, name string) (*models.Tag, error) {
	name = NormalizeTagName(name)
	if name == "" {
		return nil, errors.New("empty tag name")
	}
	_, err := db.insertID("INSERT INTO tags (user_id, name) VALUES (?, ?)", userID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return db.GetTagByName(userID, name)
}

// ListTags returns all of the user's tags ordered by name.
func (db *DB) ListTags(userID int64) ([]models.Tag, error) {
	rows, err := db.query(`
		SELECT id, user_id, name, created_at FROM tags
		WHERE user_id = ? ORDER BY name
	`, userID)
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

// RenameTag renames one of the user's tags. The new name must be non-empty
// and not already used by another of the user's tags; on conflict nothing is
// mutated.
func (db *DB) RenameTag(userID int64, oldName, newName string) error {
	oldName = NormalizeTagName(oldName)
	newName = NormalizeTagName(newName)
	if newName == "" {
		return errors.New("empty tag name")
	}

	tag, err := db.GetTagByName(userID, oldName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}

	if existing, err := db.GetTagByName(userID, newName); err == nil && existing.ID != tag.ID {
		return ErrTagExists
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = db.exec("UPDATE tags SET name = ? WHERE id = ? AND user_id = ?", newName, tag.ID, userID)
	if isUniqueViolation(err) {
		return ErrTagExists
	}
	return err
}

// DeleteTag removes one of the user's tags. Associations are removed by the
// cascade; the tasks themselves are untouched.
func (db *DB) DeleteTag(userID int64, name string) error {
	result, err := db.exec("DELETE FROM tags WHERE user_id = ? AND name = ?", userID, NormalizeTagName(name))
	if err != nil {
		return err
	}
	return requireRow(result)
}

// TagUsageCount returns how many of the user's tasks currently carry the
// tag. The UI shows this before a delete is confirmed.
func (db *DB) TagUsageCount(userID int64, name string) (int, error) {
	tag, err := db.GetTagByName(userID, name)
	if err != nil {
		return 0, err
	}
	var count int
	err = db.queryRow("SELECT COUNT(*) FROM task_tags WHERE tag_id = ?", tag.ID).Scan(&count)
	return count, err
}

// ReplaceTaskTags replaces the full tag set of a task: old associations are
// cleared, then the new set is applied. Idempotent.
func (db *DB) ReplaceTaskTags(taskID int64, tagIDs []int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(db.rebind("DELETE FROM task_tags WHERE task_id = ?"), taskID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(db.rebind("INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)"), taskID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetTaskTags resolves a list of tag names (find-or-create, per user) and
// replaces the task's tag set with them.
func (db *DB) SetTaskTags(userID, taskID int64, names []string) error {
	tagIDs := make([]int64, 0, len(names))
	for _, name := range names {
		tag, err := db.FindOrCreateTag(userID, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return db.ReplaceTaskTags(taskID, tagIDs)
}
